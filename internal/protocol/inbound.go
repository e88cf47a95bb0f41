package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownType = errors.New("unknown message type")

// Inbound is a message received from a player's connection.
type Inbound interface {
	inbound()
}

type JoinRoom struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
}

type StartGame struct{}

type NewGuess struct {
	Guess string `json:"guess"`
}

func (JoinRoom) inbound()  {}
func (StartGame) inbound() {}
func (NewGuess) inbound()  {}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeInbound parses a {type, payload} frame into its concrete message.
func DecodeInbound(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	var msg Inbound
	switch env.Type {
	case "join_room":
		var m JoinRoom
		if err := decodePayload(env.Payload, &m); err != nil {
			return nil, err
		}
		msg = m
	case "start_game":
		msg = StartGame{}
	case "new_guess":
		var m NewGuess
		if err := decodePayload(env.Payload, &m); err != nil {
			return nil, err
		}
		msg = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	return msg, nil
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}
