package protocol

import "encoding/json"

// Outbound is a message the server sends to players.
type Outbound interface {
	Type() string
}

type PlayerInfo struct {
	Name           string  `json:"name"`
	Score          int     `json:"score"`
	IsHost         bool    `json:"isHost"`
	BestSimilarity float64 `json:"bestSimilarity"`
}

type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type PlayerUpdate struct {
	Players []PlayerInfo `json:"players"`
}

type GameStarted struct{}

type NewTurn struct {
	Round       int     `json:"round"`
	TotalRounds int     `json:"totalRounds"`
	TimeLeft    int     `json:"timeLeft"`
	ImageBase64 *string `json:"imageBase64"`
	PromptHint  string  `json:"promptHint"`
}

type ImageUpdate struct {
	ImageBase64 string `json:"imageBase64"`
}

type GuessFeedback struct {
	Similarity float64 `json:"similarity"`
}

type RoundEnd struct {
	CorrectPrompt         string             `json:"correctPrompt"`
	Scores                []ScoreEntry       `json:"scores"`
	RoundBestSimilarities map[string]float64 `json:"roundBestSimilarities"`
	Reason                string             `json:"reason"`
}

// Snapshot is the full room state handed to a player when they join.
type Snapshot struct {
	RoomID          string       `json:"roomId"`
	Players         []PlayerInfo `json:"players"`
	GameState       string       `json:"gameState"`
	CurrentRound    int          `json:"currentRound"`
	TotalRounds     int          `json:"totalRounds"`
	TimeLeft        int          `json:"timeLeft"`
	PromptHint      string       `json:"promptHint"`
	CurrentImageB64 *string      `json:"currentImageB64"`
	CorrectPrompt   *string      `json:"correctPrompt"`
}

type JoinSuccess struct {
	Snapshot
}

// Error is sent before the server closes a connection it refused.
type Error struct {
	Message string
}

const (
	ErrorRoomFull  = "room_full"
	ErrorNameTaken = "name_taken"
)

func (PlayerUpdate) Type() string  { return "player_update" }
func (GameStarted) Type() string   { return "game_started" }
func (NewTurn) Type() string       { return "new_turn" }
func (ImageUpdate) Type() string   { return "image_update" }
func (GuessFeedback) Type() string { return "guess_feedback" }
func (RoundEnd) Type() string      { return "round_end" }
func (JoinSuccess) Type() string   { return "join_success" }
func (Error) Type() string         { return "error" }

// Encode renders msg as a {type, payload} frame. Errors are flattened to
// {type, message}.
func Encode(msg Outbound) ([]byte, error) {
	if e, ok := msg.(Error); ok {
		return json.Marshal(struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{e.Type(), e.Message})
	}
	return json.Marshal(struct {
		Type    string   `json:"type"`
		Payload Outbound `json:"payload"`
	}{msg.Type(), msg})
}

// DataURL wraps a base64 PNG frame for direct use as an image source.
func DataURL(frame string) string {
	return "data:image/png;base64," + frame
}
