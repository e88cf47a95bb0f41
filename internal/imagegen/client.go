// Package imagegen streams progressive image frames for a prompt from the
// generation service.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/coder/websocket"
)

// CompleteSentinel is the text frame the service sends after the last image.
const CompleteSentinel = "generation_complete"

// readLimit bounds a single frame; intermediate PNGs run to a few MB.
const readLimit = 32 << 20

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Generator streams base64 PNG frames for prompt into onFrame until the
// service signals completion. An error from onFrame stops the stream.
type Generator interface {
	Stream(ctx context.Context, prompt string, onFrame func(frame string) error) error
}

type WSClient struct {
	url string
}

func NewWSClient(url string) *WSClient {
	return &WSClient{url: url}
}

func (c *WSClient) Stream(ctx context.Context, prompt string, onFrame func(frame string) error) error {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dialing image service: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	if err := conn.Write(ctx, websocket.MessageText, []byte(prompt)); err != nil {
		return fmt.Errorf("sending prompt: %w", err)
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}
		if typ == websocket.MessageText && string(data) == CompleteSentinel {
			conn.Close(websocket.StatusNormalClosure, "")
			return nil
		}
		if err := onFrame(frameString(typ, data)); err != nil {
			return err
		}
	}
}

// frameString normalises a frame to base64 text. Raw PNG bytes are encoded;
// anything else is already base64 and passed through.
func frameString(typ websocket.MessageType, data []byte) string {
	if typ == websocket.MessageBinary && bytes.HasPrefix(data, pngMagic) {
		return base64.StdEncoding.EncodeToString(data)
	}
	return string(data)
}
