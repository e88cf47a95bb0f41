// Package scoring calls the similarity service that rates how close a guess
// is to the round's prompt.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status from scoring service")
	ErrScoreOutOfRange  = errors.New("scoring service returned a score outside 0-100")
)

// Scorer returns a 0-100 similarity between prompt and guess.
type Scorer interface {
	Similarity(ctx context.Context, prompt, guess string) (float64, error)
}

type request struct {
	Prompt string `json:"prompt"`
	Guess  string `json:"guess"`
}

type response struct {
	Score float64 `json:"score"`
}

// HTTPClient posts {prompt, guess} to the scoring endpoint.
type HTTPClient struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url:     url,
		timeout: timeout,
		http:    &http.Client{},
	}
}

func (c *HTTPClient) Similarity(ctx context.Context, prompt, guess string) (float64, error) {
	body, err := json.Marshal(request{Prompt: prompt, Guess: guess})
	if err != nil {
		return 0, fmt.Errorf("encoding scoring request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building scoring request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling scoring service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding scoring response: %w", err)
	}
	if out.Score < 0 || out.Score > 100 {
		return 0, fmt.Errorf("%w: %g", ErrScoreOutOfRange, out.Score)
	}
	return out.Score, nil
}
