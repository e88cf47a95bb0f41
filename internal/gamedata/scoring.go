package gamedata

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ScoringFailed is the similarity reported to a player when the scoring
// service could not be reached.
const ScoringFailed = -1.0

// decayStart is the round progress after which late guesses lose value.
const decayStart = 0.8

// RoundProgress is the fraction of the round that has elapsed, clamped to [0, 1].
func RoundProgress(elapsed, roundDuration time.Duration) float64 {
	if roundDuration <= 0 {
		return 1
	}
	p := elapsed.Seconds() / roundDuration.Seconds()
	return math.Max(0, math.Min(1, p))
}

// TimeModifier is 1.0 up to 80% progress and then falls linearly to 0.5 at the
// end of the round.
func TimeModifier(progress float64) float64 {
	if progress <= decayStart {
		return 1.0
	}
	return 1.5 - progress
}

// BasePoints converts a 0-100 similarity into points before time decay.
func BasePoints(similarity float64, maxPoints int) int {
	if similarity <= 0 {
		return 0
	}
	return int(math.Floor(float64(maxPoints) * (similarity / 100)))
}

// RoundScore is the candidate score of a single guess.
func RoundScore(similarity float64, maxPoints int, progress float64) int {
	base := BasePoints(similarity, maxPoints)
	return int(math.Floor(float64(base) * TimeModifier(progress)))
}

// ScoreDelta is what a new candidate adds on top of the best score already
// counted for the round. It is never negative.
func ScoreDelta(candidate, previousBest int) int {
	if candidate <= previousBest {
		return 0
	}
	return candidate - previousBest
}

// RoundSimilarity rounds a similarity to two decimals for display.
func RoundSimilarity(similarity float64) float64 {
	return math.Round(similarity*100) / 100
}

// PromptHint tells players how many words the secret prompt has.
func PromptHint(prompt string) string {
	if prompt == "" {
		return ""
	}
	return fmt.Sprintf("%d words", len(strings.Fields(prompt)))
}
