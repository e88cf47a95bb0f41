package gamedata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundProgress(t *testing.T) {
	d := 30 * time.Second

	assert.Equal(t, 0.0, RoundProgress(0, d))
	assert.InDelta(t, 0.5, RoundProgress(15*time.Second, d), 1e-9)
	assert.Equal(t, 1.0, RoundProgress(45*time.Second, d))
	assert.Equal(t, 0.0, RoundProgress(-time.Second, d))
	assert.Equal(t, 1.0, RoundProgress(time.Second, 0))
}

func TestTimeModifier_Boundaries(t *testing.T) {
	assert.Equal(t, 1.0, TimeModifier(0))
	assert.Equal(t, 1.0, TimeModifier(0.5))
	assert.Equal(t, 1.0, TimeModifier(0.8))
	assert.InDelta(t, 0.5, TimeModifier(1.0), 1e-9)
}

func TestTimeModifier_DecreasingAfterDecay(t *testing.T) {
	prev := TimeModifier(0.8)
	for p := 0.801; p <= 1.0; p += 0.001 {
		m := TimeModifier(p)
		assert.Less(t, m, prev, "progress %.3f", p)
		prev = m
	}
}

func TestTimeModifier_StepAtDecayStart(t *testing.T) {
	assert.Equal(t, 1.0, TimeModifier(0.8))
	assert.InDelta(t, 0.7, TimeModifier(0.8000001), 1e-6)
}

func TestTimeModifier_ContinuousInsideDecay(t *testing.T) {
	for _, p := range []float64{0.85, 0.9, 0.99} {
		assert.InDelta(t, TimeModifier(p), TimeModifier(p+1e-7), 1e-6, "progress %.2f", p)
	}
}

func TestRoundScore_EarlyGuess(t *testing.T) {
	assert.Equal(t, 900, BasePoints(90, 1000))
	assert.Equal(t, 900, RoundScore(90, 1000, 0.5))
}

func TestRoundScore_LateGuess(t *testing.T) {
	assert.Equal(t, 950, BasePoints(95, 1000))
	assert.Equal(t, 522, RoundScore(95, 1000, 0.95))
}

func TestRoundScore_Floors(t *testing.T) {
	assert.Equal(t, 579, BasePoints(57.99, 1000))
	assert.Equal(t, 0, BasePoints(0, 1000))
	assert.Equal(t, 0, BasePoints(ScoringFailed, 1000))
	assert.Equal(t, 50, RoundScore(10, 1000, 1.0))
}

func TestScoreDelta(t *testing.T) {
	assert.Equal(t, 900, ScoreDelta(900, 0))
	assert.Equal(t, 0, ScoreDelta(522, 900))
	assert.Equal(t, 0, ScoreDelta(900, 900))
	assert.Equal(t, 50, ScoreDelta(950, 900))
}

func TestRoundSimilarity(t *testing.T) {
	assert.Equal(t, 87.35, RoundSimilarity(87.3456))
	assert.Equal(t, -1.0, RoundSimilarity(ScoringFailed))
}

func TestPromptHint(t *testing.T) {
	assert.Equal(t, "3 words", PromptHint("A blue cup"))
	assert.Equal(t, "1 words", PromptHint("minecraft"))
	assert.Equal(t, "", PromptHint(""))
}
