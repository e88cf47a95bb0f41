package players

import (
	"errors"
	"maps"
	"slices"

	"pictionary/internal/gamedata"
)

var (
	ErrNameTaken     = errors.New("name taken")
	ErrUnknownPlayer = errors.New("unknown player")
)

// Roster tracks who is in a room, in join order, together with cumulative
// scores and the best attempt of each player in the current round.
//
// A Roster is not safe for concurrent use; the owning room serializes access.
type Roster struct {
	order          []string
	scores         map[string]int
	host           string
	bestScores     map[string]int
	bestSimilarity map[string]float64
}

func NewRoster() *Roster {
	return &Roster{
		scores:         make(map[string]int),
		bestScores:     make(map[string]int),
		bestSimilarity: make(map[string]float64),
	}
}

// Add enrolls name with a score of zero. The first player becomes host.
func (r *Roster) Add(name string) error {
	if _, ok := r.scores[name]; ok {
		return ErrNameTaken
	}
	r.order = append(r.order, name)
	r.scores[name] = 0
	if r.host == "" {
		r.host = name
	}
	return nil
}

// Remove drops name from the roster. If name was host, the earliest remaining
// player takes over, or nobody if the roster is now empty.
func (r *Roster) Remove(name string) bool {
	i := slices.Index(r.order, name)
	if i < 0 {
		return false
	}
	r.order = slices.Delete(r.order, i, i+1)
	delete(r.scores, name)
	delete(r.bestScores, name)
	delete(r.bestSimilarity, name)

	if r.host == name {
		r.host = ""
		if len(r.order) > 0 {
			r.host = r.order[0]
		}
	}
	return true
}

func (r *Roster) Has(name string) bool {
	_, ok := r.scores[name]
	return ok
}

func (r *Roster) Len() int {
	return len(r.order)
}

func (r *Roster) Host() string {
	return r.host
}

func (r *Roster) IsHost(name string) bool {
	return name != "" && r.host == name
}

func (r *Roster) Names() []string {
	return slices.Clone(r.order)
}

func (r *Roster) Score(name string) int {
	return r.scores[name]
}

// ResetRound clears the per-round best maps.
func (r *Roster) ResetRound() {
	clear(r.bestScores)
	clear(r.bestSimilarity)
}

func (r *Roster) BestSimilarity(name string) float64 {
	return r.bestSimilarity[name]
}

func (r *Roster) BestRoundScore(name string) int {
	return r.bestScores[name]
}

// RecordSimilarity stores similarity as the player's round best if it beats
// the previous best. It reports whether the best changed.
func (r *Roster) RecordSimilarity(name string, similarity float64) bool {
	if !r.Has(name) || similarity <= r.bestSimilarity[name] {
		return false
	}
	r.bestSimilarity[name] = similarity
	return true
}

// RecordRoundScore credits the player with the part of candidate that exceeds
// their best score so far this round and returns the credited amount.
func (r *Roster) RecordRoundScore(name string, candidate int) (int, error) {
	if !r.Has(name) {
		return 0, ErrUnknownPlayer
	}
	delta := gamedata.ScoreDelta(candidate, r.bestScores[name])
	if delta == 0 {
		return 0, nil
	}
	r.scores[name] += delta
	r.bestScores[name] = candidate
	return delta, nil
}

// Standings lists every player in join order.
func (r *Roster) Standings() []Standing {
	out := make([]Standing, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Standing{
			Name:           name,
			Score:          r.scores[name],
			IsHost:         name == r.host,
			BestSimilarity: r.bestSimilarity[name],
		})
	}
	return out
}

// RoundResults captures the round outcome of every player still present.
func (r *Roster) RoundResults() []RoundResult {
	out := make([]RoundResult, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, RoundResult{
			Name:           name,
			BestSimilarity: r.bestSimilarity[name],
			RoundScore:     r.bestScores[name],
			TotalScore:     r.scores[name],
		})
	}
	return out
}

// BestSimilarities returns a copy of the round's best similarity map.
func (r *Roster) BestSimilarities() map[string]float64 {
	return maps.Clone(r.bestSimilarity)
}
