package prompts

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
)

var ErrEmptyPool = errors.New("prompt pool is empty")

// Pool is an immutable set of secret prompts a round can be played with.
type Pool struct {
	prompts []string
}

// New builds a pool from list, trimming entries and dropping blanks and duplicates.
func New(list []string) (*Pool, error) {
	seen := make(map[string]bool, len(list))
	prompts := make([]string, 0, len(list))
	for _, p := range list {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		prompts = append(prompts, p)
	}
	if len(prompts) == 0 {
		return nil, ErrEmptyPool
	}
	return &Pool{prompts: prompts}, nil
}

// Default returns the built-in prompt pool.
func Default() *Pool {
	p, err := New(defaultPrompts)
	if err != nil {
		panic(err)
	}
	return p
}

// Load reads a newline separated prompt file. Blank lines and lines starting
// with '#' are ignored.
func Load(path string) (*Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening prompts file: %w", err)
	}
	defer f.Close()

	var list []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading prompts file: %w", err)
	}

	pool, err := New(list)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return pool, nil
}

// Pick returns a prompt chosen uniformly at random.
func (p *Pool) Pick() string {
	return p.prompts[rand.IntN(len(p.prompts))]
}

func (p *Pool) Len() int {
	return len(p.prompts)
}

func (p *Pool) List() []string {
	return slices.Clone(p.prompts)
}
