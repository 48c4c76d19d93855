package bot

import (
	"math/rand"

	"pili/internal/domain"
)

// Agent binds one seated bot to its strategy. The match handler owns the
// agents and translates their decisions into game operations.
type Agent struct {
	ID       string
	Name     string
	Strategy Strategy
}

func NewAgent(id, name string, level domain.Difficulty, rng *rand.Rand) (*Agent, error) {
	strat, err := NewStrategy(level, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: id, Name: name, Strategy: strat}, nil
}
