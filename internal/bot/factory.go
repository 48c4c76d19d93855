package bot

import (
	"fmt"
	"math/rand"

	"pili/internal/domain"
)

// NewStrategy builds the decision policy for a difficulty tier. The random
// source is owned by the caller so whole matches stay reproducible.
func NewStrategy(level domain.Difficulty, rng *rand.Rand) (Strategy, error) {
	switch level {
	case domain.DifficultyEasy:
		return NewEasyStrategy(rng), nil
	case domain.DifficultyMedium:
		return NewMediumStrategy(rng), nil
	case domain.DifficultyHard:
		return NewHardStrategy(rng), nil
	default:
		return nil, fmt.Errorf("unknown bot difficulty %q", level)
	}
}
