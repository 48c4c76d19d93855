package domain

import "errors"

var (
	// ErrBetNegative rejects bets below zero.
	ErrBetNegative = errors.New("bet cannot be negative")
	// ErrBetTooHigh rejects bets above the round's card count.
	ErrBetTooHigh = errors.New("bet exceeds cards in round")
	// ErrBetSumForbidden rejects the last bettor's bet when it would make the
	// sum of all bets equal the round's card count.
	ErrBetSumForbidden = errors.New("bet would make total bets equal cards in round")
)

// BetContext carries everything the mission-independent bet rule needs:
// the bettor's position in betting order, the table size, the round's card
// count and all bets placed so far (nil for not-yet-bet).
type BetContext struct {
	Position       int // 0-based position in betting order
	PlayerCount    int
	CardsPerPlayer int
	Bets           []*int // indexed by betting order
	PreviousBet    *int   // the immediately preceding bettor's bet, if any
}

func (c BetContext) placedCount() int {
	n := 0
	for _, b := range c.Bets {
		if b != nil {
			n++
		}
	}
	return n
}

func (c BetContext) placedSum() int {
	sum := 0
	for _, b := range c.Bets {
		if b != nil {
			sum += *b
		}
	}
	return sum
}

// IsLastBettor reports whether this bettor is the final one to act.
func (c BetContext) IsLastBettor() bool {
	return c.placedCount() == c.PlayerCount-1
}

// ValidateBet applies the universal bet legality rules, in order: no
// negative bets, no bets above the round's card count, and for the final
// bettor no bet that makes the sum of all bets equal the card count.
func ValidateBet(bet int, ctx BetContext) error {
	if bet < 0 {
		return ErrBetNegative
	}
	if bet > ctx.CardsPerPlayer {
		return ErrBetTooHigh
	}
	if ctx.IsLastBettor() && ctx.placedSum()+bet == ctx.CardsPerPlayer {
		return ErrBetSumForbidden
	}
	return nil
}

// ForbiddenLastBet returns the single value the final bettor may not choose,
// if any. It agrees with ValidateBet by construction and is used to
// pre-filter choices for humans and bots alike.
func ForbiddenLastBet(ctx BetContext) (int, bool) {
	if !ctx.IsLastBettor() {
		return 0, false
	}
	forbidden := ctx.CardsPerPlayer - ctx.placedSum()
	if forbidden < 0 || forbidden > ctx.CardsPerPlayer {
		return 0, false
	}
	return forbidden, true
}
