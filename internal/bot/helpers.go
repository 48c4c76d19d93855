package bot

import (
	"math/rand"
	"sort"
	"time"

	"pili/internal/domain"
)

func thinkDelay(rng *rand.Rand, t Tuning) time.Duration {
	d := t.BaseDelay
	if t.DelayJitter > 0 {
		d += time.Duration(rng.Int63n(int64(t.DelayJitter)))
	}
	if d > t.MaxDelay {
		d = t.MaxDelay
	}
	return d
}

// legalBet clamps the estimate to [0, maxBet] and scans ascending from it,
// wrapping to zero, until both the universal and the mission validator
// accept. At least one legal value always exists when the rules are
// internally consistent; ok is false when the scan finds none so the
// caller can log the anomaly instead of crashing the room.
func legalBet(estimate int, g *domain.Game, ctx domain.BetContext) (int, bool) {
	maxBet := ctx.CardsPerPlayer
	if estimate < 0 {
		estimate = 0
	}
	if estimate > maxBet {
		estimate = maxBet
	}
	legal := func(b int) bool {
		return domain.ValidateBet(b, ctx) == nil && g.Mission.ValidateBet(b, ctx) == nil
	}
	for b := estimate; b <= maxBet; b++ {
		if legal(b) {
			return b, true
		}
	}
	for b := 0; b < estimate; b++ {
		if legal(b) {
			return b, true
		}
	}
	return 0, false
}

// playable returns the cards the mission currently allows, falling back to
// the full hand if the constraint would eliminate everything.
func playable(g *domain.Game, p *domain.Player) []domain.Card {
	cards := g.Mission.PlayableCards(p.Hand)
	if len(cards) == 0 {
		return p.Hand
	}
	return cards
}

// sortAscending orders cards by value with the joker treated as the
// maximum.
func sortAscending(cards []domain.Card, maxValue int) []domain.Card {
	out := append([]domain.Card{}, cards...)
	sort.Slice(out, func(i, j int) bool {
		return cardStrength(out[i], maxValue) < cardStrength(out[j], maxValue)
	})
	return out
}

func cardStrength(c domain.Card, maxValue int) int {
	if c.IsJoker {
		return maxValue + 1
	}
	return c.Value
}

// weakestIDs picks the n numerically weakest cards, joker last.
func weakestIDs(hand []domain.Card, n, maxValue int) []int {
	sorted := sortAscending(hand, maxValue)
	if n > len(sorted) {
		n = len(sorted)
	}
	ids := make([]int, 0, n)
	for _, c := range sorted[:n] {
		ids = append(ids, c.ID)
	}
	return ids
}

func otherPlayers(g *domain.Game, selfID string) []*domain.Player {
	others := make([]*domain.Player, 0, len(g.Players)-1)
	for _, p := range g.Players {
		if p.ID != selfID {
			others = append(others, p)
		}
	}
	return others
}

// estimateBet sums per-card win probabilities over value bands.
func estimateBet(hand []domain.Card, maxValue, playerCount int, t Tuning) int {
	sum := 0.0
	for _, c := range hand {
		sum += winProbability(c, maxValue, t.Bands)
	}
	if t.CountDiscount && playerCount > 2 {
		// More seats means more chances someone holds a higher card.
		sum *= 4.0 / float64(playerCount+2)
	}
	return int(sum + 0.5)
}

func winProbability(c domain.Card, maxValue int, b BandWeights) float64 {
	if c.IsJoker {
		return b.Joker
	}
	frac := float64(c.Value) / float64(maxValue)
	switch {
	case frac >= b.HighCut:
		return b.High
	case frac >= b.MidCut:
		return b.Mid
	case frac >= b.LowCut:
		return b.Low
	default:
		return b.Floor
	}
}

// heuristicCard is the shared medium/hard play policy: middle card when
// leading, otherwise the lowest playable card that still beats the trick's
// current highest effective value, or the lowest playable card.
func heuristicCard(g *domain.Game, p *domain.Player, rng *rand.Rand, t Tuning) (int, *int) {
	maxValue := g.Settings.MaxCardValue
	sorted := sortAscending(playable(g, p), maxValue)

	jokerDecl := 0
	if rng.Float64() < t.JokerHighBias {
		jokerDecl = maxValue + 1
	}

	pick := func(c domain.Card) (int, *int) {
		if c.IsJoker {
			jv := jokerDecl
			return c.ID, &jv
		}
		return c.ID, nil
	}

	if g.CurrentTrick == nil || len(g.CurrentTrick.Plays) == 0 {
		return pick(sorted[len(sorted)/2])
	}

	highest := g.CurrentTrick.HighestEffective()
	for _, c := range sorted {
		v := c.Value
		if c.IsJoker {
			v = jokerDecl
		}
		if g.Mission.EffectiveValue(v, maxValue) > highest {
			return pick(c)
		}
	}
	return pick(sorted[0])
}
