package bot

import (
	"math/rand"
	"time"

	"pili/internal/domain"
)

// MediumStrategy bets from banded win-probability estimates and plays the
// cheapest card that still takes the trick.
type MediumStrategy struct {
	rng    *rand.Rand
	tuning Tuning
}

func NewMediumStrategy(rng *rand.Rand) *MediumStrategy {
	return &MediumStrategy{rng: rng, tuning: mediumTuning}
}

func (s *MediumStrategy) ThinkDelay() time.Duration {
	return thinkDelay(s.rng, s.tuning)
}

func (s *MediumStrategy) DecideBet(g *domain.Game, p *domain.Player, ctx domain.BetContext) (int, bool) {
	est := estimateBet(p.Hand, g.Settings.MaxCardValue, ctx.PlayerCount, s.tuning)
	return legalBet(est, g, ctx)
}

func (s *MediumStrategy) DecideCard(g *domain.Game, p *domain.Player) (int, *int) {
	return heuristicCard(g, p, s.rng, s.tuning)
}

// DecideDesignation picks the opponent deepest in penalties, betting that
// they are the likeliest to miss again.
func (s *MediumStrategy) DecideDesignation(g *domain.Game, p *domain.Player) string {
	others := otherPlayers(g, p.ID)
	target := others[0]
	for _, o := range others[1:] {
		if o.Pilis > target.Pilis {
			target = o
		}
	}
	return target.ID
}

func (s *MediumStrategy) DecidePassCards(g *domain.Game, p *domain.Player) []int {
	if g.Mission.IsPassAll() {
		return weakestIDs(p.Hand, len(p.Hand), g.Settings.MaxCardValue)
	}
	return weakestIDs(p.Hand, g.Mission.PassCount, g.Settings.MaxCardValue)
}

func (s *MediumStrategy) DecideExchange(g *domain.Game, p *domain.Player) (int, string) {
	weak := weakestIDs(p.Hand, 1, g.Settings.MaxCardValue)
	return weak[0], s.DecideDesignation(g, p)
}
