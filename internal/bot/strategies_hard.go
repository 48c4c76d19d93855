package bot

import (
	"math/rand"
	"time"

	"pili/internal/domain"
)

// HardStrategy refines the medium policy: bet estimates are discounted by
// the number of opponents, and exchange targets are chosen to disrupt the
// current leader.
type HardStrategy struct {
	rng    *rand.Rand
	tuning Tuning
}

func NewHardStrategy(rng *rand.Rand) *HardStrategy {
	return &HardStrategy{rng: rng, tuning: hardTuning}
}

func (s *HardStrategy) ThinkDelay() time.Duration {
	return thinkDelay(s.rng, s.tuning)
}

func (s *HardStrategy) DecideBet(g *domain.Game, p *domain.Player, ctx domain.BetContext) (int, bool) {
	est := estimateBet(p.Hand, g.Settings.MaxCardValue, ctx.PlayerCount, s.tuning)
	return legalBet(est, g, ctx)
}

func (s *HardStrategy) DecideCard(g *domain.Game, p *domain.Player) (int, *int) {
	return heuristicCard(g, p, s.rng, s.tuning)
}

// DecideDesignation targets the opponent closest to winning, so a missed
// round costs them the most.
func (s *HardStrategy) DecideDesignation(g *domain.Game, p *domain.Player) string {
	others := otherPlayers(g, p.ID)
	target := others[0]
	for _, o := range others[1:] {
		if o.Pilis < target.Pilis {
			target = o
		}
	}
	return target.ID
}

func (s *HardStrategy) DecidePassCards(g *domain.Game, p *domain.Player) []int {
	if g.Mission.IsPassAll() {
		return weakestIDs(p.Hand, len(p.Hand), g.Settings.MaxCardValue)
	}
	return weakestIDs(p.Hand, g.Mission.PassCount, g.Settings.MaxCardValue)
}

func (s *HardStrategy) DecideExchange(g *domain.Game, p *domain.Player) (int, string) {
	weak := weakestIDs(p.Hand, 1, g.Settings.MaxCardValue)
	return weak[0], s.DecideDesignation(g, p)
}
