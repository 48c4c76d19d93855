package bot

import (
	"math/rand"
	"time"

	"pili/internal/domain"
)

// EasyStrategy plays uniformly at random within the rules. It exists to
// fill seats, not to win.
type EasyStrategy struct {
	rng    *rand.Rand
	tuning Tuning
}

func NewEasyStrategy(rng *rand.Rand) *EasyStrategy {
	return &EasyStrategy{rng: rng, tuning: easyTuning}
}

func (s *EasyStrategy) ThinkDelay() time.Duration {
	return thinkDelay(s.rng, s.tuning)
}

func (s *EasyStrategy) DecideBet(g *domain.Game, p *domain.Player, ctx domain.BetContext) (int, bool) {
	return legalBet(s.rng.Intn(ctx.CardsPerPlayer+1), g, ctx)
}

func (s *EasyStrategy) DecideCard(g *domain.Game, p *domain.Player) (int, *int) {
	cards := playable(g, p)
	c := cards[s.rng.Intn(len(cards))]
	if c.IsJoker {
		jv := 0
		if s.rng.Intn(2) == 1 {
			jv = g.Settings.MaxCardValue + 1
		}
		return c.ID, &jv
	}
	return c.ID, nil
}

func (s *EasyStrategy) DecideDesignation(g *domain.Game, p *domain.Player) string {
	others := otherPlayers(g, p.ID)
	return others[s.rng.Intn(len(others))].ID
}

func (s *EasyStrategy) DecidePassCards(g *domain.Game, p *domain.Player) []int {
	n := g.Mission.PassCount
	if g.Mission.IsPassAll() {
		n = len(p.Hand)
	}
	ids := make([]int, 0, n)
	for _, i := range s.rng.Perm(len(p.Hand))[:n] {
		ids = append(ids, p.Hand[i].ID)
	}
	return ids
}

func (s *EasyStrategy) DecideExchange(g *domain.Game, p *domain.Player) (int, string) {
	others := otherPlayers(g, p.ID)
	c := p.Hand[s.rng.Intn(len(p.Hand))]
	return c.ID, others[s.rng.Intn(len(others))].ID
}
