package bot

import (
	"time"

	"pili/internal/domain"
)

// Strategy is the decision policy a bot difficulty tier implements. Every
// method must return a legal action for the given state; strategies hold no
// state beyond their random source.
type Strategy interface {
	// ThinkDelay paces the bot so its action is not instantaneous. Never
	// used for rule decisions.
	ThinkDelay() time.Duration

	// DecideBet returns a legal bet for the player under both the universal
	// validator and the active mission's override. ok is false when no
	// value passes both validators; the returned bet is then a best-effort
	// zero and the caller should log the anomaly.
	DecideBet(g *domain.Game, p *domain.Player, ctx domain.BetContext) (bet int, ok bool)

	// DecideCard returns the card to play into the current trick and, for a
	// joker, the declared value.
	DecideCard(g *domain.Game, p *domain.Player) (cardID int, jokerValue *int)

	// DecideDesignation returns the target player for a designation mission.
	DecideDesignation(g *domain.Game, p *domain.Player) string

	// DecidePassCards returns the cards to give away for a pass mission.
	DecidePassCards(g *domain.Game, p *domain.Player) []int

	// DecideExchange returns the card to give and the opponent to swap with
	// after winning a trick under an exchange mission.
	DecideExchange(g *domain.Game, p *domain.Player) (cardID int, targetID string)
}
