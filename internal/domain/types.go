package domain

// DefaultMaxCardValue is the highest numbered card in the base ruleset.
// The full deck is the joker plus cards valued 1..MaxCardValue.
const DefaultMaxCardValue = 55

// JokerValue is the nominal value of the joker card. Its effective value is
// declared by the player at play time, in [0, MaxCardValue+1].
const JokerValue = 0

// Difficulty selects a bot decision policy tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Card is a single card in the pili deck. Cards are immutable once created.
type Card struct {
	ID      int  `json:"id"`
	Value   int  `json:"value"`
	IsJoker bool `json:"is_joker"`
}

// Player holds state for a participant in a game room. Hand, Bet and
// TricksWon are round-scoped; Pilis accumulates across rounds.
type Player struct {
	ID         string
	Name       string
	IsBot      bool
	Difficulty Difficulty // bots only
	Seat       int        // fixed turn-order position
	Hand       []Card
	Bet        *int // nil until placed this round
	TricksWon  int
	Pilis      int
	Ready      bool
	Connected  bool
}

// HasCard reports whether the player's hand contains the card with the id.
func (p *Player) HasCard(cardID int) bool {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// CardByID returns the card with the given id from the player's hand.
func (p *Player) CardByID(cardID int) (Card, bool) {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c, true
		}
	}
	return Card{}, false
}

// RemoveCard removes the card with the given id from the player's hand.
func (p *Player) RemoveCard(cardID int) (Card, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// PlayedCard is one card committed to a trick, with its comparison value
// already computed by the active mission's transform.
type PlayedCard struct {
	PlayerID       string
	Card           Card
	DeclaredValue  int // joker plays only; otherwise 0
	EffectiveValue int
}

// Trick is one full circuit of plays within a round. Once resolved it is
// frozen and appended to the round history.
type Trick struct {
	Number   int // 1-based within the round
	Plays    []PlayedCard
	WinnerID string // empty until resolved
}

// PlayedBy reports whether the given player already committed a card to
// this trick.
func (t *Trick) PlayedBy(playerID string) bool {
	for _, p := range t.Plays {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}

// HighestEffective returns the current maximum effective value in the trick,
// or -1 if no card has been played yet.
func (t *Trick) HighestEffective() int {
	max := -1
	for _, p := range t.Plays {
		if p.EffectiveValue > max {
			max = p.EffectiveValue
		}
	}
	return max
}

// Settings holds room configuration consumed by the engine. Bounds checking
// is owned by the room collaborator.
type Settings struct {
	MaxPlayers           int
	MaxCardValue         int
	PiliLimit            int
	ExpertMissions       bool
	DefaultBotDifficulty Difficulty
}

// DefaultSettings returns the base ruleset configuration.
func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:           8,
		MaxCardValue:         DefaultMaxCardValue,
		PiliLimit:            6,
		ExpertMissions:       false,
		DefaultBotDifficulty: DifficultyMedium,
	}
}
