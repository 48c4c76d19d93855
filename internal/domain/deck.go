package domain

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrDeckCapacity indicates a deal request for more cards than the deck
// holds. Invariant class: the mission catalogue never exceeds capacity for
// legal room sizes.
var ErrDeckCapacity = errors.New("deal exceeds deck capacity")

// Deck owns the full card set for a game: one joker plus maxValue numbered
// cards. Deal rebuilds and reshuffles the full deck each round; the undealt
// remainder backs single-card draws.
type Deck struct {
	maxValue  int
	rng       *rand.Rand
	remainder []Card
}

// NewDeck constructs a deck for the given maximum card value using the
// injected random source.
func NewDeck(maxValue int, rng *rand.Rand) *Deck {
	return &Deck{maxValue: maxValue, rng: rng}
}

// Size returns the total number of cards in the full deck.
func (d *Deck) Size() int {
	return d.maxValue + 1
}

// Remaining returns the count of undealt cards held back from the last deal.
func (d *Deck) Remaining() int {
	return len(d.remainder)
}

func (d *Deck) build() []Card {
	cards := make([]Card, 0, d.Size())
	cards = append(cards, Card{ID: 0, Value: JokerValue, IsJoker: true})
	for v := 1; v <= d.maxValue; v++ {
		cards = append(cards, Card{ID: v, Value: v})
	}
	return cards
}

// Deal shuffles the full deck and distributes cardsPerPlayer cards to each
// player round-robin. The undealt remainder is retained for DrawOne.
func (d *Deck) Deal(playerCount, cardsPerPlayer int) ([][]Card, error) {
	need := playerCount * cardsPerPlayer
	if need > d.Size() {
		return nil, fmt.Errorf("%w: %d players x %d cards > %d", ErrDeckCapacity, playerCount, cardsPerPlayer, d.Size())
	}

	cards := d.build()
	d.rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	// Reassign ids by shuffled position so a masked card's id carries no
	// information about its value.
	for i := range cards {
		cards[i].ID = i + 1
	}

	hands := make([][]Card, playerCount)
	for i := range hands {
		hands[i] = make([]Card, 0, cardsPerPlayer)
	}
	for i := 0; i < need; i++ {
		hands[i%playerCount] = append(hands[i%playerCount], cards[i])
	}
	d.remainder = cards[need:]
	return hands, nil
}

// DrawOne pops a card from the undealt remainder. The second return is false
// when the remainder is exhausted.
func (d *Deck) DrawOne() (Card, bool) {
	if len(d.remainder) == 0 {
		return Card{}, false
	}
	c := d.remainder[0]
	d.remainder = d.remainder[1:]
	return c, true
}
