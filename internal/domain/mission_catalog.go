package domain

import (
	"math/rand"
	"time"
)

// StandardMissions returns the base catalogue: cards-per-player 1 to 6, each
// mission activating exactly one special behavior.
func StandardMissions() []*Mission {
	return []*Mission{
		{ID: "one-card", Name: "One Card", Description: "A single card each, no special rule.", CardsPerPlayer: 1, Effect: EffectNone},
		{ID: "full-hand", Name: "Full Hand", Description: "Six cards each, no special rule.", CardsPerPlayer: 6, Effect: EffectNone},
		{ID: "reversed", Name: "Upside Down", Description: "Lowest card wins: every value is inverted.", CardsPerPlayer: 4, Effect: EffectReversedValues},
		{ID: "no-bet-one", Name: "Never One", Description: "Betting exactly one is forbidden.", CardsPerPlayer: 3, Effect: EffectForbiddenBet, ForbiddenBet: 1},
		{ID: "no-copy", Name: "No Parrots", Description: "You may not repeat the previous player's bet.", CardsPerPlayer: 4, Effect: EffectNoCopyBet},
		{ID: "highest-only", Name: "Top Card", Description: "You must play your highest card. Joker is exempt.", CardsPerPlayer: 4, Effect: EffectPlayHighest},
		{ID: "lowest-only", Name: "Bottom Card", Description: "You must play your lowest card. Joker is exempt.", CardsPerPlayer: 4, Effect: EffectPlayLowest},
		{ID: "blind", Name: "Blind Hand", Description: "You see everyone's cards except your own.", CardsPerPlayer: 3, Effect: EffectBlindOwnHand},
		{ID: "blind-one", Name: "Forehead Card", Description: "One unseen card, everyone else's in plain view.", CardsPerPlayer: 1, Effect: EffectBlindOwnHand},
		{ID: "peek", Name: "Quick Look", Description: "Memorize your hand before it goes face down.", CardsPerPlayer: 3, Effect: EffectPeekThenHide, PeekDuration: 5 * time.Second},
		{ID: "all-at-once", Name: "All At Once", Description: "Everyone plays into the trick simultaneously.", CardsPerPlayer: 4, Effect: EffectSimultaneous},
		{ID: "pass-left", Name: "Pass Left", Description: "Pass one card to your left neighbor after betting.", CardsPerPlayer: 4, Effect: EffectPassCards, PassCount: 1, PassDirection: PassLeft},
		{ID: "pass-right-two", Name: "Two To The Right", Description: "Pass two cards to your right neighbor after betting.", CardsPerPlayer: 5, Effect: EffectPassCards, PassCount: 2, PassDirection: PassRight},
		{ID: "pass-all", Name: "Hand Over", Description: "Your whole hand moves one seat to the left after betting.", CardsPerPlayer: 3, Effect: EffectPassAll, PassDirection: PassLeft},
		{ID: "draw-extra", Name: "One More", Description: "Everyone draws an extra card after betting.", CardsPerPlayer: 4, Effect: EffectDrawExtra},
		{ID: "face-up", Name: "Open Table", Description: "Every hand is played face up.", CardsPerPlayer: 4, Effect: EffectAllRevealed},
		{ID: "designate", Name: "Scapegoat", Description: "Secretly pick a player; you also receive their miss.", CardsPerPlayer: 4, Effect: EffectDesignation},
		{ID: "swap-on-win", Name: "Winner Swaps", Description: "The trick winner trades a card with an opponent.", CardsPerPlayer: 4, Effect: EffectExchangeOnWin},
		{ID: "first-trick", Name: "Cold Open", Description: "Winning the first trick costs a pili.", CardsPerPlayer: 5, Effect: EffectFirstTrickPenalty, Penalty: 1},
		{ID: "last-trick", Name: "Hot Finish", Description: "Winning the last trick costs a pili.", CardsPerPlayer: 5, Effect: EffectLastTrickPenalty, Penalty: 1},
		{ID: "fives", Name: "Cursed Fives", Description: "Each multiple of five in a won trick costs a pili.", CardsPerPlayer: 5, Effect: EffectMarkedValuePenalty, MarkedDivisor: 5, Penalty: 1},
		{ID: "exact-reward", Name: "Sharp Shooter", Description: "Hit a positive bet exactly and shed that many pilis.", CardsPerPlayer: 6, Effect: EffectBetReward},
	}
}

// ExpertMissions returns the optional catalogue enabled by room settings.
func ExpertMissions() []*Mission {
	return []*Mission{
		{ID: "reversed-six", Name: "Deep Upside Down", Description: "Six cards, inverted values.", CardsPerPlayer: 6, Effect: EffectReversedValues, Expert: true},
		{ID: "no-bet-zero", Name: "No Cowards", Description: "Betting zero is forbidden.", CardsPerPlayer: 5, Effect: EffectForbiddenBet, ForbiddenBet: 0, Expert: true},
		{ID: "double-miss", Name: "Double Or Nothing", Description: "A missed bet counts twice.", CardsPerPlayer: 4, Effect: EffectDoubleMissPenalty, Expert: true},
		{ID: "miss-plus-one", Name: "Salt In The Wound", Description: "Any missed bet costs one extra pili.", CardsPerPlayer: 5, Effect: EffectMissPlusOne, Expert: true},
		{ID: "quick-peek", Name: "Blink", Description: "A very short look before the cards go face down.", CardsPerPlayer: 2, Effect: EffectPeekThenHide, PeekDuration: 2 * time.Second, Expert: true},
		{ID: "sevens", Name: "Cursed Sevens", Description: "Each multiple of seven in a won trick costs a pili.", CardsPerPlayer: 6, Effect: EffectMarkedValuePenalty, MarkedDivisor: 7, Penalty: 1, Expert: true},
		{ID: "designate-six", Name: "Grand Scapegoat", Description: "Six cards and a secretly chosen victim.", CardsPerPlayer: 6, Effect: EffectDesignation, Expert: true},
		{ID: "pass-right-all", Name: "Everything Right", Description: "Your whole hand moves one seat to the right.", CardsPerPlayer: 2, Effect: EffectPassAll, PassDirection: PassRight, Expert: true},
	}
}

// MissionDeck cycles through a shuffled mission catalogue: no mission
// repeats until every mission has appeared once per cycle, then the deck
// reshuffles and restarts.
type MissionDeck struct {
	missions []*Mission
	order    []int
	next     int
	rng      *rand.Rand
}

// NewMissionDeck builds a deck from the standard catalogue, plus the expert
// catalogue when enabled, using the injected random source.
func NewMissionDeck(includeExpert bool, rng *rand.Rand) *MissionDeck {
	missions := StandardMissions()
	if includeExpert {
		missions = append(missions, ExpertMissions()...)
	}
	d := &MissionDeck{missions: missions, rng: rng}
	d.reshuffle()
	return d
}

func (d *MissionDeck) reshuffle() {
	d.order = d.rng.Perm(len(d.missions))
	d.next = 0
}

// Draw returns the next mission in the cycle.
func (d *MissionDeck) Draw() *Mission {
	if d.next >= len(d.order) {
		d.reshuffle()
	}
	m := d.missions[d.order[d.next]]
	d.next++
	return m
}

// Size returns the number of missions in one cycle.
func (d *MissionDeck) Size() int {
	return len(d.missions)
}
