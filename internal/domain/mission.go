package domain

import (
	"errors"
	"time"
)

// MissionEffect tags the single special behavior a mission activates.
// Missions are a closed set of variants dispatched through the Mission
// methods, with no-op defaults supplied centrally.
type MissionEffect int

const (
	// EffectNone plays a plain round with no special rule.
	EffectNone MissionEffect = iota
	// EffectReversedValues inverts every effective value: N+1 - nominal.
	EffectReversedValues
	// EffectForbiddenBet forbids one fixed bet value.
	EffectForbiddenBet
	// EffectNoCopyBet forbids copying the immediately preceding bettor's bet.
	EffectNoCopyBet
	// EffectPlayHighest restricts plays to the current highest card in hand.
	EffectPlayHighest
	// EffectPlayLowest restricts plays to the current lowest card in hand.
	EffectPlayLowest
	// EffectBlindOwnHand hides the player's own hand and reveals the others.
	EffectBlindOwnHand
	// EffectPeekThenHide grants a timed look at the hand, then hides it.
	EffectPeekThenHide
	// EffectSimultaneous makes all seats play into the trick without turn order.
	EffectSimultaneous
	// EffectPassCards transfers a fixed number of cards to a neighbor after betting.
	EffectPassCards
	// EffectPassAll transfers the entire hand to a neighbor after betting.
	EffectPassAll
	// EffectDrawExtra deals one extra card from the remainder after betting.
	EffectDrawExtra
	// EffectAllRevealed plays the round with every hand face-up.
	EffectAllRevealed
	// EffectDesignation has each player privately name a pili-sharing target.
	EffectDesignation
	// EffectExchangeOnWin forces the trick winner to swap a card with an opponent.
	EffectExchangeOnWin
	// EffectFirstTrickPenalty penalizes winning the round's first trick.
	EffectFirstTrickPenalty
	// EffectLastTrickPenalty penalizes winning the round's last trick.
	EffectLastTrickPenalty
	// EffectMarkedValuePenalty penalizes winning tricks containing marked values.
	EffectMarkedValuePenalty
	// EffectBetReward rewards an exactly met positive bet at round end.
	EffectBetReward
	// EffectDoubleMissPenalty doubles the base penalty for a missed bet.
	EffectDoubleMissPenalty
	// EffectMissPlusOne adds one extra pili whenever the bet is missed.
	EffectMissPlusOne
)

// PassDirection names the neighbor a pass mission targets.
type PassDirection int

const (
	PassLeft PassDirection = iota
	PassRight
)

// ErrBetValueForbidden rejects a bet value the active mission disallows.
var ErrBetValueForbidden = errors.New("bet value forbidden by mission")

// ErrBetCopyForbidden rejects copying the previous bettor's value.
var ErrBetCopyForbidden = errors.New("cannot copy previous bet")

// Mission is one rule-variant card from the mission deck. It is immutable
// configuration: all round-local bookkeeping lives in RoundState, owned by
// the engine and passed into hooks, so a mission reused across deck cycles
// carries no stale data.
type Mission struct {
	ID             string
	Name           string
	Description    string
	CardsPerPlayer int
	Effect         MissionEffect
	Expert         bool

	ForbiddenBet  int // EffectForbiddenBet
	PassCount     int // EffectPassCards
	PassDirection PassDirection
	PeekDuration  time.Duration // EffectPeekThenHide
	MarkedDivisor int           // EffectMarkedValuePenalty
	Penalty       int           // per-trick penalty effects, default 1
}

// HasPreBetPhase reports whether the round runs a mission step between
// dealing and betting.
func (m *Mission) HasPreBetPhase() bool {
	return m.Effect == EffectPeekThenHide || m.Effect == EffectBlindOwnHand
}

// HasPostBetPhase reports whether the round runs a mission step between
// betting and trick play.
func (m *Mission) HasPostBetPhase() bool {
	switch m.Effect {
	case EffectPassCards, EffectPassAll, EffectDrawExtra, EffectAllRevealed, EffectDesignation:
		return true
	}
	return false
}

// ValidateBet applies the mission's additional bet rule on top of the
// universal validator.
func (m *Mission) ValidateBet(bet int, ctx BetContext) error {
	switch m.Effect {
	case EffectForbiddenBet:
		if bet == m.ForbiddenBet {
			return ErrBetValueForbidden
		}
	case EffectNoCopyBet:
		if ctx.PreviousBet != nil && bet == *ctx.PreviousBet {
			return ErrBetCopyForbidden
		}
	}
	return nil
}

// EffectiveValue transforms a play's comparison value. The same transform
// applies to numbered cards and declared joker values.
func (m *Mission) EffectiveValue(nominal, maxValue int) int {
	if m.Effect == EffectReversedValues {
		return maxValue + 1 - nominal
	}
	return nominal
}

// PlayableCards returns the subset of the hand currently legal to play.
// The joker is always exempt from play constraints.
func (m *Mission) PlayableCards(hand []Card) []Card {
	switch m.Effect {
	case EffectPlayHighest:
		return constrainedCards(hand, func(c, best Card) bool { return c.Value > best.Value })
	case EffectPlayLowest:
		return constrainedCards(hand, func(c, best Card) bool { return c.Value < best.Value })
	}
	return hand
}

func constrainedCards(hand []Card, better func(c, best Card) bool) []Card {
	var bestFound bool
	var best Card
	for _, c := range hand {
		if c.IsJoker {
			continue
		}
		if !bestFound || better(c, best) {
			best = c
			bestFound = true
		}
	}
	out := make([]Card, 0, 2)
	for _, c := range hand {
		if c.IsJoker || (bestFound && c.ID == best.ID) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return hand
	}
	return out
}

// Visibility describes who may see which hands under this mission.
type Visibility struct {
	OwnVisible    bool
	OthersVisible bool
}

// BaseVisibility returns the mission's visibility rule before any round
// progress (peeks, reveals) recorded in RoundState is applied.
func (m *Mission) BaseVisibility() Visibility {
	switch m.Effect {
	case EffectBlindOwnHand:
		return Visibility{OwnVisible: false, OthersVisible: true}
	case EffectAllRevealed:
		return Visibility{OwnVisible: true, OthersVisible: true}
	default:
		return Visibility{OwnVisible: true, OthersVisible: false}
	}
}

// IsSimultaneous reports whether all seats play into the trick at once.
func (m *Mission) IsSimultaneous() bool {
	return m.Effect == EffectSimultaneous
}

// Peek returns the reveal-then-hide duration, or zero when the mission has
// no peek step.
func (m *Mission) Peek() time.Duration {
	if m.Effect == EffectPeekThenHide {
		return m.PeekDuration
	}
	return 0
}

// PassesCards reports whether a post-bet card transfer happens, and how many
// cards move. For pass-all missions the count is the full current hand.
func (m *Mission) PassesCards() bool {
	return m.Effect == EffectPassCards || m.Effect == EffectPassAll
}

// IsPassAll reports whether the entire hand is transferred.
func (m *Mission) IsPassAll() bool {
	return m.Effect == EffectPassAll
}

// DrawsExtraCard reports whether every player draws one card from the deck
// remainder after betting, extending the round's trick target by one.
func (m *Mission) DrawsExtraCard() bool {
	return m.Effect == EffectDrawExtra
}

// RequiresDesignation reports whether each player names a pili-sharing
// target after betting.
func (m *Mission) RequiresDesignation() bool {
	return m.Effect == EffectDesignation
}

// RequiresExchangeOnWin reports whether the trick winner must swap one card
// with an opponent immediately after winning.
func (m *Mission) RequiresExchangeOnWin() bool {
	return m.Effect == EffectExchangeOnWin
}

// OnTrickWon returns immediate per-player deltas for a resolved trick.
func (m *Mission) OnTrickWon(winnerID string, trick Trick, trickNumber, totalTricks int) []ScoreDelta {
	switch m.Effect {
	case EffectFirstTrickPenalty:
		if trickNumber == 1 {
			return []ScoreDelta{{PlayerID: winnerID, Pilis: m.Penalty, Reason: "won first trick"}}
		}
	case EffectLastTrickPenalty:
		if trickNumber == totalTricks {
			return []ScoreDelta{{PlayerID: winnerID, Pilis: m.Penalty, Reason: "won last trick"}}
		}
	case EffectMarkedValuePenalty:
		marked := 0
		for _, p := range trick.Plays {
			if !p.Card.IsJoker && p.Card.Value%m.MarkedDivisor == 0 {
				marked++
			}
		}
		if marked > 0 {
			return []ScoreDelta{{PlayerID: winnerID, Pilis: marked * m.Penalty, Reason: "won marked cards"}}
		}
	}
	return nil
}

// OnRoundEnd returns end-of-round deltas: successful-bet rewards, miss
// multipliers and designation payouts.
func (m *Mission) OnRoundEnd(players []*Player, round *RoundState) []ScoreDelta {
	var deltas []ScoreDelta
	switch m.Effect {
	case EffectBetReward:
		for _, p := range players {
			if p.Bet != nil && *p.Bet > 0 && *p.Bet == p.TricksWon {
				deltas = append(deltas, ScoreDelta{PlayerID: p.ID, Reward: *p.Bet, Reason: "exact bet"})
			}
		}
	case EffectDoubleMissPenalty:
		for _, p := range players {
			if base := missedBy(p); base > 0 {
				deltas = append(deltas, ScoreDelta{PlayerID: p.ID, Pilis: base, Reason: "missed bet doubled"})
			}
		}
	case EffectMissPlusOne:
		for _, p := range players {
			if missedBy(p) > 0 {
				deltas = append(deltas, ScoreDelta{PlayerID: p.ID, Pilis: 1, Reason: "missed bet"})
			}
		}
	case EffectDesignation:
		base := make(map[string]int, len(players))
		for _, p := range players {
			base[p.ID] = missedBy(p)
		}
		for designator, target := range round.Designations {
			if extra := base[target]; extra > 0 {
				deltas = append(deltas, ScoreDelta{PlayerID: designator, Pilis: extra, Reason: "designated target missed"})
			}
		}
	}
	return deltas
}

func missedBy(p *Player) int {
	bet := 0
	if p.Bet != nil {
		bet = *p.Bet
	}
	diff := bet - p.TricksWon
	if diff < 0 {
		diff = -diff
	}
	return diff
}

// RoundState is the engine-owned, round-scoped bookkeeping missions operate
// on. It is recreated every round; mission instances stay stateless.
type RoundState struct {
	TurnSeat      int
	PeekEnded     bool
	HandsRevealed bool
	PendingPasses map[string][]int  // playerID -> card ids to pass
	Designations  map[string]string // designator -> target
	ExchangeBy    string            // trick winner owing an exchange, "" if none
	TrickDeltas   []ScoreDelta
}

// NewRoundState returns fresh bookkeeping for a round.
func NewRoundState() *RoundState {
	return &RoundState{
		PendingPasses: make(map[string][]int),
		Designations:  make(map[string]string),
	}
}
