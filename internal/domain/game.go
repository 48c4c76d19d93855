package domain

import "math/rand"

// Game holds the authoritative state for one room. All mutation goes
// through the app-layer engine; rooms are independent and never share
// state.
type Game struct {
	Machine  *StateMachine
	Settings Settings

	Players  []*Player // seat order
	Deck     *Deck
	Missions *MissionDeck

	Mission      *Mission // active round's mission, nil in lobby
	DealerSeat   int
	RoundNumber  int
	TrickTarget  int // tricks this round; CardsPerPlayer plus any extra draw
	CurrentTrick *Trick
	TrickHistory []Trick
	Round        *RoundState
}

// NewGame constructs a game in the lobby with the given settings and random
// source. The same source drives shuffles and the mission cycle so outcomes
// are reproducible under test.
func NewGame(settings Settings, rng *rand.Rand) *Game {
	return &Game{
		Machine:  NewStateMachine(),
		Settings: settings,
		Deck:     NewDeck(settings.MaxCardValue, rng),
		Missions: NewMissionDeck(settings.ExpertMissions, rng),
	}
}

// Phase returns the current lifecycle phase.
func (g *Game) Phase() Phase {
	return g.Machine.Current()
}

// PlayerByID returns the player with the given id.
func (g *Game) PlayerByID(id string) (*Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// PlayerBySeat returns the player at the given seat index.
func (g *Game) PlayerBySeat(seat int) (*Player, bool) {
	for _, p := range g.Players {
		if p.Seat == seat {
			return p, true
		}
	}
	return nil, false
}

// NextSeat returns the seat to the left of the given one (ascending order,
// wrapping).
func (g *Game) NextSeat(seat int) int {
	return (seat + 1) % len(g.Players)
}

// PrevSeat returns the seat to the right of the given one.
func (g *Game) PrevSeat(seat int) int {
	return (seat - 1 + len(g.Players)) % len(g.Players)
}

// NeighborSeat returns the pass target for the given direction.
func (g *Game) NeighborSeat(seat int, dir PassDirection) int {
	if dir == PassRight {
		return g.PrevSeat(seat)
	}
	return g.NextSeat(seat)
}

// ResolvedTricks returns the count of resolved tricks this round.
func (g *Game) ResolvedTricks() int {
	return len(g.TrickHistory)
}
