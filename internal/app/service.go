package app

import (
	"math/rand"
	"time"

	"pili/internal/domain"
)

// Service contains the pili game engine use-cases operating on domain
// state. All mutation of a game goes through one Service call at a time;
// the caller is responsible for serializing access per room.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default. Injecting a fixed-seed source makes shuffles and bot jitter
// reproducible under test.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

// Rng exposes the service's random source for bot strategies owned by the
// same room.
func (s *Service) Rng() *rand.Rand {
	return s.rng
}

// NewGame creates a lobby-phase game bound to this service's random source.
func (s *Service) NewGame(settings domain.Settings) *domain.Game {
	return domain.NewGame(settings, s.rng)
}

// AddPlayer seats a new player in the lobby. Bots are ready by default.
func (s *Service) AddPlayer(g *domain.Game, id, name string, isBot bool, difficulty domain.Difficulty) ([]Event, error) {
	if g.Phase() != domain.PhaseLobby {
		return nil, ErrWrongPhase
	}
	if len(g.Players) >= g.Settings.MaxPlayers {
		return nil, ErrGameFull
	}
	if _, ok := g.PlayerByID(id); ok {
		return nil, ErrDuplicatePlayer
	}

	p := &domain.Player{
		ID:         id,
		Name:       name,
		IsBot:      isBot,
		Difficulty: difficulty,
		Seat:       len(g.Players),
		Ready:      isBot,
		Connected:  true,
	}
	g.Players = append(g.Players, p)

	return []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{PlayerID: id, Name: name, Seat: p.Seat, IsBot: isBot},
	}}, nil
}

// RemovePlayer frees a seat and reindexes the remaining players. Host and
// turn-order adjustment beyond reindexing is owned by the room collaborator.
func (s *Service) RemovePlayer(g *domain.Game, id string) ([]Event, error) {
	idx := -1
	for i, p := range g.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUnknownPlayer
	}
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	for i, p := range g.Players {
		p.Seat = i
	}
	return []Event{{Kind: EventPlayerLeft, Payload: PlayerLeftPayload{PlayerID: id}}}, nil
}

// SetReady toggles a player's lobby ready flag.
func (s *Service) SetReady(g *domain.Game, id string, ready bool) ([]Event, error) {
	if g.Phase() != domain.PhaseLobby {
		return nil, ErrWrongPhase
	}
	p, ok := g.PlayerByID(id)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	p.Ready = ready
	return []Event{{Kind: EventPlayerReady, Payload: PlayerReadyPayload{PlayerID: id, Ready: ready}}}, nil
}

// SetConnected records a player's connectivity. Disconnection mid-round is
// not an error: the seat and hand stay occupied.
func (s *Service) SetConnected(g *domain.Game, id string, connected bool) error {
	p, ok := g.PlayerByID(id)
	if !ok {
		return ErrUnknownPlayer
	}
	p.Connected = connected
	return nil
}

// CanStart reports whether the game may leave the lobby: at least two
// players and every human ready.
func (s *Service) CanStart(g *domain.Game) error {
	if g.Phase() != domain.PhaseLobby {
		return ErrWrongPhase
	}
	if len(g.Players) < MinPlayersToStart {
		return ErrNotEnoughPlayers
	}
	for _, p := range g.Players {
		if !p.IsBot && !p.Ready {
			return ErrPlayersNotReady
		}
	}
	return nil
}

// StartGame leaves the lobby and begins the first round.
func (s *Service) StartGame(g *domain.Game) ([]Event, error) {
	if err := s.CanStart(g); err != nil {
		return nil, err
	}
	var events []Event
	if err := s.transition(g, domain.PhaseRoundStart, &events); err != nil {
		return nil, err
	}
	g.DealerSeat = 0
	g.RoundNumber = 0
	for _, p := range g.Players {
		p.Pilis = 0
	}
	roundEvents, err := s.beginRound(g)
	if err != nil {
		return nil, err
	}
	return append(events, roundEvents...), nil
}

// PlaceBet validates and records a bet, advancing the betting turn. The bet
// passes the universal validator first, then the mission's override.
func (s *Service) PlaceBet(g *domain.Game, playerID string, bet int) ([]Event, error) {
	if g.Phase() != domain.PhaseBetting {
		return nil, ErrWrongPhase
	}
	p, ok := g.PlayerByID(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if p.Seat != g.Round.TurnSeat {
		return nil, ErrNotYourTurn
	}
	if p.Bet != nil {
		return nil, ErrAlreadyBet
	}

	ctx := s.betContext(g, p)
	if err := domain.ValidateBet(bet, ctx); err != nil {
		return nil, err
	}
	if err := g.Mission.ValidateBet(bet, ctx); err != nil {
		return nil, err
	}

	b := bet
	p.Bet = &b
	events := []Event{{Kind: EventBetPlaced, Payload: BetPlacedPayload{PlayerID: playerID, Bet: bet}}}

	if s.allBetsPlaced(g) {
		postEvents, err := s.enterPostBet(g)
		if err != nil {
			return nil, err
		}
		return append(events, postEvents...), nil
	}

	g.Round.TurnSeat = g.NextSeat(g.Round.TurnSeat)
	events = append(events, s.turnEvent(g))
	return events, nil
}

// BetContext builds the universal bet-rule context for the given bettor,
// with bets ordered by betting order starting left of the dealer. Exposed
// so bots can pre-validate their choice.
func (s *Service) BetContext(g *domain.Game, playerID string) (domain.BetContext, error) {
	p, ok := g.PlayerByID(playerID)
	if !ok {
		return domain.BetContext{}, ErrUnknownPlayer
	}
	return s.betContext(g, p), nil
}

func (s *Service) betContext(g *domain.Game, bettor *domain.Player) domain.BetContext {
	n := len(g.Players)
	bets := make([]*int, 0, n)
	position := 0
	var previous *int
	seat := g.NextSeat(g.DealerSeat)
	for i := 0; i < n; i++ {
		p, _ := g.PlayerBySeat(seat)
		if p.ID == bettor.ID {
			position = i
		}
		bets = append(bets, p.Bet)
		if p.Bet != nil {
			previous = p.Bet
		}
		seat = g.NextSeat(seat)
	}
	return domain.BetContext{
		Position:       position,
		PlayerCount:    n,
		CardsPerPlayer: g.TrickTarget,
		Bets:           bets,
		PreviousBet:    previous,
	}
}

func (s *Service) allBetsPlaced(g *domain.Game) bool {
	for _, p := range g.Players {
		if p.Bet == nil {
			return false
		}
	}
	return true
}

func (s *Service) transition(g *domain.Game, to domain.Phase, events *[]Event) error {
	if err := g.Machine.Transition(to); err != nil {
		return err
	}
	*events = append(*events, Event{Kind: EventPhaseChanged, Payload: PhaseChangedPayload{Phase: to}})
	return nil
}

func (s *Service) turnEvent(g *domain.Game) Event {
	p, _ := g.PlayerBySeat(g.Round.TurnSeat)
	id := ""
	if p != nil {
		id = p.ID
	}
	return Event{Kind: EventTurnChanged, Payload: TurnChangedPayload{Seat: g.Round.TurnSeat, PlayerID: id}}
}
