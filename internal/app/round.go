package app

import (
	"pili/internal/domain"
)

// beginRound runs steps RoundStart through the entry into Betting (or the
// pre-bet mission phase): reset round state, draw and reveal the mission,
// deal, and branch on the mission's pre-bet gate.
func (s *Service) beginRound(g *domain.Game) ([]Event, error) {
	g.RoundNumber++
	g.Round = domain.NewRoundState()
	g.TrickHistory = nil
	g.CurrentTrick = nil
	for _, p := range g.Players {
		p.Hand = nil
		p.Bet = nil
		p.TricksWon = 0
	}

	g.Mission = g.Missions.Draw()
	g.TrickTarget = g.Mission.CardsPerPlayer

	var events []Event
	if err := s.transition(g, domain.PhaseMissionReveal, &events); err != nil {
		return nil, err
	}
	events = append(events, Event{Kind: EventMissionRevealed, Payload: MissionRevealedPayload{
		MissionID:      g.Mission.ID,
		Name:           g.Mission.Name,
		Description:    g.Mission.Description,
		CardsPerPlayer: g.Mission.CardsPerPlayer,
		RoundNumber:    g.RoundNumber,
	}})

	if err := s.transition(g, domain.PhaseDealing, &events); err != nil {
		return nil, err
	}
	hands, err := g.Deck.Deal(len(g.Players), g.Mission.CardsPerPlayer)
	if err != nil {
		return nil, err
	}
	for i, p := range g.Players {
		p.Hand = hands[i]
	}
	events = append(events, s.handEvents(g, EventHandDealt)...)

	if g.Mission.HasPreBetPhase() {
		if err := s.transition(g, domain.PhasePreBetMission, &events); err != nil {
			return nil, err
		}
		if peek := g.Mission.Peek(); peek > 0 {
			// Betting waits for the peek window to elapse; the transport
			// collaborator schedules EndPeek.
			events = append(events, Event{Kind: EventPeekStarted, Payload: PeekStartedPayload{Duration: peek}})
			return events, nil
		}
		// Blind-hand visibility swap needs no waiting.
	}

	bettingEvents, err := s.enterBetting(g)
	if err != nil {
		return nil, err
	}
	return append(events, bettingEvents...), nil
}

// EndPeek closes a peek window and opens betting. A stale timer firing
// after the phase moved on is rejected as a player-class error, which the
// caller treats as a no-op.
func (s *Service) EndPeek(g *domain.Game) ([]Event, error) {
	if g.Phase() != domain.PhasePreBetMission || g.Mission.Peek() == 0 || g.Round.PeekEnded {
		return nil, ErrWrongPhase
	}
	g.Round.PeekEnded = true
	events := []Event{{Kind: EventPeekEnded, Payload: struct{}{}}}
	bettingEvents, err := s.enterBetting(g)
	if err != nil {
		return nil, err
	}
	return append(events, bettingEvents...), nil
}

func (s *Service) enterBetting(g *domain.Game) ([]Event, error) {
	var events []Event
	if err := s.transition(g, domain.PhaseBetting, &events); err != nil {
		return nil, err
	}
	g.Round.TurnSeat = g.NextSeat(g.DealerSeat)
	events = append(events, s.turnEvent(g))
	return events, nil
}

// enterPostBet branches after the last bet: run the mission's post-bet step
// or go straight to trick play.
func (s *Service) enterPostBet(g *domain.Game) ([]Event, error) {
	if !g.Mission.HasPostBetPhase() {
		return s.startTrick(g, g.NextSeat(g.DealerSeat))
	}

	var events []Event
	if err := s.transition(g, domain.PhasePostBetMission, &events); err != nil {
		return nil, err
	}

	switch {
	case g.Mission.PassesCards():
		events = append(events, Event{Kind: EventPassRequired, Payload: PassRequiredPayload{
			Count:     g.Mission.PassCount,
			ToLeft:    g.Mission.PassDirection == domain.PassLeft,
			WholeHand: g.Mission.IsPassAll(),
		}})
		return events, nil

	case g.Mission.RequiresDesignation():
		events = append(events, Event{Kind: EventDesignationRequired, Payload: struct{}{}})
		return events, nil

	case g.Mission.DrawsExtraCard():
		for _, p := range g.Players {
			if c, ok := g.Deck.DrawOne(); ok {
				p.Hand = append(p.Hand, c)
			}
		}
		g.TrickTarget++
		events = append(events, s.handEvents(g, EventHandUpdated)...)

	case g.Mission.BaseVisibility().OthersVisible:
		g.Round.HandsRevealed = true
		events = append(events, Event{Kind: EventHandsRevealed, Payload: struct{}{}})
		events = append(events, s.revealEvents(g)...)
	}

	trickEvents, err := s.startTrick(g, g.NextSeat(g.DealerSeat))
	if err != nil {
		return nil, err
	}
	return append(events, trickEvents...), nil
}

// startTrick opens the next trick with the given lead seat.
func (s *Service) startTrick(g *domain.Game, leadSeat int) ([]Event, error) {
	var events []Event
	if err := s.transition(g, domain.PhaseTrickPlay, &events); err != nil {
		return nil, err
	}
	g.CurrentTrick = &domain.Trick{Number: g.ResolvedTricks() + 1}
	if !g.Mission.IsSimultaneous() {
		g.Round.TurnSeat = leadSeat
		events = append(events, s.turnEvent(g))
	}
	return events, nil
}

// finishRound merges per-trick and end-of-round mission deltas exactly
// once, applies scoring, and decides between the next round and game over.
func (s *Service) finishRound(g *domain.Game) ([]Event, error) {
	var events []Event
	if err := s.transition(g, domain.PhaseRoundScoring, &events); err != nil {
		return nil, err
	}

	deltas := append([]domain.ScoreDelta{}, g.Round.TrickDeltas...)
	deltas = append(deltas, g.Mission.OnRoundEnd(g.Players, g.Round)...)

	scores := domain.CalculateRoundScoring(g.Players, deltas)
	domain.ApplyScoring(g.Players, scores)
	events = append(events, Event{Kind: EventRoundScored, Payload: RoundScoredPayload{
		RoundNumber: g.RoundNumber,
		Scores:      scores,
	}})

	if err := s.transition(g, domain.PhaseRoundEnd, &events); err != nil {
		return nil, err
	}

	if domain.IsGameOver(g.Players, g.Settings.PiliLimit) {
		if err := s.transition(g, domain.PhaseGameOver, &events); err != nil {
			return nil, err
		}
		eliminated, _ := domain.EliminatedPlayerID(g.Players, g.Settings.PiliLimit)
		events = append(events, Event{Kind: EventGameOver, Payload: GameOverPayload{
			Standings:    domain.FinalStandings(g.Players),
			EliminatedID: eliminated,
		}})
		return events, nil
	}

	// The transport collaborator schedules BeginNextRound after the
	// inter-round grace period.
	events = append(events, Event{Kind: EventRoundEnded, Payload: RoundEndedPayload{RoundNumber: g.RoundNumber}})
	return events, nil
}

// BeginNextRound advances the dealer and starts the next round after the
// grace delay. Stale timers are rejected with a guarded phase error.
func (s *Service) BeginNextRound(g *domain.Game) ([]Event, error) {
	if g.Phase() != domain.PhaseRoundEnd {
		return nil, ErrWrongPhase
	}
	var events []Event
	if err := s.transition(g, domain.PhaseRoundStart, &events); err != nil {
		return nil, err
	}
	g.DealerSeat = g.NextSeat(g.DealerSeat)
	roundEvents, err := s.beginRound(g)
	if err != nil {
		return nil, err
	}
	return append(events, roundEvents...), nil
}

// ReturnToLobby resets a finished game so the room can play again.
func (s *Service) ReturnToLobby(g *domain.Game) ([]Event, error) {
	if g.Phase() != domain.PhaseGameOver {
		return nil, ErrWrongPhase
	}
	var events []Event
	if err := s.transition(g, domain.PhaseLobby, &events); err != nil {
		return nil, err
	}
	g.Mission = nil
	g.Round = nil
	g.CurrentTrick = nil
	g.TrickHistory = nil
	for _, p := range g.Players {
		p.Hand = nil
		p.Bet = nil
		p.TricksWon = 0
		if !p.IsBot {
			p.Ready = false
		}
	}
	return events, nil
}

// handEvents emits each player's hand to everyone entitled to see it. When
// the mission hides a hand from its owner, the owner still receives a
// value-masked copy so clients can render card backs with stable ids.
func (s *Service) handEvents(g *domain.Game, kind EventKind) []Event {
	vis := g.Mission.BaseVisibility()
	events := make([]Event, 0, len(g.Players))
	for _, p := range g.Players {
		ownHand := p.Hand
		if !vis.OwnVisible {
			ownHand = maskCards(p.Hand)
		}
		events = append(events, Event{
			Kind:       kind,
			Payload:    handPayload(kind, p.ID, ownHand),
			Recipients: []string{p.ID},
		})
		if vis.OthersVisible {
			others := make([]string, 0, len(g.Players)-1)
			for _, o := range g.Players {
				if o.ID != p.ID {
					others = append(others, o.ID)
				}
			}
			events = append(events, Event{
				Kind:       kind,
				Payload:    handPayload(kind, p.ID, p.Hand),
				Recipients: others,
			})
		}
	}
	return events
}

func handPayload(kind EventKind, playerID string, hand []domain.Card) any {
	if kind == EventHandUpdated {
		return HandUpdatedPayload{PlayerID: playerID, Hand: hand}
	}
	return HandDealtPayload{PlayerID: playerID, Hand: hand}
}

// revealEvents shows every hand face-up to all other seats.
func (s *Service) revealEvents(g *domain.Game) []Event {
	events := make([]Event, 0, len(g.Players))
	for _, p := range g.Players {
		others := make([]string, 0, len(g.Players)-1)
		for _, o := range g.Players {
			if o.ID != p.ID {
				others = append(others, o.ID)
			}
		}
		events = append(events, Event{
			Kind:       EventHandUpdated,
			Payload:    HandUpdatedPayload{PlayerID: p.ID, Hand: p.Hand},
			Recipients: others,
		})
	}
	return events
}
