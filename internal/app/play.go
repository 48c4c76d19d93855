package app

import (
	"pili/internal/domain"
)

// PlayCard validates and commits one card to the current trick. A play is
// rejected on phase mismatch, wrong turn (turn-based missions), duplicate
// play, missing card, mission play-constraint violation, or an out-of-range
// joker declaration.
func (s *Service) PlayCard(g *domain.Game, playerID string, cardID int, declaredJokerValue *int) ([]Event, error) {
	if g.Phase() != domain.PhaseTrickPlay {
		return nil, ErrWrongPhase
	}
	p, ok := g.PlayerByID(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if !g.Mission.IsSimultaneous() && p.Seat != g.Round.TurnSeat {
		return nil, ErrNotYourTurn
	}
	if g.CurrentTrick.PlayedBy(playerID) {
		return nil, ErrAlreadyPlayed
	}
	card, ok := p.CardByID(cardID)
	if !ok {
		return nil, ErrCardNotInHand
	}
	if !cardAllowed(g.Mission.PlayableCards(p.Hand), cardID) {
		return nil, ErrCardNotPlayable
	}

	nominal := card.Value
	declared := 0
	if card.IsJoker {
		if declaredJokerValue == nil {
			return nil, ErrJokerValueMissing
		}
		declared = *declaredJokerValue
		if declared < 0 || declared > g.Settings.MaxCardValue+1 {
			return nil, ErrBadJokerValue
		}
		nominal = declared
	}

	p.RemoveCard(cardID)
	play := domain.PlayedCard{
		PlayerID:       playerID,
		Card:           card,
		DeclaredValue:  declared,
		EffectiveValue: g.Mission.EffectiveValue(nominal, g.Settings.MaxCardValue),
	}
	g.CurrentTrick.Plays = append(g.CurrentTrick.Plays, play)

	events := []Event{{Kind: EventCardPlayed, Payload: CardPlayedPayload{
		PlayerID:      playerID,
		Card:          card,
		DeclaredValue: declared,
		TrickNumber:   g.CurrentTrick.Number,
	}}}

	if len(g.CurrentTrick.Plays) == len(g.Players) {
		resolved, err := s.resolveTrick(g)
		if err != nil {
			return nil, err
		}
		return append(events, resolved...), nil
	}

	if !g.Mission.IsSimultaneous() {
		g.Round.TurnSeat = g.NextSeat(g.Round.TurnSeat)
		events = append(events, s.turnEvent(g))
	}
	return events, nil
}

func cardAllowed(playable []domain.Card, cardID int) bool {
	for _, c := range playable {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// resolveTrick freezes the completed trick, credits the winner, collects
// per-trick mission deltas and either waits for a required exchange, opens
// the next trick, or closes the round.
func (s *Service) resolveTrick(g *domain.Game) ([]Event, error) {
	var events []Event
	if err := s.transition(g, domain.PhaseTrickResolution, &events); err != nil {
		return nil, err
	}

	winning, err := domain.ResolveTrick(g.CurrentTrick.Plays)
	if err != nil {
		return nil, err
	}
	winner, _ := g.PlayerByID(winning.PlayerID)
	winner.TricksWon++

	trick := *g.CurrentTrick
	trick.WinnerID = winning.PlayerID
	g.TrickHistory = append(g.TrickHistory, trick)
	g.CurrentTrick = nil

	events = append(events, Event{Kind: EventTrickWon, Payload: TrickWonPayload{
		TrickNumber: trick.Number,
		WinnerID:    winning.PlayerID,
		Card:        winning.Card,
	}})

	deltas := g.Mission.OnTrickWon(winning.PlayerID, trick, trick.Number, g.TrickTarget)
	g.Round.TrickDeltas = append(g.Round.TrickDeltas, deltas...)

	if g.Mission.RequiresExchangeOnWin() && len(winner.Hand) > 0 {
		g.Round.ExchangeBy = winning.PlayerID
		events = append(events, Event{
			Kind:    EventExchangeRequired,
			Payload: ExchangeRequiredPayload{WinnerID: winning.PlayerID},
		})
		return events, nil
	}

	next, err := s.advanceAfterTrick(g)
	if err != nil {
		return nil, err
	}
	return append(events, next...), nil
}

func (s *Service) advanceAfterTrick(g *domain.Game) ([]Event, error) {
	if g.ResolvedTricks() < g.TrickTarget {
		last := g.TrickHistory[len(g.TrickHistory)-1]
		winner, _ := g.PlayerByID(last.WinnerID)
		return s.startTrick(g, winner.Seat)
	}
	return s.finishRound(g)
}

// SubmitPassCards records one player's outgoing cards for a pass mission.
// When every seat has submitted, the transfer executes synchronously.
func (s *Service) SubmitPassCards(g *domain.Game, playerID string, cardIDs []int) ([]Event, error) {
	if g.Phase() != domain.PhasePostBetMission || !g.Mission.PassesCards() {
		return nil, ErrNoPassPending
	}
	p, ok := g.PlayerByID(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if _, done := g.Round.PendingPasses[playerID]; done {
		return nil, ErrAlreadySubmitted
	}

	want := g.Mission.PassCount
	if g.Mission.IsPassAll() {
		want = len(p.Hand)
	}
	if len(cardIDs) != want {
		return nil, ErrWrongPassCount
	}
	seen := make(map[int]bool, len(cardIDs))
	for _, id := range cardIDs {
		if seen[id] || !p.HasCard(id) {
			return nil, ErrCardNotInHand
		}
		seen[id] = true
	}

	g.Round.PendingPasses[playerID] = cardIDs
	if len(g.Round.PendingPasses) < len(g.Players) {
		return nil, nil
	}

	// All seats submitted: remove everyone's outgoing cards first, then
	// hand them to the neighbor, so nothing is passed twice.
	outgoing := make(map[string][]domain.Card, len(g.Players))
	for _, pl := range g.Players {
		for _, id := range g.Round.PendingPasses[pl.ID] {
			c, _ := pl.RemoveCard(id)
			outgoing[pl.ID] = append(outgoing[pl.ID], c)
		}
	}
	for _, pl := range g.Players {
		target, _ := g.PlayerBySeat(g.NeighborSeat(pl.Seat, g.Mission.PassDirection))
		target.Hand = append(target.Hand, outgoing[pl.ID]...)
	}

	events := s.handEvents(g, EventHandUpdated)
	trickEvents, err := s.startTrick(g, g.NextSeat(g.DealerSeat))
	if err != nil {
		return nil, err
	}
	return append(events, trickEvents...), nil
}

// SubmitDesignation records one player's secretly chosen target. Play
// begins once every seat has designated.
func (s *Service) SubmitDesignation(g *domain.Game, playerID, targetID string) ([]Event, error) {
	if g.Phase() != domain.PhasePostBetMission || !g.Mission.RequiresDesignation() {
		return nil, ErrNoDesignation
	}
	if _, ok := g.PlayerByID(playerID); !ok {
		return nil, ErrUnknownPlayer
	}
	if _, done := g.Round.Designations[playerID]; done {
		return nil, ErrAlreadySubmitted
	}
	if _, ok := g.PlayerByID(targetID); !ok || targetID == playerID {
		return nil, ErrBadTarget
	}

	g.Round.Designations[playerID] = targetID
	if len(g.Round.Designations) < len(g.Players) {
		return nil, nil
	}
	return s.startTrick(g, g.NextSeat(g.DealerSeat))
}

// SubmitExchange completes the winner-swaps step: the winner gives the
// chosen card to the chosen opponent and receives that opponent's current
// weakest card back. The asymmetry is deliberate.
func (s *Service) SubmitExchange(g *domain.Game, playerID string, cardID int, targetID string) ([]Event, error) {
	if g.Phase() != domain.PhaseTrickResolution || g.Round.ExchangeBy != playerID {
		return nil, ErrNoExchange
	}
	winner, _ := g.PlayerByID(playerID)
	target, ok := g.PlayerByID(targetID)
	if !ok || targetID == playerID {
		return nil, ErrBadTarget
	}
	if !winner.HasCard(cardID) {
		return nil, ErrCardNotInHand
	}

	given, _ := winner.RemoveCard(cardID)
	if weakest, ok := weakestCard(target.Hand, g.Settings.MaxCardValue); ok {
		returned, _ := target.RemoveCard(weakest.ID)
		winner.Hand = append(winner.Hand, returned)
	}
	target.Hand = append(target.Hand, given)
	g.Round.ExchangeBy = ""

	events := []Event{
		{Kind: EventHandUpdated, Payload: HandUpdatedPayload{PlayerID: winner.ID, Hand: winner.Hand}, Recipients: []string{winner.ID}},
		{Kind: EventHandUpdated, Payload: HandUpdatedPayload{PlayerID: target.ID, Hand: target.Hand}, Recipients: []string{target.ID}},
	}
	next, err := s.advanceAfterTrick(g)
	if err != nil {
		return nil, err
	}
	return append(events, next...), nil
}

// weakestCard picks the lowest-valued card, treating the joker as the
// strongest so it is only surrendered as a last resort.
func weakestCard(hand []domain.Card, maxValue int) (domain.Card, bool) {
	if len(hand) == 0 {
		return domain.Card{}, false
	}
	best := hand[0]
	for _, c := range hand[1:] {
		if cardWeight(c, maxValue) < cardWeight(best, maxValue) {
			best = c
		}
	}
	return best, true
}

func cardWeight(c domain.Card, maxValue int) int {
	if c.IsJoker {
		return maxValue + 1
	}
	return c.Value
}

// PendingActorIDs returns the players the engine is currently waiting on.
// The transport layer uses this to drive bot turns and nudge humans.
func (s *Service) PendingActorIDs(g *domain.Game) []string {
	switch g.Phase() {
	case domain.PhaseBetting:
		if p, ok := g.PlayerBySeat(g.Round.TurnSeat); ok {
			return []string{p.ID}
		}
	case domain.PhaseTrickPlay:
		if g.Mission.IsSimultaneous() {
			var ids []string
			for _, p := range g.Players {
				if !g.CurrentTrick.PlayedBy(p.ID) {
					ids = append(ids, p.ID)
				}
			}
			return ids
		}
		if p, ok := g.PlayerBySeat(g.Round.TurnSeat); ok {
			return []string{p.ID}
		}
	case domain.PhasePostBetMission:
		var ids []string
		for _, p := range g.Players {
			switch {
			case g.Mission.PassesCards():
				if _, done := g.Round.PendingPasses[p.ID]; !done {
					ids = append(ids, p.ID)
				}
			case g.Mission.RequiresDesignation():
				if _, done := g.Round.Designations[p.ID]; !done {
					ids = append(ids, p.ID)
				}
			}
		}
		return ids
	case domain.PhaseTrickResolution:
		if g.Round.ExchangeBy != "" {
			return []string{g.Round.ExchangeBy}
		}
	}
	return nil
}
