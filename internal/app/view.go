package app

import (
	"pili/internal/domain"
)

// HiddenCardValue marks a card whose value the viewer may not see.
const HiddenCardValue = -1

// ClientState is the player-specific snapshot used for reconnection and
// resync. Its shape is the serialization contract and must stay
// structurally stable across a reconnect.
type ClientState struct {
	Phase       domain.Phase `json:"phase"`
	RoundNumber int          `json:"round_number"`
	DealerSeat  int          `json:"dealer_seat"`
	TurnSeat    int          `json:"turn_seat"`
	PiliLimit   int          `json:"pili_limit"`
	TrickTarget int          `json:"trick_target"`
	Mission     *MissionView `json:"mission,omitempty"`
	Trick       *TrickView   `json:"trick,omitempty"`
	Players     []PlayerView `json:"players"`
}

// MissionView is the public description of the active mission.
type MissionView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CardsPerPlayer int    `json:"cards_per_player"`
	Simultaneous   bool   `json:"simultaneous"`
}

// TrickView is the public state of the trick in progress.
type TrickView struct {
	Number int                 `json:"number"`
	Plays  []domain.PlayedCard `json:"plays"`
}

// PlayerView is one seat as seen by the requesting player. Hand is nil for
// hidden opponents; the requesting player's own hidden hand is value-masked
// so card backs keep stable ids.
type PlayerView struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Seat      int           `json:"seat"`
	IsBot     bool          `json:"is_bot"`
	Ready     bool          `json:"ready"`
	Connected bool          `json:"connected"`
	Bet       *int          `json:"bet,omitempty"`
	TricksWon int           `json:"tricks_won"`
	Pilis     int           `json:"pilis"`
	HandCount int           `json:"hand_count"`
	Hand      []domain.Card `json:"hand,omitempty"`
}

// ClientState projects the game for one player, applying the active
// mission's visibility rule. Calling it twice with no intervening mutation
// yields structurally identical results.
func (s *Service) ClientState(g *domain.Game, forPlayerID string) ClientState {
	state := ClientState{
		Phase:       g.Phase(),
		RoundNumber: g.RoundNumber,
		DealerSeat:  g.DealerSeat,
		PiliLimit:   g.Settings.PiliLimit,
		TrickTarget: g.TrickTarget,
	}
	if g.Round != nil {
		state.TurnSeat = g.Round.TurnSeat
	}
	if g.Mission != nil {
		state.Mission = &MissionView{
			ID:             g.Mission.ID,
			Name:           g.Mission.Name,
			Description:    g.Mission.Description,
			CardsPerPlayer: g.Mission.CardsPerPlayer,
			Simultaneous:   g.Mission.IsSimultaneous(),
		}
	}
	if g.CurrentTrick != nil {
		state.Trick = &TrickView{
			Number: g.CurrentTrick.Number,
			Plays:  append([]domain.PlayedCard{}, g.CurrentTrick.Plays...),
		}
	}

	ownVisible, othersVisible := s.visibility(g)
	for _, p := range g.Players {
		view := PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Seat:      p.Seat,
			IsBot:     p.IsBot,
			Ready:     p.Ready,
			Connected: p.Connected,
			Bet:       p.Bet,
			TricksWon: p.TricksWon,
			Pilis:     p.Pilis,
			HandCount: len(p.Hand),
		}
		switch {
		case p.ID == forPlayerID && ownVisible:
			view.Hand = append([]domain.Card{}, p.Hand...)
		case p.ID == forPlayerID:
			view.Hand = maskCards(p.Hand)
		case othersVisible:
			view.Hand = append([]domain.Card{}, p.Hand...)
		}
		state.Players = append(state.Players, view)
	}
	return state
}

// visibility resolves the mission's base rule against round progress: a
// peek mission hides the owner's hand once the peek window closed.
func (s *Service) visibility(g *domain.Game) (ownVisible, othersVisible bool) {
	if g.Mission == nil {
		return true, false
	}
	vis := g.Mission.BaseVisibility()
	ownVisible = vis.OwnVisible
	othersVisible = vis.OthersVisible
	if g.Round != nil {
		if g.Mission.Peek() > 0 && g.Round.PeekEnded {
			ownVisible = false
		}
		if g.Round.HandsRevealed {
			othersVisible = true
		}
	}
	return ownVisible, othersVisible
}

func maskCards(hand []domain.Card) []domain.Card {
	masked := make([]domain.Card, len(hand))
	for i, c := range hand {
		masked[i] = domain.Card{ID: c.ID, Value: HiddenCardValue}
	}
	return masked
}
