package domain

import (
	"errors"
	"fmt"
)

// Phase represents the lifecycle stage of a pili round.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join and ready up.
	PhaseLobby Phase = "lobby"
	// PhaseRoundStart resets round-scoped state and draws the next mission.
	PhaseRoundStart Phase = "round_start"
	// PhaseMissionReveal announces the drawn mission to all seats.
	PhaseMissionReveal Phase = "mission_reveal"
	// PhaseDealing distributes the round's cards.
	PhaseDealing Phase = "dealing"
	// PhasePreBetMission runs an optional mission step before betting.
	PhasePreBetMission Phase = "pre_bet_mission"
	// PhaseBetting collects sealed bets in turn order.
	PhaseBetting Phase = "betting"
	// PhasePostBetMission runs an optional mission step after betting.
	PhasePostBetMission Phase = "post_bet_mission"
	// PhaseTrickPlay collects card plays for the current trick.
	PhaseTrickPlay Phase = "trick_play"
	// PhaseTrickResolution determines the trick winner and applies effects.
	PhaseTrickResolution Phase = "trick_resolution"
	// PhaseRoundScoring computes and applies the round's penalty totals.
	PhaseRoundScoring Phase = "round_scoring"
	// PhaseRoundEnd is the grace window between rounds.
	PhaseRoundEnd Phase = "round_end"
	// PhaseGameOver is reached when a player hits the pili limit.
	PhaseGameOver Phase = "game_over"
)

// ErrIllegalTransition indicates a phase transition outside the adjacency
// table. It is a programming-invariant violation, never caused by player
// input.
var ErrIllegalTransition = errors.New("illegal phase transition")

var phaseEdges = map[Phase][]Phase{
	PhaseLobby:           {PhaseRoundStart},
	PhaseRoundStart:      {PhaseMissionReveal},
	PhaseMissionReveal:   {PhaseDealing},
	PhaseDealing:         {PhasePreBetMission, PhaseBetting},
	PhasePreBetMission:   {PhaseBetting},
	PhaseBetting:         {PhasePostBetMission, PhaseTrickPlay},
	PhasePostBetMission:  {PhaseTrickPlay},
	PhaseTrickPlay:       {PhaseTrickResolution},
	PhaseTrickResolution: {PhaseTrickPlay, PhaseRoundScoring},
	PhaseRoundScoring:    {PhaseRoundEnd},
	PhaseRoundEnd:        {PhaseRoundStart, PhaseGameOver},
	PhaseGameOver:        {PhaseLobby},
}

// StateMachine tracks the current phase and validates transitions against
// the fixed adjacency table. It carries no other state; the engine decides
// when transitions happen.
type StateMachine struct {
	current Phase
}

// NewStateMachine returns a machine positioned in the lobby.
func NewStateMachine() *StateMachine {
	return &StateMachine{current: PhaseLobby}
}

// Current returns the active phase.
func (m *StateMachine) Current() Phase {
	return m.current
}

// Transition moves to the target phase, failing if the edge is not in the
// adjacency table.
func (m *StateMachine) Transition(to Phase) error {
	for _, allowed := range phaseEdges[m.current] {
		if allowed == to {
			m.current = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.current, to)
}

// CanTransition reports whether the edge to the target phase exists.
func (m *StateMachine) CanTransition(to Phase) bool {
	for _, allowed := range phaseEdges[m.current] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Reset forces the machine back to the lobby.
func (m *StateMachine) Reset() {
	m.current = PhaseLobby
}
