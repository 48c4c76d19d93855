package domain

import (
	"errors"
	"testing"
)

func TestStateMachineFullRoundWalk(t *testing.T) {
	m := NewStateMachine()
	walk := []Phase{
		PhaseRoundStart, PhaseMissionReveal, PhaseDealing, PhaseBetting,
		PhaseTrickPlay, PhaseTrickResolution, PhaseTrickPlay, PhaseTrickResolution,
		PhaseRoundScoring, PhaseRoundEnd, PhaseRoundStart,
	}
	for _, to := range walk {
		if err := m.Transition(to); err != nil {
			t.Fatalf("Transition(%s) from %s: %v", to, m.Current(), err)
		}
	}
	if m.Current() != PhaseRoundStart {
		t.Fatalf("expected round_start, got %s", m.Current())
	}
}

func TestStateMachineMissionBranches(t *testing.T) {
	m := NewStateMachine()
	branches := []Phase{
		PhaseRoundStart, PhaseMissionReveal, PhaseDealing,
		PhasePreBetMission, PhaseBetting, PhasePostBetMission, PhaseTrickPlay,
		PhaseTrickResolution, PhaseRoundScoring, PhaseRoundEnd, PhaseGameOver, PhaseLobby,
	}
	for _, to := range branches {
		if err := m.Transition(to); err != nil {
			t.Fatalf("Transition(%s) from %s: %v", to, m.Current(), err)
		}
	}
}

func TestStateMachineRejectsIllegalEdges(t *testing.T) {
	tests := []struct {
		name string
		from Phase
		to   Phase
	}{
		{"LobbyToTrickPlay", PhaseLobby, PhaseTrickPlay},
		{"ResolutionToBetting", PhaseTrickResolution, PhaseBetting},
		{"RoundEndToLobby", PhaseRoundEnd, PhaseLobby},
		{"BettingToScoring", PhaseBetting, PhaseRoundScoring},
		{"DealingToTrickPlay", PhaseDealing, PhaseTrickPlay},
		{"SelfLoop", PhaseBetting, PhaseBetting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &StateMachine{current: tt.from}
			err := m.Transition(tt.to)
			if !errors.Is(err, ErrIllegalTransition) {
				t.Fatalf("Transition(%s -> %s) = %v, want ErrIllegalTransition", tt.from, tt.to, err)
			}
			if m.Current() != tt.from {
				t.Fatalf("failed transition moved the machine to %s", m.Current())
			}
		})
	}
}

func TestStateMachineCanTransition(t *testing.T) {
	m := NewStateMachine()
	if !m.CanTransition(PhaseRoundStart) {
		t.Fatal("lobby should allow round_start")
	}
	if m.CanTransition(PhaseGameOver) {
		t.Fatal("lobby should not allow game_over")
	}
	if m.Current() != PhaseLobby {
		t.Fatal("CanTransition must not move the machine")
	}
}

func TestStateMachineReset(t *testing.T) {
	m := &StateMachine{current: PhaseGameOver}
	m.Reset()
	if m.Current() != PhaseLobby {
		t.Fatalf("Reset left machine in %s", m.Current())
	}
}
