package domain

import (
	"errors"
	"testing"
)

func TestResolveTrickHighestWins(t *testing.T) {
	plays := []PlayedCard{
		{PlayerID: "a", EffectiveValue: 12},
		{PlayerID: "b", EffectiveValue: 40},
		{PlayerID: "c", EffectiveValue: 7},
	}
	win, err := ResolveTrick(plays)
	if err != nil {
		t.Fatalf("ResolveTrick: %v", err)
	}
	if win.PlayerID != "b" {
		t.Fatalf("winner = %s, want b", win.PlayerID)
	}
}

func TestResolveTrickTieGoesToEarliestPlay(t *testing.T) {
	// A declared joker can duplicate a card value; the earlier play keeps
	// the trick.
	plays := []PlayedCard{
		{PlayerID: "a", EffectiveValue: 40},
		{PlayerID: "b", EffectiveValue: 56},
		{PlayerID: "c", EffectiveValue: 56},
	}
	win, err := ResolveTrick(plays)
	if err != nil {
		t.Fatalf("ResolveTrick: %v", err)
	}
	if win.PlayerID != "b" {
		t.Fatalf("winner = %s, want b (earliest of the tied plays)", win.PlayerID)
	}
}

func TestResolveTrickSinglePlay(t *testing.T) {
	win, err := ResolveTrick([]PlayedCard{{PlayerID: "solo", EffectiveValue: 1}})
	if err != nil || win.PlayerID != "solo" {
		t.Fatalf("ResolveTrick = (%s, %v)", win.PlayerID, err)
	}
}

func TestResolveTrickEmpty(t *testing.T) {
	if _, err := ResolveTrick(nil); !errors.Is(err, ErrEmptyTrick) {
		t.Fatalf("ResolveTrick(nil) = %v, want ErrEmptyTrick", err)
	}
}

func TestTrickHighestEffective(t *testing.T) {
	tr := &Trick{}
	if got := tr.HighestEffective(); got != -1 {
		t.Fatalf("empty trick HighestEffective = %d, want -1", got)
	}
	tr.Plays = append(tr.Plays, PlayedCard{PlayerID: "a", EffectiveValue: 0})
	if got := tr.HighestEffective(); got != 0 {
		t.Fatalf("HighestEffective = %d, want 0", got)
	}
	tr.Plays = append(tr.Plays, PlayedCard{PlayerID: "b", EffectiveValue: 31})
	if got := tr.HighestEffective(); got != 31 {
		t.Fatalf("HighestEffective = %d, want 31", got)
	}
	if !tr.PlayedBy("a") || tr.PlayedBy("z") {
		t.Fatal("PlayedBy bookkeeping wrong")
	}
}
