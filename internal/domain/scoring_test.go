package domain

import "testing"

func player(id string, pilis int, bet *int, tricksWon int) *Player {
	return &Player{ID: id, Name: id, Pilis: pilis, Bet: bet, TricksWon: tricksWon}
}

func scoreFor(t *testing.T, scores []RoundScore, id string) RoundScore {
	t.Helper()
	for _, s := range scores {
		if s.PlayerID == id {
			return s
		}
	}
	t.Fatalf("no score for %s", id)
	return RoundScore{}
}

func TestCalculateRoundScoringBase(t *testing.T) {
	players := []*Player{
		player("exact", 0, intp(2), 2),
		player("over", 0, intp(1), 3),
		player("under", 0, intp(3), 1),
		player("zero", 0, intp(0), 0),
	}
	scores := CalculateRoundScoring(players, nil)

	for id, want := range map[string]int{"exact": 0, "over": 2, "under": 2, "zero": 0} {
		if got := scoreFor(t, scores, id).BasePilis; got != want {
			t.Fatalf("%s BasePilis = %d, want %d", id, got, want)
		}
	}
}

func TestCalculateRoundScoringMissionDelta(t *testing.T) {
	players := []*Player{player("p", 0, intp(3), 1)}
	deltas := []ScoreDelta{{PlayerID: "p", Pilis: 1, Reason: "won first trick"}}
	s := scoreFor(t, CalculateRoundScoring(players, deltas), "p")
	if s.BasePilis != 2 || s.MissionPilis != 1 || s.NetPilis != 3 || s.TotalPilis != 3 {
		t.Fatalf("got base=%d mission=%d net=%d total=%d, want 2/1/3/3", s.BasePilis, s.MissionPilis, s.NetPilis, s.TotalPilis)
	}
}

func TestCalculateRoundScoringRewardShrinksTotal(t *testing.T) {
	players := []*Player{player("p", 5, intp(2), 2)}
	deltas := []ScoreDelta{{PlayerID: "p", Reward: 2, Reason: "exact bet"}}
	s := scoreFor(t, CalculateRoundScoring(players, deltas), "p")
	if s.TotalPilis != 3 || s.NetPilis != -2 {
		t.Fatalf("got total=%d net=%d, want total=3 net=-2", s.TotalPilis, s.NetPilis)
	}
}

func TestCalculateRoundScoringFloorsAtZero(t *testing.T) {
	players := []*Player{player("p", 1, intp(3), 3)}
	deltas := []ScoreDelta{{PlayerID: "p", Reward: 3, Reason: "exact bet"}}
	s := scoreFor(t, CalculateRoundScoring(players, deltas), "p")
	if s.TotalPilis != 0 {
		t.Fatalf("total = %d, want 0 (floored)", s.TotalPilis)
	}
	if s.NetPilis != -1 {
		t.Fatalf("net = %d, want -1 (clamped to the available pilis)", s.NetPilis)
	}
}

func TestApplyScoringCommitsTotals(t *testing.T) {
	players := []*Player{
		player("a", 2, intp(1), 0),
		player("b", 0, intp(0), 0),
	}
	scores := CalculateRoundScoring(players, nil)
	ApplyScoring(players, scores)
	if players[0].Pilis != 3 || players[1].Pilis != 0 {
		t.Fatalf("pilis after apply = %d/%d, want 3/0", players[0].Pilis, players[1].Pilis)
	}
}

func TestIsGameOverBoundary(t *testing.T) {
	players := []*Player{player("a", 5, nil, 0), player("b", 0, nil, 0)}
	if IsGameOver(players, 6) {
		t.Fatal("5 pilis with limit 6 should not end the game")
	}
	players[0].Pilis = 6
	if !IsGameOver(players, 6) {
		t.Fatal("reaching the limit ends the game")
	}
}

func TestFinalStandings(t *testing.T) {
	players := []*Player{
		player("first-seated", 3, nil, 0),
		player("runner", 1, nil, 0),
		player("tied", 3, nil, 0),
		player("winner", 0, nil, 0),
	}
	standings := FinalStandings(players)

	wantOrder := []string{"winner", "runner", "first-seated", "tied"}
	for i, want := range wantOrder {
		if standings[i].PlayerID != want {
			t.Fatalf("standings[%d] = %s, want %s", i, standings[i].PlayerID, want)
		}
		if standings[i].Rank != i+1 {
			t.Fatalf("standings[%d].Rank = %d, want %d", i, standings[i].Rank, i+1)
		}
	}
}

func TestEliminatedPlayerID(t *testing.T) {
	players := []*Player{
		player("safe", 2, nil, 0),
		player("out-first", 6, nil, 0),
		player("out-second", 7, nil, 0),
	}
	id, ok := EliminatedPlayerID(players, 6)
	if !ok || id != "out-first" {
		t.Fatalf("EliminatedPlayerID = (%s, %t), want (out-first, true)", id, ok)
	}
	if _, ok := EliminatedPlayerID(players, 10); ok {
		t.Fatal("nobody at the limit should report elimination")
	}
}
