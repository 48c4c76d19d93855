package domain

import "sort"

// ScoreDelta is a single per-player adjustment contributed by a mission
// hook. Pilis adds penalty points, Reward subtracts them. Each delta is
// merged into round scoring exactly once.
type ScoreDelta struct {
	PlayerID string
	Pilis    int
	Reward   int
	Reason   string
}

// RoundScore is the scoring breakdown for one player in one round.
type RoundScore struct {
	PlayerID     string
	Bet          int
	TricksWon    int
	BasePilis    int
	MissionPilis int
	RewardPilis  int
	NetPilis     int
	TotalPilis   int
}

// CalculateRoundScoring computes each player's penalty for the round.
// basePilis = |bet - tricksWon|, mission additions and reward reductions
// come from the merged hook deltas, and the resulting running total is
// floored at zero so a reward can never push a player negative.
func CalculateRoundScoring(players []*Player, deltas []ScoreDelta) []RoundScore {
	scores := make([]RoundScore, 0, len(players))
	for _, p := range players {
		bet := 0
		if p.Bet != nil {
			bet = *p.Bet
		}
		base := bet - p.TricksWon
		if base < 0 {
			base = -base
		}

		mission, reward := 0, 0
		for _, d := range deltas {
			if d.PlayerID != p.ID {
				continue
			}
			mission += d.Pilis
			reward += d.Reward
		}

		net := base + mission - reward
		total := p.Pilis + net
		if total < 0 {
			total = 0
			net = -p.Pilis
		}

		scores = append(scores, RoundScore{
			PlayerID:     p.ID,
			Bet:          bet,
			TricksWon:    p.TricksWon,
			BasePilis:    base,
			MissionPilis: mission,
			RewardPilis:  reward,
			NetPilis:     net,
			TotalPilis:   total,
		})
	}
	return scores
}

// ApplyScoring commits the computed running totals back onto the players.
func ApplyScoring(players []*Player, scores []RoundScore) {
	byID := make(map[string]RoundScore, len(scores))
	for _, s := range scores {
		byID[s.PlayerID] = s
	}
	for _, p := range players {
		if s, ok := byID[p.ID]; ok {
			p.Pilis = s.TotalPilis
		}
	}
}

// IsGameOver reports whether any player reached the pili limit. Evaluated
// only at round boundaries.
func IsGameOver(players []*Player, limit int) bool {
	for _, p := range players {
		if p.Pilis >= limit {
			return true
		}
	}
	return false
}

// Standing is one player's final rank. Rank 1 has the fewest pilis.
type Standing struct {
	PlayerID string
	Name     string
	Pilis    int
	Rank     int
}

// FinalStandings ranks players ascending by pilis, stable on ties by
// original player order.
func FinalStandings(players []*Player) []Standing {
	standings := make([]Standing, 0, len(players))
	for _, p := range players {
		standings = append(standings, Standing{PlayerID: p.ID, Name: p.Name, Pilis: p.Pilis})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Pilis < standings[j].Pilis
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// EliminatedPlayerID returns the first player in list order at or above the
// limit. When multiple players cross the limit in the same round this
// returns only one; callers must not assume uniqueness.
func EliminatedPlayerID(players []*Player, limit int) (string, bool) {
	for _, p := range players {
		if p.Pilis >= limit {
			return p.ID, true
		}
	}
	return "", false
}
