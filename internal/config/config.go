package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"pili/internal/domain"
)

type GameConfig struct {
	MaxPlayers     int  `json:"max_players"`
	MaxCardValue   int  `json:"max_card_value"`
	PiliLimit      int  `json:"pili_limit"`
	ExpertMissions bool `json:"expert_missions"`

	DefaultBotDifficulty string `json:"default_bot_difficulty"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before
	// adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`

	TurnDurationSeconds  int   `json:"turn_duration_seconds"`
	RoundGraceSeconds    int   `json:"round_grace_seconds"`
	WinRewardCoins       int64 `json:"win_reward_coins"`
	EliminationFineCoins int64 `json:"elimination_fine_coins"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// Settings translates the loaded configuration into rule settings,
// falling back to the defaults for anything unset.
func Settings() domain.Settings {
	s := domain.DefaultSettings()
	if cfg == nil {
		return s
	}
	if cfg.MaxPlayers > 0 {
		s.MaxPlayers = cfg.MaxPlayers
	}
	if cfg.MaxCardValue > 0 {
		s.MaxCardValue = cfg.MaxCardValue
	}
	if cfg.PiliLimit > 0 {
		s.PiliLimit = cfg.PiliLimit
	}
	s.ExpertMissions = cfg.ExpertMissions
	if cfg.DefaultBotDifficulty != "" {
		s.DefaultBotDifficulty = domain.Difficulty(cfg.DefaultBotDifficulty)
	}
	return s
}

// GetWinReward returns the coin reward credited to the winner at game over.
func GetWinReward() int64 {
	if cfg == nil || cfg.WinRewardCoins <= 0 {
		return 100 // Safe default
	}
	return cfg.WinRewardCoins
}

// GetEliminationFine returns the coins debited from an eliminated player,
// never more than their balance.
func GetEliminationFine(balance int64) int64 {
	fine := int64(25)
	if cfg != nil && cfg.EliminationFineCoins > 0 {
		fine = cfg.EliminationFineCoins
	}
	if fine > balance {
		fine = balance
	}
	return fine
}
