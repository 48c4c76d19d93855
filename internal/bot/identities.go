package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"

	"pili/internal/domain"
)

// Identity is one reusable bot profile. Profiles are loaded from a JSON
// file at startup and provisioned as real Nakama accounts so bots show up
// in friend lists and leaderboards like any other user.
type Identity struct {
	DeviceID    string            `json:"device_id"`
	UserID      string            `json:"user_id"`
	Username    string            `json:"username"`
	DisplayName string            `json:"display_name"`
	Difficulty  domain.Difficulty `json:"difficulty"`
	AvatarIndex int               `json:"avatar_index"`
}

var (
	identities     []Identity
	identityByUser map[string]Identity
	loadOnce       sync.Once
	provisionOnce  sync.Once
	loadErr        error
)

// fallbackNames seeds identities when no profile file is configured.
var fallbackNames = []string{
	"Marin", "Sorin", "Ilinca", "Tudor", "Anca", "Vlad", "Irina", "Mihnea",
}

// LoadIdentities reads the bot profile pool from path. Safe to call more
// than once; only the first call does work.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("read bot identities: %w", err)
			return
		}
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("parse bot identities: %w", err)
			return
		}
		identityByUser = make(map[string]Identity, len(identities))
		for _, id := range identities {
			if id.UserID != "" {
				identityByUser[id.UserID] = id
			}
		}
	})
	return loadErr
}

// ProvisionBots creates or refreshes the Nakama accounts behind the loaded
// profiles and tags them with is_bot metadata so hooks can tell them apart
// from humans.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) error {
	provisionOnce.Do(func() {
		if identityByUser == nil {
			identityByUser = make(map[string]Identity, len(identities))
		}
		for i := range identities {
			id := &identities[i]
			if id.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, id.DeviceID, id.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: authenticate %s: %v", id.Username, err)
				continue
			}
			id.UserID = userID
			id.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   string(id.Difficulty),
				"avatar_index": id.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, id.Username, metadata, id.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: update account %s: %v", userID, err)
			}

			identityByUser[id.UserID] = *id
			logger.Info("ProvisionBots: %s (%s) ready, difficulty %s", id.DisplayName, userID, id.Difficulty)
		}
	})
	return nil
}

// GetIdentity returns the profile for a provisioned bot user ID.
func GetIdentity(userID string) (Identity, bool) {
	id, ok := identityByUser[userID]
	return id, ok
}

// IdentityForSeat returns a profile for the nth bot seated in a match,
// cycling through the pool. Without a loaded pool it synthesizes a local
// profile so matches still fill.
func IdentityForSeat(index int, fallback domain.Difficulty) Identity {
	if len(identities) == 0 {
		name := fallbackNames[index%len(fallbackNames)]
		return Identity{
			UserID:      fmt.Sprintf("bot-%d", index+1),
			Username:    name,
			DisplayName: name,
			Difficulty:  fallback,
		}
	}
	id := identities[index%len(identities)]
	if id.Difficulty == "" {
		id.Difficulty = fallback
	}
	return id
}

// IsBot reports whether the user ID belongs to the provisioned pool.
// Locally synthesized seat IDs are recognized by their prefix.
func IsBot(userID string) bool {
	if _, ok := GetIdentity(userID); ok {
		return true
	}
	return len(userID) > 4 && userID[:4] == "bot-"
}
