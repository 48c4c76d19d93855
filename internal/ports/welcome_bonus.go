package ports

import "context"

// WelcomeBonusPort grants the new-player coin bonus at most once per user.
type WelcomeBonusPort interface {
	// GrantWelcomeBonusOnce attempts the one-time grant. Returns
	// granted=false when the user already received it.
	GrantWelcomeBonusOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error)
}
