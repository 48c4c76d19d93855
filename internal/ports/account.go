package ports

import "context"

// AccountPort defines the interface for updating account profiles.
type AccountPort interface {
	// UpdateProfile applies username and display name to the given account.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
