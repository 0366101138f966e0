// Package prefs persists small local settings between runs, such as
// the player's last used display name.
package prefs

import "context"

// Store holds local preferences. Implementations must be safe for
// concurrent use.
type Store interface {
	Close(ctx context.Context) error
	// GetName returns the saved display name, or "" when none is set.
	GetName(ctx context.Context) (string, error)
	// SetName saves the display name.
	SetName(ctx context.Context, name string) error
}
