// Package gateway abstracts the remote session store. The store is a
// dumb replicated mailbox: multiple clients write disjoint sub-paths of
// the same session record with no coordination, last writer wins, and
// readers always see full snapshots, never deltas.
package gateway

import (
	"context"

	"github.com/crossfire-games/crossfire/pkg/game/types"
)

// Gateway is the narrow session store contract consumed by the game
// feature. Implementations must be safe for concurrent use.
type Gateway interface {
	// CreateSession writes a full session record: the active flag and
	// every player.
	CreateSession(ctx context.Context, session *types.Session) error
	// PutPlayer replaces a single player record under the session.
	// The session record is created implicitly if it does not exist.
	PutPlayer(ctx context.Context, sessionID int, player types.Player) error
	// UpdateLocation writes only the location sub-path of a player.
	UpdateLocation(ctx context.Context, sessionID, playerID int, location types.Location) error
	// KillPlayer writes only the alive sub-path of a player.
	KillPlayer(ctx context.Context, sessionID, playerID int) error
	// Subscribe yields a full reconstructed session snapshot whenever
	// anything under the session record changes, starting with the
	// current value. A malformed snapshot is delivered on the error
	// channel and terminates the subscription; both channels are
	// closed when the subscription ends.
	Subscribe(ctx context.Context, sessionID int) (<-chan *types.Session, <-chan error, error)
	// Close releases the underlying client.
	Close(ctx context.Context) error
}
