// Package sensors defines the contracts for the device's location and
// orientation inputs. The game core only ever reads already-cached
// values synchronously plus a push stream of location fixes; actual
// sensor acquisition happens outside this process.
package sensors

import (
	"github.com/crossfire-games/crossfire/pkg/game/types"
)

// LocationSource exposes the last known location and a stream of
// location updates. Location returns nil before the first fix.
type LocationSource interface {
	Location() *types.Location
	Updates() <-chan types.Location
}

// OrientationSource exposes the current compass heading in degrees.
// Heading returns nil before the first reading.
type OrientationSource interface {
	Heading() *float64
}
