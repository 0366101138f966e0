// Package geo holds the targeting math: great-circle distances and the
// bearing projection used to decide which player the device is aimed at.
package geo

import (
	"math"

	"github.com/crossfire-games/crossfire/pkg/game/types"
)

const (
	// EarthRadiusKm is the sphere radius used by the haversine distance.
	EarthRadiusKm = 6371
	// MetersPerDegree is the flat-earth factor used by the bearing
	// projection. Not latitude-corrected; accurate only near the
	// equator at short range, accepted as a trade-off for simplicity.
	MetersPerDegree = 111111

	// SightEpsilon is the tolerance for "who am I facing" HUD lookups.
	SightEpsilon = 0.0001
	// ShotEpsilon is the tolerance for shot resolution.
	ShotEpsilon = 0.001
)

// DistanceMeters returns the haversine great-circle distance between
// two coordinates, in meters. No altitude component.
func DistanceMeters(a, b types.Location) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c * 1000
}

// PointAlongHeading projects a point `distance` meters from origin in
// the direction of `heading`. The heading value feeds cos/sin directly
// and maps cos to the longitude offset and sin to the latitude offset;
// the pairing is non-standard but is the pinned game behavior, shots
// and HUD lookups must agree with it.
func PointAlongHeading(origin types.Location, heading, distance float64) types.Location {
	dLng := distance * math.Cos(heading) / MetersPerDegree
	dLat := distance * math.Sin(heading) / MetersPerDegree
	return types.Location{
		Lat: origin.Lat + dLat,
		Lng: origin.Lng + dLng,
	}
}

// FindTargetInSight returns the first player in list order that sits
// within epsilon degrees of the point projected from the local
// player's location along the heading, or nil when nothing matches.
//
// It returns nil when the heading or local player id is absent, or
// when the local player is not in the list. The scan aborts with nil
// as soon as any visited player (including the local one) has no
// location; that early return is pinned behavior, not a null-skip.
func FindTargetInSight(heading *float64, myID *int, players []types.Player, epsilon float64) *types.Player {
	if heading == nil || myID == nil {
		return nil
	}

	var me *types.Player
	for i := range players {
		if players[i].ID == *myID {
			me = &players[i]
			break
		}
	}
	if me == nil {
		return nil
	}

	for i := range players {
		other := &players[i]
		if me.Location == nil || other.Location == nil {
			return nil
		}
		if other.ID == me.ID {
			continue
		}

		distance := DistanceMeters(*me.Location, *other.Location)
		estimated := PointAlongHeading(*me.Location, *heading, distance)

		if math.Abs(other.Location.Lat-estimated.Lat) <= epsilon &&
			math.Abs(other.Location.Lng-estimated.Lng) <= epsilon {
			return other
		}
	}

	return nil
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
