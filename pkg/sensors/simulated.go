package sensors

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/crossfire-games/crossfire/pkg/game/types"
)

var _ LocationSource = &SimulatedSource{}
var _ OrientationSource = &SimulatedSource{}

// SimulatedSource random-walks from an origin and slowly rotates the
// heading, for offline play and demos without real sensors.
type SimulatedSource struct {
	lock     sync.RWMutex
	location types.Location
	heading  float64
	started  bool

	stepDegrees float64
	interval    time.Duration
	rng         *rand.Rand
	updates     chan types.Location
}

type NewSimulatedSourceOptions struct {
	// Origin is the starting location.
	Origin types.Location
	// StepMeters is the distance covered per tick.
	StepMeters float64
	// Interval is the tick period.
	Interval time.Duration
	// Seed seeds the walk; zero means time-based.
	Seed int64
}

// NewSimulatedSource creates a new SimulatedSource.
func NewSimulatedSource(opts NewSimulatedSourceOptions) *SimulatedSource {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedSource{
		location:    opts.Origin,
		stepDegrees: opts.StepMeters / 111111,
		interval:    opts.Interval,
		rng:         rand.New(rand.NewSource(seed)),
		updates:     make(chan types.Location, UpdateBufferSize),
	}
}

// Start runs the walk until the context is cancelled.
func (s *SimulatedSource) Start(ctx context.Context) {
	s.lock.Lock()
	s.started = true
	s.lock.Unlock()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.step()
		}
	}
}

func (s *SimulatedSource) step() {
	s.lock.Lock()
	s.heading += (s.rng.Float64() - 0.5) * 30
	s.heading = math.Mod(s.heading+360, 360)
	direction := s.rng.Float64() * 2 * math.Pi
	s.location.Lat += s.stepDegrees * math.Sin(direction)
	s.location.Lng += s.stepDegrees * math.Cos(direction)
	location := s.location
	s.lock.Unlock()

	select {
	case s.updates <- location:
	default:
	}
}

func (s *SimulatedSource) Location() *types.Location {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if !s.started {
		return nil
	}
	loc := s.location
	return &loc
}

func (s *SimulatedSource) Updates() <-chan types.Location {
	return s.updates
}

func (s *SimulatedSource) Heading() *float64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if !s.started {
		return nil
	}
	h := s.heading
	return &h
}
