package sensors

import (
	"sync"

	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/crossfire-games/crossfire/pkg/log"
)

const (
	// UpdateBufferSize is the capacity of the location update stream.
	UpdateBufferSize = 64
)

var _ LocationSource = &ReportedSource{}
var _ OrientationSource = &ReportedSource{}

// ReportedSource is fed by the device over the local bridge: the
// companion app posts GPS fixes and compass headings as it reads them.
type ReportedSource struct {
	lock     sync.RWMutex
	location *types.Location
	heading  *float64
	updates  chan types.Location
}

// NewReportedSource creates a new ReportedSource.
func NewReportedSource() *ReportedSource {
	return &ReportedSource{
		updates: make(chan types.Location, UpdateBufferSize),
	}
}

// ReportLocation records a fresh fix and pushes it on the update
// stream. A full stream drops the fix; the next report supersedes it
// anyway.
func (s *ReportedSource) ReportLocation(location types.Location) {
	s.lock.Lock()
	loc := location
	s.location = &loc
	s.lock.Unlock()

	select {
	case s.updates <- location:
	default:
		log.Debug("Dropping location update, stream is full")
	}
}

// ReportHeading records the current compass heading in degrees.
func (s *ReportedSource) ReportHeading(heading float64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	h := heading
	s.heading = &h
}

func (s *ReportedSource) Location() *types.Location {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.location == nil {
		return nil
	}
	loc := *s.location
	return &loc
}

func (s *ReportedSource) Updates() <-chan types.Location {
	return s.updates
}

func (s *ReportedSource) Heading() *float64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.heading == nil {
		return nil
	}
	h := *s.heading
	return &h
}
