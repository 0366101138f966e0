package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/crossfire-games/crossfire/pkg/game/constants"
	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/crossfire-games/crossfire/pkg/log"
)

var _ Gateway = &MemoryGateway{}

// MemoryGateway keeps sessions in process memory and fans every write
// out to subscribers as a fresh full snapshot. It backs offline play
// and tests.
type MemoryGateway struct {
	lock     sync.Mutex
	sessions map[int]*types.Session
	subs     map[int][]*memorySubscription
}

type memorySubscription struct {
	sessions chan *types.Session
	errs     chan error
	done     chan struct{}
}

// NewMemoryGateway creates a new MemoryGateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		sessions: make(map[int]*types.Session),
		subs:     make(map[int][]*memorySubscription),
	}
}

func (g *MemoryGateway) Close(ctx context.Context) error {
	g.lock.Lock()
	defer g.lock.Unlock()
	for sessionID, subs := range g.subs {
		for _, sub := range subs {
			sub.close()
		}
		delete(g.subs, sessionID)
	}
	return nil
}

func (g *MemoryGateway) CreateSession(ctx context.Context, session *types.Session) error {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.sessions[session.ID] = session.Copy()
	g.broadcast(session.ID)
	return nil
}

func (g *MemoryGateway) PutPlayer(ctx context.Context, sessionID int, player types.Player) error {
	g.lock.Lock()
	defer g.lock.Unlock()
	session, ok := g.sessions[sessionID]
	if !ok {
		// Joining an id nobody has created yet still lands the player
		// record; the session materializes inactive, matching the
		// store's create-on-write behavior.
		session = &types.Session{ID: sessionID}
		g.sessions[sessionID] = session
	}
	replaced := false
	for i := range session.Players {
		if session.Players[i].ID == player.ID {
			session.Players[i] = player.Copy()
			replaced = true
			break
		}
	}
	if !replaced {
		session.Players = append(session.Players, player.Copy())
	}
	g.broadcast(sessionID)
	return nil
}

func (g *MemoryGateway) UpdateLocation(ctx context.Context, sessionID, playerID int, location types.Location) error {
	g.lock.Lock()
	defer g.lock.Unlock()
	player, err := g.findPlayer(sessionID, playerID)
	if err != nil {
		return err
	}
	loc := location
	player.Location = &loc
	g.broadcast(sessionID)
	return nil
}

func (g *MemoryGateway) KillPlayer(ctx context.Context, sessionID, playerID int) error {
	g.lock.Lock()
	defer g.lock.Unlock()
	player, err := g.findPlayer(sessionID, playerID)
	if err != nil {
		return err
	}
	player.Alive = false
	g.broadcast(sessionID)
	return nil
}

func (g *MemoryGateway) Subscribe(ctx context.Context, sessionID int) (<-chan *types.Session, <-chan error, error) {
	sub := &memorySubscription{
		sessions: make(chan *types.Session, constants.SnapshotBufferSize),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}

	g.lock.Lock()
	g.subs[sessionID] = append(g.subs[sessionID], sub)
	// Deliver the current value immediately, like the remote store's
	// listener does.
	if session, ok := g.sessions[sessionID]; ok {
		sub.push(session.Copy())
	}
	g.lock.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-sub.done:
			return
		}
		g.lock.Lock()
		defer g.lock.Unlock()
		g.removeSub(sessionID, sub)
	}()

	return sub.sessions, sub.errs, nil
}

// Session returns a copy of the current session record, for tests and
// offline inspection.
func (g *MemoryGateway) Session(sessionID int) *types.Session {
	g.lock.Lock()
	defer g.lock.Unlock()
	session, ok := g.sessions[sessionID]
	if !ok {
		return nil
	}
	return session.Copy()
}

// findPlayer must be called with the lock held.
func (g *MemoryGateway) findPlayer(sessionID, playerID int) (*types.Player, error) {
	session, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %d not found", sessionID)
	}
	player := session.FindPlayer(playerID)
	if player == nil {
		return nil, fmt.Errorf("player %d not found in session %d", playerID, sessionID)
	}
	return player, nil
}

// broadcast must be called with the lock held.
func (g *MemoryGateway) broadcast(sessionID int) {
	session, ok := g.sessions[sessionID]
	if !ok {
		return
	}
	for _, sub := range g.subs[sessionID] {
		sub.push(session.Copy())
	}
}

// removeSub must be called with the lock held.
func (g *MemoryGateway) removeSub(sessionID int, sub *memorySubscription) {
	subs := g.subs[sessionID]
	for i, s := range subs {
		if s == sub {
			g.subs[sessionID] = append(subs[:i], subs[i+1:]...)
			sub.close()
			return
		}
	}
}

func (s *memorySubscription) push(session *types.Session) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.sessions <- session:
	default:
		log.Warn("Dropping session %d snapshot for slow subscriber", session.ID)
	}
}

func (s *memorySubscription) close() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	close(s.sessions)
	close(s.errs)
}
