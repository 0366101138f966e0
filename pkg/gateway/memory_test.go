package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveSession(t *testing.T, sessions <-chan *types.Session) *types.Session {
	t.Helper()
	select {
	case session, ok := <-sessions:
		require.True(t, ok, "session stream closed")
		return session
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session snapshot")
		return nil
	}
}

func TestMemoryGateway_SubscribeDeliversCurrentSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := NewMemoryGateway()
	require.NoError(t, g.CreateSession(ctx, &types.Session{
		ID:     123456,
		Active: true,
		Players: []types.Player{
			{ID: 1, Name: "Alice", Location: &types.Location{Lat: 1}, Alive: true},
		},
	}))

	sessions, _, err := g.Subscribe(ctx, 123456)
	require.NoError(t, err)

	snapshot := receiveSession(t, sessions)
	assert.Equal(t, 123456, snapshot.ID)
	assert.True(t, snapshot.Active)
	require.Len(t, snapshot.Players, 1)
	assert.Equal(t, "Alice", snapshot.Players[0].Name)
}

func TestMemoryGateway_SubscribeFansOutWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := NewMemoryGateway()
	require.NoError(t, g.CreateSession(ctx, &types.Session{ID: 123456, Active: true}))

	first, _, err := g.Subscribe(ctx, 123456)
	require.NoError(t, err)
	second, _, err := g.Subscribe(ctx, 123456)
	require.NoError(t, err)
	receiveSession(t, first)
	receiveSession(t, second)

	require.NoError(t, g.PutPlayer(ctx, 123456, types.Player{ID: 1, Name: "Alice", Alive: true}))
	for _, sessions := range []<-chan *types.Session{first, second} {
		snapshot := receiveSession(t, sessions)
		require.Len(t, snapshot.Players, 1)
		assert.Equal(t, "Alice", snapshot.Players[0].Name)
	}

	require.NoError(t, g.KillPlayer(ctx, 123456, 1))
	for _, sessions := range []<-chan *types.Session{first, second} {
		snapshot := receiveSession(t, sessions)
		require.Len(t, snapshot.Players, 1)
		assert.False(t, snapshot.Players[0].Alive)
	}
}

func TestMemoryGateway_SnapshotsAreCopies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := NewMemoryGateway()
	require.NoError(t, g.CreateSession(ctx, &types.Session{
		ID:      123456,
		Active:  true,
		Players: []types.Player{{ID: 1, Name: "Alice", Alive: true}},
	}))

	sessions, _, err := g.Subscribe(ctx, 123456)
	require.NoError(t, err)
	snapshot := receiveSession(t, sessions)
	snapshot.Players[0].Name = "Mallory"

	assert.Equal(t, "Alice", g.Session(123456).Players[0].Name)
}

func TestMemoryGateway_PutPlayerCreatesInactiveSession(t *testing.T) {
	ctx := context.Background()

	g := NewMemoryGateway()
	require.NoError(t, g.PutPlayer(ctx, 777777, types.Player{ID: 5, Name: "Bob", Alive: true}))

	session := g.Session(777777)
	require.NotNil(t, session)
	assert.False(t, session.Active)
	require.Len(t, session.Players, 1)
	assert.Equal(t, "Bob", session.Players[0].Name)
}

func TestMemoryGateway_PutPlayerReplacesExistingRecord(t *testing.T) {
	ctx := context.Background()

	g := NewMemoryGateway()
	require.NoError(t, g.CreateSession(ctx, &types.Session{
		ID:      123456,
		Active:  true,
		Players: []types.Player{{ID: 1, Name: "Alice", Alive: true}},
	}))

	require.NoError(t, g.PutPlayer(ctx, 123456, types.Player{ID: 1, Name: "Alice", Alive: false}))

	session := g.Session(123456)
	require.Len(t, session.Players, 1)
	assert.False(t, session.Players[0].Alive)
}

func TestMemoryGateway_UpdateLocationErrors(t *testing.T) {
	ctx := context.Background()

	g := NewMemoryGateway()
	err := g.UpdateLocation(ctx, 123456, 1, types.Location{})
	assert.ErrorContains(t, err, "session 123456 not found")

	require.NoError(t, g.CreateSession(ctx, &types.Session{ID: 123456, Active: true}))
	err = g.UpdateLocation(ctx, 123456, 1, types.Location{})
	assert.ErrorContains(t, err, "player 1 not found")

	require.NoError(t, g.PutPlayer(ctx, 123456, types.Player{ID: 1, Name: "Alice", Alive: true}))
	require.NoError(t, g.UpdateLocation(ctx, 123456, 1, types.Location{Lat: 3, Lng: 4}))
	stored := g.Session(123456).FindPlayer(1)
	require.NotNil(t, stored.Location)
	assert.Equal(t, types.Location{Lat: 3, Lng: 4}, *stored.Location)
}

func TestMemoryGateway_CancelClosesSubscription(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	g := NewMemoryGateway()
	require.NoError(t, g.CreateSession(ctx, &types.Session{ID: 123456, Active: true}))
	sessions, errs, err := g.Subscribe(ctx, 123456)
	require.NoError(t, err)
	receiveSession(t, sessions)

	cancel()

	select {
	case _, ok := <-sessions:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("session stream not closed after cancel")
	}
	_, ok := <-errs
	assert.False(t, ok)

	// Writes after the subscription ends must not panic on the closed
	// channels.
	require.NoError(t, g.PutPlayer(context.Background(), 123456, types.Player{ID: 1, Name: "Alice", Alive: true}))
}

func TestMemoryGateway_CloseEndsAllSubscriptions(t *testing.T) {
	ctx := context.Background()

	g := NewMemoryGateway()
	require.NoError(t, g.CreateSession(ctx, &types.Session{ID: 123456, Active: true}))
	require.NoError(t, g.CreateSession(ctx, &types.Session{ID: 234567, Active: true}))
	first, _, err := g.Subscribe(ctx, 123456)
	require.NoError(t, err)
	second, _, err := g.Subscribe(ctx, 234567)
	require.NoError(t, err)
	receiveSession(t, first)
	receiveSession(t, second)

	require.NoError(t, g.Close(ctx))

	for _, sessions := range []<-chan *types.Session{first, second} {
		select {
		case _, ok := <-sessions:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("session stream not closed")
		}
	}
}
