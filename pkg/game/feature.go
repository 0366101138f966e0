// Package game implements the session state machine: user wishes and
// sensor updates flow in as actions, each action runs an asynchronous
// pipeline of gateway calls, and the resulting effects are folded into
// a single GameState by one reducer goroutine. One-shot notifications
// travel on a side channel and are never part of state.
package game

import (
	"context"
	"sync"

	"github.com/crossfire-games/crossfire/pkg/game/constants"
	"github.com/crossfire-games/crossfire/pkg/game/geo"
	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/crossfire-games/crossfire/pkg/gateway"
	"github.com/crossfire-games/crossfire/pkg/log"
	"github.com/crossfire-games/crossfire/pkg/sensors"
)

type Feature struct {
	gateway     gateway.Gateway
	location    sensors.LocationSource
	orientation sensors.OrientationSource
	ids         IDGenerator

	actions       chan types.Action
	effects       chan types.Effect
	notifications chan types.Notification

	stateLock sync.RWMutex
	state     *types.GameState

	subscriberLock sync.Mutex
	subscribers    map[chan *types.GameState]struct{}

	done     chan struct{}
	stopOnce sync.Once
}

// NewFeatureOptions contains options for creating a new Feature.
type NewFeatureOptions struct {
	Gateway           gateway.Gateway
	LocationSource    sensors.LocationSource
	OrientationSource sensors.OrientationSource
	// IDGenerator defaults to the uniform random generator.
	IDGenerator IDGenerator
}

func NewFeature(opts NewFeatureOptions) *Feature {
	ids := opts.IDGenerator
	if ids == nil {
		ids = NewRandomIDGenerator()
	}
	return &Feature{
		gateway:       opts.Gateway,
		location:      opts.LocationSource,
		orientation:   opts.OrientationSource,
		ids:           ids,
		actions:       make(chan types.Action, constants.ActionBufferSize),
		effects:       make(chan types.Effect, constants.EffectBufferSize),
		notifications: make(chan types.Notification, constants.NotificationBufferSize),
		state:         types.NewGameState(),
		subscribers:   make(map[chan *types.GameState]struct{}),
		done:          make(chan struct{}),
	}
}

// Start runs the feature until the context is cancelled. The location
// stream is pumped from the moment the feature starts, independent of
// any wish. Once the context ends no further reduction occurs.
func (f *Feature) Start(ctx context.Context) error {
	log.Info("Starting game feature")
	go f.pumpLocations(ctx)
	// Unblocks any pending send the moment the owning scope ends, even
	// while the loop below is mid-delivery.
	go func() {
		<-ctx.Done()
		f.stop()
	}()

	for {
		select {
		case <-ctx.Done():
			f.stop()
			log.Info("Game feature stopped")
			return nil
		case action := <-f.actions:
			f.execute(ctx, action)
		case effect := <-f.effects:
			f.reduce(effect)
		}
	}
}

// Dispatch feeds a user wish into the state machine.
func (f *Feature) Dispatch(wish types.Wish) {
	f.dispatchAction(types.ExecuteWish{Wish: wish})
}

// State returns a read-only copy of the current game state.
func (f *Feature) State() *types.GameState {
	f.stateLock.RLock()
	defer f.stateLock.RUnlock()
	return f.state.Copy()
}

// Notifications exposes the one-shot notification stream. Each
// notification is delivered at most once; late subscribers never see
// old ones.
func (f *Feature) Notifications() <-chan types.Notification {
	return f.notifications
}

// Subscribe registers a channel receiving a state copy after every
// reduction. Updates are dropped for subscribers that fall behind.
func (f *Feature) Subscribe() chan *types.GameState {
	ch := make(chan *types.GameState, constants.StateBufferSize)
	f.subscriberLock.Lock()
	defer f.subscriberLock.Unlock()
	f.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (f *Feature) Unsubscribe(ch chan *types.GameState) {
	f.subscriberLock.Lock()
	defer f.subscriberLock.Unlock()
	if _, ok := f.subscribers[ch]; ok {
		delete(f.subscribers, ch)
		close(ch)
	}
}

// PlayerInSight returns the player the device currently points at,
// using the loose HUD tolerance, or nil.
func (f *Feature) PlayerInSight() *types.Player {
	state := f.State()
	if state.Session == nil {
		return nil
	}
	return geo.FindTargetInSight(f.orientation.Heading(), state.MyID, state.Session.Players, geo.SightEpsilon)
}

func (f *Feature) stop() {
	f.stopOnce.Do(func() {
		close(f.done)
	})
}

func (f *Feature) dispatchAction(action types.Action) {
	select {
	case f.actions <- action:
	case <-f.done:
		log.Debug("Dropping action, feature is stopped")
	}
}

func (f *Feature) pumpLocations(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case location, ok := <-f.location.Updates():
			if !ok {
				return
			}
			f.dispatchAction(types.LocationUpdated{Location: location})
		}
	}
}

// sendEffect delivers an effect to the reducer. Effects sent from one
// pipeline goroutine arrive in send order; nothing is guaranteed
// across pipelines.
func (f *Feature) sendEffect(ctx context.Context, effect types.Effect) {
	select {
	case f.effects <- effect:
	case <-ctx.Done():
	case <-f.done:
	}
}

// execute is the actor: it inspects the current state synchronously
// and spawns one pipeline goroutine per action. Missing preconditions
// (no session, no id, no heading, no location) are deliberate no-ops,
// not errors.
func (f *Feature) execute(ctx context.Context, action types.Action) {
	state := f.State()

	switch a := action.(type) {
	case types.LocationUpdated:
		f.updateMyLocation(ctx, state, a.Location)
	case types.ExecuteWish:
		switch w := a.Wish.(type) {
		case types.StartNewSession:
			f.startNewSession(ctx, w)
		case types.ConnectToExistingSession:
			f.connectToExistingSession(ctx, w)
		case types.Shot:
			f.tryShot(ctx, state)
		case types.RequestClose:
			f.requestClose(ctx, state)
		case types.FinishMyGame:
			f.finishMyGame(ctx, state)
		default:
			log.Error("unhandled wish type: %T", w)
		}
	default:
		log.Error("unhandled action type: %T", a)
	}
}

func (f *Feature) updateMyLocation(ctx context.Context, state *types.GameState, location types.Location) {
	if state.Session == nil || state.MyID == nil {
		return
	}
	sessionID := state.Session.ID
	myID := *state.MyID
	go func() {
		if err := f.gateway.UpdateLocation(ctx, sessionID, myID, location); err != nil {
			f.sendEffect(ctx, types.ErrorHappened{Err: err})
		}
	}()
}

func (f *Feature) startNewSession(ctx context.Context, wish types.StartNewSession) {
	myID := f.ids.NewPlayerID()
	sessionID := f.ids.NewSessionID()
	me := types.Player{
		ID:       myID,
		Name:     wish.UserName,
		Location: f.location.Location(),
		Alive:    true,
	}
	session := &types.Session{
		ID:      sessionID,
		Players: []types.Player{me},
		Active:  true,
	}

	log.Info("Starting new session %d as player %d", sessionID, myID)
	go func() {
		f.sendEffect(ctx, types.LoadingStarted{})
		f.sendEffect(ctx, types.MyIDUpdated{ID: myID})
		if err := f.gateway.CreateSession(ctx, session); err != nil {
			f.sendEffect(ctx, types.ErrorHappened{Err: err})
			return
		}
		f.pumpSnapshots(ctx, sessionID, myID)
	}()
}

func (f *Feature) connectToExistingSession(ctx context.Context, wish types.ConnectToExistingSession) {
	myID := f.ids.NewPlayerID()
	me := types.Player{
		ID:       myID,
		Name:     wish.UserName,
		Location: f.location.Location(),
		Alive:    true,
	}

	log.Info("Connecting to session %d as player %d", wish.SessionID, myID)
	go func() {
		f.sendEffect(ctx, types.MyIDUpdated{ID: myID})
		f.sendEffect(ctx, types.LoadingStarted{})
		if err := f.gateway.PutPlayer(ctx, wish.SessionID, me); err != nil {
			f.sendEffect(ctx, types.ErrorHappened{Err: err})
			return
		}
		f.pumpSnapshots(ctx, wish.SessionID, myID)
	}()
}

// pumpSnapshots maps every session snapshot to a SessionUpdated effect
// carrying a freshly derived stage. It runs for the remainder of the
// session's participation; a stream error ends only this subscription.
func (f *Feature) pumpSnapshots(ctx context.Context, sessionID, myID int) {
	snapshots, errs, err := f.gateway.Subscribe(ctx, sessionID)
	if err != nil {
		f.sendEffect(ctx, types.ErrorHappened{Err: err})
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case session, ok := <-snapshots:
			if !ok {
				if err, ok := <-errs; ok && err != nil {
					f.sendEffect(ctx, types.ErrorHappened{Err: err})
				}
				return
			}
			f.sendEffect(ctx, types.SessionUpdated{
				Session: session,
				Stage:   DeriveStage(session, &myID),
			})
		}
	}
}

func (f *Feature) tryShot(ctx context.Context, state *types.GameState) {
	heading := f.orientation.Heading()
	if heading == nil || state.Session == nil {
		return
	}
	target := geo.FindTargetInSight(heading, state.MyID, state.Session.Players, geo.ShotEpsilon)
	if target == nil {
		return
	}

	killed := target.Copy()
	killed.Alive = false
	sessionID := state.Session.ID
	log.Info("Shot player %d in session %d", killed.ID, sessionID)
	go func() {
		if err := f.gateway.PutPlayer(ctx, sessionID, killed); err != nil {
			f.sendEffect(ctx, types.ErrorHappened{Err: err})
		}
	}()
}

func (f *Feature) requestClose(ctx context.Context, state *types.GameState) {
	if state.Stage.Kind == types.StageKindInProgress && state.Stage.IsMeAlive {
		go f.sendEffect(ctx, types.ConfirmCloseRequested{})
		return
	}
	go f.sendEffect(ctx, types.Finish{})
}

func (f *Feature) finishMyGame(ctx context.Context, state *types.GameState) {
	if state.Session == nil || state.MyID == nil {
		return
	}
	sessionID := state.Session.ID
	myID := *state.MyID
	go func() {
		if err := f.gateway.KillPlayer(ctx, sessionID, myID); err != nil {
			f.sendEffect(ctx, types.ErrorHappened{Err: err})
			return
		}
		f.sendEffect(ctx, types.Finish{})
	}()
}

// reduce folds one effect into the state. It runs only on the feature
// goroutine; effects from concurrent pipelines are applied one at a
// time in arrival order.
func (f *Feature) reduce(effect types.Effect) {
	switch e := effect.(type) {
	case types.SessionUpdated:
		f.setState(func(s *types.GameState) {
			s.Session = e.Session
			s.Stage = e.Stage
			s.IsLoading = false
		})
	case types.MyIDUpdated:
		id := e.ID
		f.setState(func(s *types.GameState) {
			s.MyID = &id
		})
	case types.LoadingStarted:
		f.setState(func(s *types.GameState) {
			s.IsLoading = true
		})
	case types.ConfirmCloseRequested:
		f.notify(types.Notification{Type: types.NotificationTypeConfirmCloseRequested})
	case types.Finish:
		f.notify(types.Notification{Type: types.NotificationTypeFinish})
	case types.ErrorHappened:
		log.Error("Pipeline failed: %v", e.Err)
		f.notify(types.Notification{Type: types.NotificationTypeError, Message: e.Err.Error()})
	default:
		log.Error("unhandled effect type: %T", e)
	}
}

func (f *Feature) setState(mutate func(*types.GameState)) {
	f.stateLock.Lock()
	mutate(f.state)
	copy := f.state.Copy()
	f.stateLock.Unlock()

	f.subscriberLock.Lock()
	defer f.subscriberLock.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- copy:
		default:
			log.Trace("Dropping state update for slow subscriber")
		}
	}
}

// notify delivers a one-shot notification. Each triggering effect
// yields exactly one notification; the send waits for a slow consumer
// and is abandoned only once the feature stops.
func (f *Feature) notify(notification types.Notification) {
	select {
	case f.notifications <- notification:
	case <-f.done:
		log.Debug("Dropping notification %s, feature is stopped", notification.Type)
	}
}
