package types

// Wish is a user-originated intent. The set of wishes is closed.
type Wish interface {
	isWish()
}

// StartNewSession creates a fresh session with the local player as its
// only member and subscribes to its snapshots.
type StartNewSession struct {
	UserName string
}

// ConnectToExistingSession adds the local player to an existing session
// and subscribes to its snapshots.
type ConnectToExistingSession struct {
	UserName  string
	SessionID int
}

// Shot resolves the player currently aimed at, if any, and kills them.
type Shot struct{}

// RequestClose asks to leave the game, possibly after a confirmation.
type RequestClose struct{}

// FinishMyGame marks the local player dead and leaves the game.
type FinishMyGame struct{}

func (StartNewSession) isWish()          {}
func (ConnectToExistingSession) isWish() {}
func (Shot) isWish()                     {}
func (RequestClose) isWish()             {}
func (FinishMyGame) isWish()             {}

// Action is an internal command: either a wrapped wish or a
// sensor-triggered update.
type Action interface {
	isAction()
}

// ExecuteWish wraps a dispatched wish.
type ExecuteWish struct {
	Wish Wish
}

// LocationUpdated carries a fresh fix from the location stream. It is
// fed continuously, independent of any wish.
type LocationUpdated struct {
	Location Location
}

func (ExecuteWish) isAction()     {}
func (LocationUpdated) isAction() {}

// Effect is the outcome of executing an action, folded into GameState
// by the reducer. The set of effects is closed.
type Effect interface {
	isEffect()
}

// SessionUpdated carries a full session snapshot and the stage derived
// from it.
type SessionUpdated struct {
	Session *Session
	Stage   Stage
}

// MyIDUpdated installs the freshly generated local player id.
type MyIDUpdated struct {
	ID int
}

// LoadingStarted marks the gap between initiating a session operation
// and its first snapshot.
type LoadingStarted struct{}

// ConfirmCloseRequested asks the consumer to confirm leaving a game
// the local player is still alive in.
type ConfirmCloseRequested struct{}

// Finish signals that the game screen should close.
type Finish struct{}

// ErrorHappened wraps any pipeline failure. It never mutates state.
type ErrorHappened struct {
	Err error
}

func (SessionUpdated) isEffect()        {}
func (MyIDUpdated) isEffect()           {}
func (LoadingStarted) isEffect()        {}
func (ConfirmCloseRequested) isEffect() {}
func (Finish) isEffect()                {}
func (ErrorHappened) isEffect()         {}

// NotificationType identifies a one-shot signal to the consumer.
type NotificationType string

const (
	NotificationTypeConfirmCloseRequested NotificationType = "confirmCloseRequested"
	NotificationTypeFinish                NotificationType = "finish"
	NotificationTypeError                 NotificationType = "error"
)

// Notification is a fire-and-forget signal that is not part of
// GameState. Each one is delivered at most once and never replayed.
type Notification struct {
	Type NotificationType `json:"type"`
	// Message carries the error text for error notifications.
	Message string `json:"message,omitempty"`
}
