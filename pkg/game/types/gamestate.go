package types

// StageKind classifies a session for the rendering layer.
type StageKind string

const (
	StageKindNoSession  StageKind = "noSession"
	StageKindInProgress StageKind = "inProgress"
	StageKindFinished   StageKind = "finished"
)

// Stage is derived from a session snapshot plus the local player id.
// It is recomputed from scratch on every snapshot, never patched.
type Stage struct {
	Kind StageKind `json:"kind"`
	// IsMeAlive is set for in-progress stages.
	IsMeAlive bool `json:"isMeAlive,omitempty"`
	// Winner and IsMe are set for finished stages. Winner is nil when
	// there is no unique survivor (draw or degenerate session).
	Winner *Player `json:"winner,omitempty"`
	IsMe   bool    `json:"isMe,omitempty"`
}

func NoSessionStage() Stage {
	return Stage{Kind: StageKindNoSession}
}

func InProgressStage(isMeAlive bool) Stage {
	return Stage{Kind: StageKindInProgress, IsMeAlive: isMeAlive}
}

func FinishedStage(winner *Player, isMe bool) Stage {
	return Stage{Kind: StageKindFinished, Winner: winner, IsMe: isMe}
}

// Copy returns a copy of the stage with its own winner pointer.
func (s Stage) Copy() Stage {
	copy := s
	if s.Winner != nil {
		w := s.Winner.Copy()
		copy.Winner = &w
	}
	return copy
}

// GameState is the single source of truth for rendering. It is owned
// exclusively by the feature's reducer; everything else observes
// read-only copies.
type GameState struct {
	Session   *Session `json:"session,omitempty"`
	MyID      *int     `json:"myId,omitempty"`
	Stage     Stage    `json:"stage"`
	IsLoading bool     `json:"isLoading"`
}

// NewGameState returns the initial all-empty state.
func NewGameState() *GameState {
	return &GameState{
		Stage: NoSessionStage(),
	}
}

// Copy returns a deep copy of the game state.
func (g *GameState) Copy() *GameState {
	copy := &GameState{
		Stage:     g.Stage.Copy(),
		IsLoading: g.IsLoading,
	}
	if g.Session != nil {
		copy.Session = g.Session.Copy()
	}
	if g.MyID != nil {
		id := *g.MyID
		copy.MyID = &id
	}
	return copy
}
