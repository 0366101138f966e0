package game

import (
	"github.com/crossfire-games/crossfire/pkg/game/types"
)

// DeriveStage classifies a session snapshot for the local player. It
// is recomputed in full on every snapshot; stages are never patched.
//
// An active session is in progress, alive or not. An inactive session
// with one unique survivor among two or more players is a finished
// game with a winner; any other inactive session (including the
// degenerate single-player one) finishes with no winner.
func DeriveStage(session *types.Session, myID *int) types.Stage {
	alive := session.AlivePlayers()

	if session.Active {
		isMeAlive := false
		if myID != nil {
			for _, p := range alive {
				if p.ID == *myID {
					isMeAlive = true
					break
				}
			}
		}
		return types.InProgressStage(isMeAlive)
	}

	if len(session.Players) > 1 && len(alive) == 1 {
		winner := alive[0].Copy()
		isMe := myID != nil && winner.ID == *myID
		return types.FinishedStage(&winner, isMe)
	}

	return types.FinishedStage(nil, false)
}
