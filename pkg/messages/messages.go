// Package messages defines the JSON envelopes exchanged with the
// rendering layer over the local bridge.
package messages

import (
	"encoding/json"
	"fmt"

	"github.com/crossfire-games/crossfire/pkg/game/types"
)

// Wish message types
const (
	WishTypeStartNewSession          = "startNewSession"
	WishTypeConnectToExistingSession = "connectToExistingSession"
	WishTypeShot                     = "shot"
	WishTypeRequestClose             = "requestClose"
	WishTypeFinishMyGame             = "finishMyGame"
)

// WishMessage is a client-to-core intent envelope.
type WishMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StartNewSessionPayload is the payload for startNewSession wishes.
type StartNewSessionPayload struct {
	UserName string `json:"userName"`
}

// ConnectToExistingSessionPayload is the payload for
// connectToExistingSession wishes.
type ConnectToExistingSessionPayload struct {
	UserName  string `json:"userName"`
	SessionID int    `json:"sessionId"`
}

// Wish decodes the envelope into a game wish.
func (m *WishMessage) Wish() (types.Wish, error) {
	switch m.Type {
	case WishTypeStartNewSession:
		payload := &StartNewSessionPayload{}
		if err := json.Unmarshal(m.Payload, payload); err != nil {
			return nil, fmt.Errorf("failed to decode start payload: %v", err)
		}
		return types.StartNewSession{UserName: payload.UserName}, nil
	case WishTypeConnectToExistingSession:
		payload := &ConnectToExistingSessionPayload{}
		if err := json.Unmarshal(m.Payload, payload); err != nil {
			return nil, fmt.Errorf("failed to decode connect payload: %v", err)
		}
		return types.ConnectToExistingSession{
			UserName:  payload.UserName,
			SessionID: payload.SessionID,
		}, nil
	case WishTypeShot:
		return types.Shot{}, nil
	case WishTypeRequestClose:
		return types.RequestClose{}, nil
	case WishTypeFinishMyGame:
		return types.FinishMyGame{}, nil
	default:
		return nil, fmt.Errorf("unknown wish type: %s", m.Type)
	}
}

// Server message types
const (
	ServerMessageTypeState        = "state"
	ServerMessageTypeNotification = "notification"
)

// ServerMessage is a core-to-client envelope pushed over the bridge
// stream.
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// LocationReport is a sensor report carrying a GPS fix.
type LocationReport struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HeadingReport is a sensor report carrying a compass heading in
// degrees.
type HeadingReport struct {
	Heading float64 `json:"heading"`
}

// NameRecord is the saved display name resource.
type NameRecord struct {
	Name string `json:"name"`
}

// TargetResponse reports the player currently aimed at, if any.
type TargetResponse struct {
	Target *types.Player `json:"target"`
}
