package api

import (
	"context"
	"net/http"

	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/crossfire-games/crossfire/pkg/log"
	"github.com/crossfire-games/crossfire/pkg/messages"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	// NotificationSendBufferSize is the per-connection notification buffer
	NotificationSendBufferSize = 16
)

type wsClient struct {
	id            uuid.UUID
	notifications chan types.Notification
}

// sendNotification must not block the broadcaster; a client that is
// not draining loses the notification.
func (c *wsClient) sendNotification(notification types.Notification) {
	select {
	case c.notifications <- notification:
	default:
		log.Warn("Dropping notification for client %s", c.id)
	}
}

// handleWS streams state updates and notifications to one bridge
// client and accepts wish envelopes from it.
func (s *APIServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // loopback bridge, no origin policy
	})
	if err != nil {
		log.Error("Failed to accept WebSocket connection: %v", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	client := &wsClient{
		id:            uuid.New(),
		notifications: make(chan types.Notification, NotificationSendBufferSize),
	}
	s.addClient(client)
	defer s.removeClient(client.id)
	log.Debug("New bridge client %s from %s", client.id, r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	states := s.feature.Subscribe()
	defer s.feature.Unsubscribe(states)

	go s.readWishes(ctx, cancel, conn)

	// Push the current state first so the client can render without
	// waiting for the next reduction.
	if err := writeServerMessage(ctx, conn, messages.ServerMessageTypeState, s.feature.State()); err != nil {
		log.Debug("Failed to write initial state to client %s: %v", client.id, err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case state, ok := <-states:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := writeServerMessage(ctx, conn, messages.ServerMessageTypeState, state); err != nil {
				log.Debug("Failed to write state to client %s: %v", client.id, err)
				return
			}
		case notification := <-client.notifications:
			if err := writeServerMessage(ctx, conn, messages.ServerMessageTypeNotification, notification); err != nil {
				log.Debug("Failed to write notification to client %s: %v", client.id, err)
				return
			}
		}
	}
}

func (s *APIServer) readWishes(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	for {
		message := &messages.WishMessage{}
		if err := wsjson.Read(ctx, conn, message); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || ctx.Err() != nil {
				return
			}
			log.Debug("Failed to read wish from bridge client: %v", err)
			return
		}
		wish, err := message.Wish()
		if err != nil {
			log.Debug("Rejected wish from bridge client: %v", err)
			continue
		}
		s.feature.Dispatch(wish)
	}
}

func writeServerMessage(ctx context.Context, conn *websocket.Conn, messageType string, payload interface{}) error {
	return wsjson.Write(ctx, conn, &messages.ServerMessage{
		Type:    messageType,
		Payload: payload,
	})
}
