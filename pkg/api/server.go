// Package api hosts the local bridge the rendering layer talks to:
// REST routes for state, wishes, sensor reports and prefs, plus a
// WebSocket stream pushing state updates and notifications.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/crossfire-games/crossfire/pkg/api/handlers"
	"github.com/crossfire-games/crossfire/pkg/game"
	"github.com/crossfire-games/crossfire/pkg/log"
	"github.com/crossfire-games/crossfire/pkg/prefs"
	"github.com/crossfire-games/crossfire/pkg/sensors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server  *http.Server
	feature *game.Feature

	clientsLock sync.Mutex
	clients     map[uuid.UUID]*wsClient
}

type NewAPIServerOptions struct {
	Port    int
	Feature *game.Feature
	// Sensors is the reported source routes feed into; nil disables
	// the sensor routes (e.g. when running simulated).
	Sensors *sensors.ReportedSource
	// Prefs backs the saved-name routes; nil disables them.
	Prefs prefs.Store
}

// NewAPIServer creates a new http.Server for the local bridge.
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	s := &APIServer{
		feature: opts.Feature,
		clients: make(map[uuid.UUID]*wsClient),
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/state", handlers.HandleGetState(opts.Feature)).Methods(http.MethodGet)
	router.HandleFunc("/api/target", handlers.HandleGetTarget(opts.Feature)).Methods(http.MethodGet)
	router.HandleFunc("/api/wishes", handlers.HandleDispatchWish(opts.Feature)).Methods(http.MethodPost)
	if opts.Sensors != nil {
		router.HandleFunc("/api/sensors/location", handlers.HandleReportLocation(opts.Sensors)).Methods(http.MethodPost)
		router.HandleFunc("/api/sensors/heading", handlers.HandleReportHeading(opts.Sensors)).Methods(http.MethodPost)
	}
	if opts.Prefs != nil {
		router.HandleFunc("/api/name", handlers.HandleGetName(opts.Prefs)).Methods(http.MethodGet)
		router.HandleFunc("/api/name", handlers.HandlePutName(opts.Prefs)).Methods(http.MethodPut)
	}
	router.HandleFunc("/api/ws", s.handleWS)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}
	return s
}

// Start starts the APIServer and the notification broadcaster. It
// blocks until the server is closed.
func (s *APIServer) Start(ctx context.Context) {
	go s.broadcastNotifications(ctx)

	log.Info("Bridge server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("Bridge server closed")
			return
		}
		log.Error("Bridge server error: %v", err)
	}
}

// Stop stops the APIServer.
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// broadcastNotifications is the single consumer of the feature's
// notification stream; each notification is fanned out once to the
// currently connected bridge clients and never replayed.
func (s *APIServer) broadcastNotifications(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case notification, ok := <-s.feature.Notifications():
			if !ok {
				return
			}
			s.clientsLock.Lock()
			for _, client := range s.clients {
				client.sendNotification(notification)
			}
			s.clientsLock.Unlock()
		}
	}
}

func (s *APIServer) addClient(client *wsClient) {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()
	s.clients[client.id] = client
}

func (s *APIServer) removeClient(id uuid.UUID) {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()
	delete(s.clients, id)
}
