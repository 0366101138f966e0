package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crossfire-games/crossfire/pkg/game"
	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/crossfire-games/crossfire/pkg/gateway"
	"github.com/crossfire-games/crossfire/pkg/messages"
	"github.com/crossfire-games/crossfire/pkg/sensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrefsStore struct {
	lock sync.Mutex
	name string
}

func (s *fakePrefsStore) GetName(ctx context.Context) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.name, nil
}

func (s *fakePrefsStore) SetName(ctx context.Context, name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.name = name
	return nil
}

func (s *fakePrefsStore) Close(ctx context.Context) error {
	return nil
}

type testBridge struct {
	feature *game.Feature
	source  *sensors.ReportedSource
	prefs   *fakePrefsStore
	server  *APIServer
}

func newTestBridge(t *testing.T) *testBridge {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	source := sensors.NewReportedSource()
	feature := game.NewFeature(game.NewFeatureOptions{
		Gateway:           gateway.NewMemoryGateway(),
		LocationSource:    source,
		OrientationSource: source,
	})
	go feature.Start(ctx)

	prefs := &fakePrefsStore{}
	server := NewAPIServer(NewAPIServerOptions{
		Port:    0,
		Feature: feature,
		Sensors: source,
		Prefs:   prefs,
	})
	return &testBridge{
		feature: feature,
		source:  source,
		prefs:   prefs,
		server:  server,
	}
}

func (b *testBridge) do(t *testing.T, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	b.server.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_GetState(t *testing.T) {
	bridge := newTestBridge(t)

	rec := bridge.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	state := &types.GameState{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(state))
	assert.Equal(t, types.StageKindNoSession, state.Stage.Kind)
	assert.False(t, state.IsLoading)
	assert.Nil(t, state.Session)
}

func TestServer_DispatchWish(t *testing.T) {
	bridge := newTestBridge(t)

	payload, err := json.Marshal(messages.WishMessage{
		Type:    messages.WishTypeStartNewSession,
		Payload: json.RawMessage(`{"userName":"Alice"}`),
	})
	require.NoError(t, err)

	rec := bridge.do(t, http.MethodPost, "/api/wishes", string(payload))
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		state := bridge.feature.State()
		return state.Session != nil && len(state.Session.Players) == 1 &&
			state.Session.Players[0].Name == "Alice"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_DispatchWishRejectsBadInput(t *testing.T) {
	bridge := newTestBridge(t)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "malformed json",
			body: "{not json",
		},
		{
			name: "unknown wish type",
			body: `{"type":"teleport"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := bridge.do(t, http.MethodPost, "/api/wishes", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_SensorRoutes(t *testing.T) {
	bridge := newTestBridge(t)

	rec := bridge.do(t, http.MethodPost, "/api/sensors/location", `{"lat":1.5,"lng":-2.5}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	location := bridge.source.Location()
	require.NotNil(t, location)
	assert.Equal(t, types.Location{Lat: 1.5, Lng: -2.5}, *location)

	rec = bridge.do(t, http.MethodPost, "/api/sensors/heading", `{"heading":42.5}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	heading := bridge.source.Heading()
	require.NotNil(t, heading)
	assert.Equal(t, 42.5, *heading)

	rec = bridge.do(t, http.MethodPost, "/api/sensors/location", "{bad")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetTargetWithoutSession(t *testing.T) {
	bridge := newTestBridge(t)

	rec := bridge.do(t, http.MethodGet, "/api/target", "")
	require.Equal(t, http.StatusOK, rec.Code)

	response := &messages.TargetResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(response))
	assert.Nil(t, response.Target)
}

func TestServer_NameRoutes(t *testing.T) {
	bridge := newTestBridge(t)

	rec := bridge.do(t, http.MethodGet, "/api/name", "")
	require.Equal(t, http.StatusOK, rec.Code)
	record := &messages.NameRecord{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(record))
	assert.Equal(t, "", record.Name)

	rec = bridge.do(t, http.MethodPut, "/api/name", `{"name":"Alice"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = bridge.do(t, http.MethodGet, "/api/name", "")
	require.Equal(t, http.StatusOK, rec.Code)
	record = &messages.NameRecord{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(record))
	assert.Equal(t, "Alice", record.Name)

	rec = bridge.do(t, http.MethodPut, "/api/name", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_OptionalRoutesDisabled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	source := sensors.NewReportedSource()
	feature := game.NewFeature(game.NewFeatureOptions{
		Gateway:           gateway.NewMemoryGateway(),
		LocationSource:    source,
		OrientationSource: source,
	})
	go feature.Start(ctx)

	server := NewAPIServer(NewAPIServerOptions{
		Port:    0,
		Feature: feature,
	})
	bridge := &testBridge{feature: feature, server: server}

	rec := bridge.do(t, http.MethodPost, "/api/sensors/location", `{"lat":1,"lng":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = bridge.do(t, http.MethodGet, "/api/name", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
