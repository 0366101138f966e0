package gateway

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/crossfire-games/crossfire/pkg/game/constants"
	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/crossfire-games/crossfire/pkg/log"
	"google.golang.org/api/option"
)

var _ Gateway = &FirestoreGateway{}

// FirestoreGateway stores each session as a single document keyed by
// the session id, with the player map nested under a players field.
// Document snapshots are pushed through Firestore's listener stream.
type FirestoreGateway struct {
	// app is the Firebase app
	app *firebase.App
	// client is the Firestore client
	client *firestore.Client
	// collection is the collection holding session documents
	collection string
}

type NewFirestoreGatewayOptions struct {
	ProjectID       string
	CredentialsFile string
	Collection      string
}

// NewFirestoreGateway creates a new FirestoreGateway.
func NewFirestoreGateway(ctx context.Context, opts NewFirestoreGatewayOptions) (*FirestoreGateway, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	cfg := &firebase.Config{
		ProjectID: opts.ProjectID,
	}
	app, err := firebase.NewApp(ctx, cfg, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %v", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %v", err)
	}

	return &FirestoreGateway{
		app:        app,
		client:     client,
		collection: opts.Collection,
	}, nil
}

func (g *FirestoreGateway) Close(ctx context.Context) error {
	return g.client.Close()
}

func (g *FirestoreGateway) sessionDoc(sessionID int) *firestore.DocumentRef {
	return g.client.Collection(g.collection).Doc(strconv.Itoa(sessionID))
}

func (g *FirestoreGateway) CreateSession(ctx context.Context, session *types.Session) error {
	players := make(map[string]interface{}, len(session.Players))
	for _, p := range session.Players {
		players[strconv.Itoa(p.ID)] = playerData(p)
	}
	data := map[string]interface{}{
		"active":  session.Active,
		"players": players,
	}
	if _, err := g.sessionDoc(session.ID).Set(ctx, data); err != nil {
		return fmt.Errorf("failed to write session %d: %v", session.ID, err)
	}
	return nil
}

func (g *FirestoreGateway) PutPlayer(ctx context.Context, sessionID int, player types.Player) error {
	playerID := strconv.Itoa(player.ID)
	data := map[string]interface{}{
		"players": map[string]interface{}{
			playerID: playerData(player),
		},
	}
	// Merge on the player path replaces the whole player record while
	// leaving the rest of the session untouched.
	_, err := g.sessionDoc(sessionID).Set(ctx, data, firestore.Merge(firestore.FieldPath{"players", playerID}))
	if err != nil {
		return fmt.Errorf("failed to write player %d in session %d: %v", player.ID, sessionID, err)
	}
	return nil
}

func (g *FirestoreGateway) UpdateLocation(ctx context.Context, sessionID, playerID int, location types.Location) error {
	_, err := g.sessionDoc(sessionID).Update(ctx, []firestore.Update{
		{
			FieldPath: firestore.FieldPath{"players", strconv.Itoa(playerID), "location"},
			Value: map[string]interface{}{
				"lat": location.Lat,
				"lng": location.Lng,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write location for player %d in session %d: %v", playerID, sessionID, err)
	}
	return nil
}

func (g *FirestoreGateway) KillPlayer(ctx context.Context, sessionID, playerID int) error {
	_, err := g.sessionDoc(sessionID).Update(ctx, []firestore.Update{
		{
			FieldPath: firestore.FieldPath{"players", strconv.Itoa(playerID), "alive"},
			Value:     false,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to kill player %d in session %d: %v", playerID, sessionID, err)
	}
	return nil
}

func (g *FirestoreGateway) Subscribe(ctx context.Context, sessionID int) (<-chan *types.Session, <-chan error, error) {
	snapshots := g.sessionDoc(sessionID).Snapshots(ctx)
	sessions := make(chan *types.Session, constants.SnapshotBufferSize)
	errs := make(chan error, 1)

	go func() {
		defer snapshots.Stop()
		defer close(sessions)
		defer close(errs)

		for {
			snapshot, err := snapshots.Next()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				errs <- fmt.Errorf("session %d snapshot stream failed: %v", sessionID, err)
				return
			}
			if !snapshot.Exists() {
				log.Debug("Session %d does not exist yet", sessionID)
				continue
			}
			session, err := parseSessionData(sessionID, snapshot.Data())
			if err != nil {
				errs <- fmt.Errorf("malformed session %d snapshot: %v", sessionID, err)
				return
			}
			select {
			case sessions <- session:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sessions, errs, nil
}

func playerData(p types.Player) map[string]interface{} {
	data := map[string]interface{}{
		"id":    p.ID,
		"name":  p.Name,
		"alive": p.Alive,
	}
	if p.Location != nil {
		data["location"] = map[string]interface{}{
			"lat": p.Location.Lat,
			"lng": p.Location.Lng,
		}
	}
	return data
}

// parseSessionData reconstructs a full session from a document
// snapshot. A missing active flag defaults to false and missing
// coordinates default to zero; a player without id, name or alive
// fails the parse.
func parseSessionData(sessionID int, data map[string]interface{}) (*types.Session, error) {
	session := &types.Session{
		ID:     sessionID,
		Active: asBool(data["active"]),
	}

	playersData, _ := data["players"].(map[string]interface{})
	keys := make([]string, 0, len(playersData))
	for key := range playersData {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		playerData, ok := playersData[key].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("player %s is not a record", key)
		}
		player, err := parsePlayerData(playerData)
		if err != nil {
			return nil, fmt.Errorf("player %s: %v", key, err)
		}
		session.Players = append(session.Players, player)
	}

	return session, nil
}

func parsePlayerData(data map[string]interface{}) (types.Player, error) {
	id, ok := asInt(data["id"])
	if !ok {
		return types.Player{}, fmt.Errorf("missing id")
	}
	name, ok := data["name"].(string)
	if !ok {
		return types.Player{}, fmt.Errorf("missing name")
	}
	alive, ok := data["alive"].(bool)
	if !ok {
		return types.Player{}, fmt.Errorf("missing alive")
	}

	location := types.Location{}
	if locationData, ok := data["location"].(map[string]interface{}); ok {
		location.Lat = asFloat(locationData["lat"])
		location.Lng = asFloat(locationData["lng"])
	}

	return types.Player{
		ID:       id,
		Name:     name,
		Alive:    alive,
		Location: &location,
	}, nil
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}
