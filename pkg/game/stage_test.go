package game

import (
	"testing"

	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStage(t *testing.T) {
	myID := 1

	tests := []struct {
		name    string
		session *types.Session
		myID    *int
		want    types.Stage
	}{
		{
			name: "active session with me alive",
			session: &types.Session{
				ID:     123456,
				Active: true,
				Players: []types.Player{
					{ID: 1, Name: "me", Alive: true},
					{ID: 2, Name: "them", Alive: false},
				},
			},
			myID: &myID,
			want: types.InProgressStage(true),
		},
		{
			name: "active session with me dead",
			session: &types.Session{
				ID:     123456,
				Active: true,
				Players: []types.Player{
					{ID: 1, Name: "me", Alive: false},
					{ID: 2, Name: "them", Alive: true},
				},
			},
			myID: &myID,
			want: types.InProgressStage(false),
		},
		{
			name: "active session without a local id",
			session: &types.Session{
				ID:     123456,
				Active: true,
				Players: []types.Player{
					{ID: 2, Name: "them", Alive: true},
				},
			},
			myID: nil,
			want: types.InProgressStage(false),
		},
		{
			name: "finished session with a unique survivor",
			session: &types.Session{
				ID:     123456,
				Active: false,
				Players: []types.Player{
					{ID: 2, Name: "winner", Alive: true},
					{ID: 1, Name: "me", Alive: false},
				},
			},
			myID: &myID,
			want: types.FinishedStage(&types.Player{ID: 2, Name: "winner", Alive: true}, false),
		},
		{
			name: "finished session won by me",
			session: &types.Session{
				ID:     123456,
				Active: false,
				Players: []types.Player{
					{ID: 1, Name: "me", Alive: true},
					{ID: 2, Name: "them", Alive: false},
				},
			},
			myID: &myID,
			want: types.FinishedStage(&types.Player{ID: 1, Name: "me", Alive: true}, true),
		},
		{
			name: "finished single-player session is not a win",
			session: &types.Session{
				ID:     123456,
				Active: false,
				Players: []types.Player{
					{ID: 1, Name: "me", Alive: false},
				},
			},
			myID: &myID,
			want: types.FinishedStage(nil, false),
		},
		{
			name: "finished session with no unique survivor",
			session: &types.Session{
				ID:     123456,
				Active: false,
				Players: []types.Player{
					{ID: 1, Name: "me", Alive: true},
					{ID: 2, Name: "them", Alive: true},
				},
			},
			myID: &myID,
			want: types.FinishedStage(nil, false),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStage(tt.session, tt.myID)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.IsMeAlive, got.IsMeAlive)
			assert.Equal(t, tt.want.IsMe, got.IsMe)
			if tt.want.Winner == nil {
				assert.Nil(t, got.Winner)
				return
			}
			require.NotNil(t, got.Winner)
			assert.Equal(t, *tt.want.Winner, *got.Winner)
		})
	}
}
