package messages

import (
	"encoding/json"
	"testing"

	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishMessage_Wish(t *testing.T) {
	tests := []struct {
		name    string
		message WishMessage
		want    types.Wish
		wantErr string
	}{
		{
			name: "start new session",
			message: WishMessage{
				Type:    WishTypeStartNewSession,
				Payload: json.RawMessage(`{"userName":"Alice"}`),
			},
			want: types.StartNewSession{UserName: "Alice"},
		},
		{
			name: "connect to existing session",
			message: WishMessage{
				Type:    WishTypeConnectToExistingSession,
				Payload: json.RawMessage(`{"userName":"Bob","sessionId":123456}`),
			},
			want: types.ConnectToExistingSession{UserName: "Bob", SessionID: 123456},
		},
		{
			name:    "shot needs no payload",
			message: WishMessage{Type: WishTypeShot},
			want:    types.Shot{},
		},
		{
			name:    "request close",
			message: WishMessage{Type: WishTypeRequestClose},
			want:    types.RequestClose{},
		},
		{
			name:    "finish my game",
			message: WishMessage{Type: WishTypeFinishMyGame},
			want:    types.FinishMyGame{},
		},
		{
			name:    "unknown type",
			message: WishMessage{Type: "teleport"},
			wantErr: "unknown wish type",
		},
		{
			name: "malformed start payload",
			message: WishMessage{
				Type:    WishTypeStartNewSession,
				Payload: json.RawMessage(`"nope"`),
			},
			wantErr: "failed to decode start payload",
		},
		{
			name: "malformed connect payload",
			message: WishMessage{
				Type:    WishTypeConnectToExistingSession,
				Payload: json.RawMessage(`[]`),
			},
			wantErr: "failed to decode connect payload",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wish, err := tc.message.Wish()
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, wish)
		})
	}
}
