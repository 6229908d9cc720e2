package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"icc-assistant/internal/api"
	"icc-assistant/internal/session"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		want Route
	}{
		{
			// No decision during the boot verify: deciding early would
			// flash the login view before the session is known.
			name: "verifying renders the waiting placeholder",
			snap: session.Snapshot{State: session.StateVerifying},
			want: RouteLoading,
		},
		{
			name: "authenticated renders the protected view",
			snap: session.Snapshot{State: session.StateAuthenticated, User: api.User{Username: "alice"}},
			want: RouteChat,
		},
		{
			name: "unauthenticated redirects to the entry view",
			snap: session.Snapshot{State: session.StateUnauthenticated},
			want: RouteLogin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.snap))
		})
	}
}

func TestRouteStrings(t *testing.T) {
	assert.Equal(t, "loading", RouteLoading.String())
	assert.Equal(t, "login", RouteLogin.String())
	assert.Equal(t, "chat", RouteChat.String())
}
