package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icc-assistant/internal/api"
)

// fakeVerifier scripts the boot-time session check
type fakeVerifier struct {
	user  api.User
	err   error
	calls int

	// when set, Verify blocks until released and signals entry
	entered chan struct{}
	release chan struct{}
}

func (f *fakeVerifier) Verify(ctx context.Context) (api.User, error) {
	f.calls++
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	return f.user, f.err
}

func TestVerifySuccessAuthenticates(t *testing.T) {
	verifier := &fakeVerifier{user: api.User{Username: "alice", Role: api.RoleAdmin}}
	store := NewStore(verifier)

	store.Verify(context.Background())

	snap := store.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.True(t, snap.Authenticated())
	assert.False(t, snap.Loading())
	assert.Equal(t, "alice", snap.User.Username)
}

func TestVerifyFailureLeavesUnauthenticated(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("network down")}
	store := NewStore(verifier)

	store.Verify(context.Background())

	snap := store.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Empty(t, snap.User.Username)
}

func TestVerifyRunsOnlyOncePerProcess(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("expired")}
	store := NewStore(verifier)

	store.Verify(context.Background())
	store.Verify(context.Background())
	store.Verify(context.Background())

	assert.Equal(t, 1, verifier.calls, "a failed verify must not be retried")
}

func TestSnapshotLoadsWhileVerifyInFlight(t *testing.T) {
	verifier := &fakeVerifier{
		user:    api.User{Username: "alice", Role: api.RoleUser},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := NewStore(verifier)

	done := make(chan struct{})
	go func() {
		store.Verify(context.Background())
		close(done)
	}()

	<-verifier.entered
	snap := store.Snapshot()
	assert.True(t, snap.Loading())
	assert.False(t, snap.Authenticated())

	close(verifier.release)
	<-done
	assert.True(t, store.Snapshot().Authenticated())
}

// A transport-forced logout during the verify flight must win over the
// late verify result.
func TestForcedLogoutDuringVerifyWins(t *testing.T) {
	verifier := &fakeVerifier{
		user:    api.User{Username: "alice", Role: api.RoleUser},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := NewStore(verifier)

	done := make(chan struct{})
	go func() {
		store.Verify(context.Background())
		close(done)
	}()

	<-verifier.entered
	store.Logout()
	close(verifier.release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("verify did not finish")
	}

	snap := store.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Empty(t, snap.User.Username)
}

func TestLoginCommitsIdentity(t *testing.T) {
	store := NewStore(&fakeVerifier{})

	store.Login(api.User{Username: "bob", Role: api.RoleUser})

	snap := store.Snapshot()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "bob", snap.User.Username)
	assert.Equal(t, api.RoleUser, snap.User.Role)
}

func TestLogoutIsIdempotent(t *testing.T) {
	store := NewStore(&fakeVerifier{})
	store.Login(api.User{Username: "bob", Role: api.RoleUser})

	store.Logout()
	store.Logout()

	snap := store.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Empty(t, snap.User.Username)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
	assert.Equal(t, "verifying", StateVerifying.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
}
