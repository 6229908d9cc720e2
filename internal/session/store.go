// Package session is the single source of truth for who is logged in.
//
// The store owns a fixed set of transitions (Verify, Login, Logout);
// no other component writes session state. Readers get an immutable
// Snapshot. The transport's expiry handler calls Logout from deep
// inside arbitrary call stacks, so every transition is serialized under
// one mutex and guarded by an epoch counter.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"icc-assistant/internal/api"
)

// State is the authentication lifecycle position
type State int

const (
	// StateUnauthenticated means no valid session exists
	StateUnauthenticated State = iota
	// StateVerifying means the boot-time session check is in flight
	StateVerifying
	// StateAuthenticated means a valid identity is bound
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Snapshot is the read projection handed to the gate and views
type Snapshot struct {
	State State
	User  api.User
}

// Loading reports whether the boot verify is still pending
func (s Snapshot) Loading() bool {
	return s.State == StateVerifying
}

// Authenticated reports whether a valid session is bound
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

// Verifier checks an existing backend session and returns its identity
type Verifier interface {
	Verify(ctx context.Context) (api.User, error)
}

// Store holds the process-wide session state
type Store struct {
	verifier Verifier

	mu       sync.Mutex
	state    State
	user     api.User
	epoch    uint64
	verified bool
}

// NewStore creates a session store in the unauthenticated state
func NewStore(verifier Verifier) *Store {
	return &Store{
		verifier: verifier,
		state:    StateUnauthenticated,
	}
}

// Verify runs the boot-time session check. It happens at most once per
// process: later calls are no-ops. A failed verify is not retried; the
// user authenticates explicitly instead.
func (s *Store) Verify(ctx context.Context) {
	s.mu.Lock()
	if s.verified {
		s.mu.Unlock()
		return
	}
	s.verified = true
	s.state = StateVerifying
	epoch := s.epoch
	s.mu.Unlock()

	user, err := s.verifier.Verify(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A forced logout during the flight wins over the verify result
	if s.epoch != epoch {
		log.Debug().Msg("verify result discarded: session changed in flight")
		return
	}

	if err != nil {
		log.Debug().Err(err).Msg("session verify failed")
		s.state = StateUnauthenticated
		s.user = api.User{}
		return
	}

	s.state = StateAuthenticated
	s.user = user
	log.Info().Str("user", user.Username).Str("role", user.Role).Msg("session restored")
}

// Login commits an externally performed login. It does not issue the
// network call itself.
func (s *Store) Login(user api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.state = StateAuthenticated
	s.user = user
}

// Logout clears the session. Idempotent: safe when already
// unauthenticated, including when invoked by the transport's expiry
// handler mid-verify.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.state = StateUnauthenticated
	s.user = api.User{}
}

// Snapshot returns the current session state for reading
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{State: s.state, User: s.user}
}
