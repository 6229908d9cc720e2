// Package query owns the life of one question/answer exchange: input
// validation, the in-flight flag, the success or failure outcome, and
// the disclosure view state for the retrieved passages.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"icc-assistant/internal/api"
)

// Status is the position of the current exchange in its lifecycle
type Status int

const (
	// StatusIdle means no submission has produced an outcome yet
	StatusIdle Status = iota
	// StatusPending means a submission is in flight
	StatusPending
	// StatusSucceeded means the last submission produced an answer
	StatusSucceeded
	// StatusFailed means the last submission failed with a user message
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrEmptyQuestion rejects blank input locally, before any network call
var ErrEmptyQuestion = errors.New("question cannot be empty")

// ErrNotAdmin rejects agent mode for non-privileged roles
var ErrNotAdmin = errors.New("agent mode requires the admin role")

// Client issues one retrieval query against the backend
type Client interface {
	Query(ctx context.Context, question string, topK int) (*api.QueryResponse, error)
}

// Session is a reusable question/answer exchange. Each submission fully
// replaces the previous outcome; nothing accumulates across queries.
type Session struct {
	client   Client
	endpoint string
	timeout  time.Duration

	mu         sync.Mutex
	seq        uint64
	status     Status
	answer     string
	passages   []Passage
	disclosure *Disclosure
	errMsg     string
	agentMode  bool
}

// NewSession creates an idle query session. The endpoint and timeout
// are only used to word failure messages.
func NewSession(client Client, endpoint string, timeout time.Duration) *Session {
	return &Session{
		client:     client,
		endpoint:   endpoint,
		timeout:    timeout,
		status:     StatusIdle,
		disclosure: NewDisclosure(0),
	}
}

// Submit runs one question through the backend.
//
// Blank input returns ErrEmptyQuestion without touching the current
// state or the network. A session-expiry rejection returns the
// transport error and discards the exchange: the global expiry handler
// has already dropped the session, so it is not a query failure. All
// other failures land in the session state as a user-facing message and
// return nil.
func (s *Session) Submit(ctx context.Context, questionText string, retrievalWidth int) error {
	question := strings.TrimSpace(questionText)
	if question == "" {
		return ErrEmptyQuestion
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.status = StatusPending
	s.answer = ""
	s.passages = nil
	s.disclosure = NewDisclosure(0)
	s.errMsg = ""
	s.mu.Unlock()

	resp, err := s.client.Query(ctx, question, retrievalWidth)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Last submit wins: a newer submission started while this one was
	// in flight, so this outcome is stale and must not overwrite it.
	if s.seq != seq {
		log.Debug().Uint64("seq", seq).Msg("discarding stale query result")
		return nil
	}

	if err != nil {
		if api.IsUnauthorized(err) {
			s.status = StatusIdle
			return err
		}
		s.status = StatusFailed
		s.errMsg = s.failureMessage(err)
		return nil
	}

	s.status = StatusSucceeded
	s.answer = resp.Answer
	s.passages = passagesFromContexts(resp.Contexts)
	// Fresh disclosure state: every new passage starts collapsed
	s.disclosure = NewDisclosure(len(s.passages))
	return nil
}

// failureMessage maps the transport failure taxonomy to distinct
// user-facing text
func (s *Session) failureMessage(err error) string {
	switch api.KindOf(err) {
	case api.KindTimeout:
		return fmt.Sprintf("The backend did not answer within %s. Check that the RAG backend is running and the model is loaded.", s.timeout)
	case api.KindConnectivity:
		return fmt.Sprintf("Cannot reach the RAG backend at %s. Is it running?", s.endpoint)
	default:
		if detail := api.DetailOf(err); detail != "" {
			return detail
		}
		return "Failed to generate an answer. Please try again."
	}
}

// SetAgentMode flips the observation-only agent flag. Gated to the
// admin role; the flag never alters the request payload.
func (s *Session) SetAgentMode(user api.User, on bool) error {
	if !user.IsAdmin() {
		return ErrNotAdmin
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.agentMode = on
	return nil
}

// Status returns the current lifecycle position
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Answer returns the generated answer of a succeeded exchange
func (s *Session) Answer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answer
}

// Passages returns the retrieved passages in backend rank order
func (s *Session) Passages() []Passage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passages
}

// Disclosure returns the expand/collapse state for the current passages
func (s *Session) Disclosure() *Disclosure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disclosure
}

// ErrorMessage returns the user-facing message of a failed exchange
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// AgentMode reports whether the display-only agent flag is set
func (s *Session) AgentMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentMode
}
