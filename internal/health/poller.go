// Package health fetches and classifies backend subsystem checks.
//
// Health is advisory: a failed refresh keeps the last-known snapshot
// and logs, it never becomes an error surface of its own.
package health

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"icc-assistant/internal/api"
)

// CheckStatus classifies one human-readable check string
type CheckStatus int

const (
	// StatusOK means the check reports a healthy subsystem
	StatusOK CheckStatus = iota
	// StatusProblem means the check text signals a fault
	StatusProblem
)

// problemTokens are matched case-sensitively against check strings.
// The backend emits lines like "MongoDB: disconnected (…)",
// "Ollama: unavailable (…)" and "Chroma DB 'chroma.sqlite3': missing".
var problemTokens = []string{"missing", "disconnected", "unavailable"}

// Classify decides ok/problem for one check string by substring match.
// "error" matches case-insensitively.
func Classify(check string) CheckStatus {
	if strings.Contains(strings.ToLower(check), "error") {
		return StatusProblem
	}
	for _, token := range problemTokens {
		if strings.Contains(check, token) {
			return StatusProblem
		}
	}
	return StatusOK
}

// Snapshot is one backend health report, replaced wholesale per poll
type Snapshot struct {
	Checks    []string
	FetchedAt time.Time
}

// Client fetches the backend health report
type Client interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
}

// Poller fetches health snapshots on demand and retains the last-known
// one across failed refreshes
type Poller struct {
	client Client

	mu   sync.Mutex
	last *Snapshot
}

// NewPoller creates a poller with no snapshot yet
func NewPoller(client Client) *Poller {
	return &Poller{client: client}
}

// Refresh fetches a new snapshot. On failure the previous snapshot
// stays in place and the failure is only logged.
func (p *Poller) Refresh(ctx context.Context) {
	resp, err := p.client.Health(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("health refresh failed, keeping last-known snapshot")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = &Snapshot{
		Checks:    resp.Checks,
		FetchedAt: time.Now(),
	}
}

// Last returns the most recent snapshot, or nil before the first
// successful refresh
func (p *Poller) Last() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
