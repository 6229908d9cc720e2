package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icc-assistant/internal/api"
)

// scriptedClient replays health responses in sequence
type scriptedClient struct {
	responses []*api.HealthResponse
	errs      []error
	call      int
}

func (c *scriptedClient) Health(ctx context.Context) (*api.HealthResponse, error) {
	i := c.call
	c.call++
	return c.responses[i], c.errs[i]
}

func TestRefreshReplacesSnapshotWholesale(t *testing.T) {
	client := &scriptedClient{
		responses: []*api.HealthResponse{
			{Status: "ok", Checks: []string{"MongoDB: connected", "Ollama: running"}},
			{Status: "ok", Checks: []string{"MongoDB: connected"}},
		},
		errs: []error{nil, nil},
	}
	poller := NewPoller(client)

	require.Nil(t, poller.Last(), "no snapshot before the first refresh")

	poller.Refresh(context.Background())
	first := poller.Last()
	require.NotNil(t, first)
	assert.Equal(t, []string{"MongoDB: connected", "Ollama: running"}, first.Checks)

	poller.Refresh(context.Background())
	second := poller.Last()
	assert.Equal(t, []string{"MongoDB: connected"}, second.Checks, "no history retained")
}

func TestFailedRefreshKeepsLastKnownSnapshot(t *testing.T) {
	client := &scriptedClient{
		responses: []*api.HealthResponse{
			{Status: "ok", Checks: []string{"MongoDB: connected"}},
			nil,
		},
		errs: []error{nil, &api.Error{Kind: api.KindConnectivity, Err: errors.New("refused")}},
	}
	poller := NewPoller(client)

	poller.Refresh(context.Background())
	require.NotNil(t, poller.Last())

	poller.Refresh(context.Background())

	snap := poller.Last()
	require.NotNil(t, snap, "health degrades to last-known, never to an error state")
	assert.Equal(t, []string{"MongoDB: connected"}, snap.Checks)
}

func TestFailedFirstRefreshLeavesNoSnapshot(t *testing.T) {
	client := &scriptedClient{
		responses: []*api.HealthResponse{nil},
		errs:      []error{&api.Error{Kind: api.KindTimeout}},
	}
	poller := NewPoller(client)

	poller.Refresh(context.Background())

	assert.Nil(t, poller.Last())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		check string
		want  CheckStatus
	}{
		{"MongoDB: connected", StatusOK},
		{"Ollama: running", StatusOK},
		{"Chroma client: initialized", StatusOK},
		{"Collection 'icc_docs': ready (count=42)", StatusOK},
		{"MongoDB: disconnected (timeout...)", StatusProblem},
		{"Ollama: unavailable (connection refused...)", StatusProblem},
		{"Chroma DB 'chroma.sqlite3': missing", StatusProblem},
		{"Chroma collection error: not found", StatusProblem},
		{"Chroma client ERROR: cannot open", StatusProblem}, // "error" matches case-insensitively
	}

	for _, tt := range tests {
		t.Run(tt.check, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.check))
		})
	}
}
