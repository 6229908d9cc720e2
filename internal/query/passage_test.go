package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		want     string
	}{
		{"source key wins", map[string]any{"source": "doc1", "file": "other.pdf"}, "doc1"},
		{"file key as fallback", map[string]any{"file": "notes.txt"}, "notes.txt"},
		{"no source metadata", map[string]any{"page": 3}, "unknown"},
		{"nil metadata", nil, "unknown"},
		{"empty source falls through", map[string]any{"source": "", "file": "doc2"}, "doc2"},
		{"non-string scalar source", map[string]any{"source": 42}, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Passage{Metadata: tt.metadata}
			assert.Equal(t, tt.want, p.SourceLabel())
		})
	}
}

func TestFormatDistanceFixedPrecision(t *testing.T) {
	assert.Equal(t, "0.1200", Passage{Distance: 0.12}.FormatDistance())
	assert.Equal(t, "0.0000", Passage{}.FormatDistance())
	assert.Equal(t, "1.2346", Passage{Distance: 1.23456}.FormatDistance())
}

func TestMetadataLinesSortedByKey(t *testing.T) {
	p := Passage{Metadata: map[string]any{
		"source": "doc1",
		"page":   7,
		"lang":   "fr",
	}}

	assert.Equal(t, []string{"lang=fr", "page=7", "source=doc1"}, p.MetadataLines())
}

func TestMetadataLinesEmpty(t *testing.T) {
	assert.Empty(t, Passage{}.MetadataLines())
}
