package query

import (
	"fmt"
	"sort"

	"icc-assistant/internal/api"
)

// Passage is one retrieved supporting fragment. Immutable once
// received; owned by the query that produced it.
type Passage struct {
	Text     string
	Distance float64
	Metadata map[string]any
}

// passagesFromContexts converts the wire contexts verbatim, keeping the
// backend's retrieval-rank order
func passagesFromContexts(contexts []api.Context) []Passage {
	passages := make([]Passage, len(contexts))
	for i, ctx := range contexts {
		passages[i] = Passage{
			Text:     ctx.Text,
			Distance: ctx.Distance,
			Metadata: ctx.Metadata,
		}
	}
	return passages
}

// SourceLabel derives a display label from the passage metadata:
// "source", then "file", then "unknown"
func (p Passage) SourceLabel() string {
	for _, key := range []string{"source", "file"} {
		if v, ok := p.Metadata[key]; ok {
			if label := fmt.Sprint(v); label != "" {
				return label
			}
		}
	}
	return "unknown"
}

// FormatDistance renders the similarity distance at fixed precision
func (p Passage) FormatDistance() string {
	return fmt.Sprintf("%.4f", p.Distance)
}

// MetadataLines renders every metadata entry as "key=value", sorted by
// key for stable output
func (p Passage) MetadataLines() []string {
	keys := make([]string, 0, len(p.Metadata))
	for key := range p.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s=%v", key, p.Metadata[key]))
	}
	return lines
}
