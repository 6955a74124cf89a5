package dataset

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/example/go-aeva-intent/internal/catalog"
)

// Stats summarizes the assembled corpus. Token lengths are measured before
// padding or truncation, so Truncated counts rows that lost tokens.
type Stats struct {
	PerIntent  map[string]int `json:"per_intent"`
	MeanTokens float64        `json:"mean_tokens"`
	P95Tokens  float64        `json:"p95_tokens"`
	MaxTokens  int            `json:"max_tokens"`
	Truncated  int            `json:"truncated"`
}

func computeStats(cat catalog.Catalog, labels []int, corpus [][]string, maxLen int) (Stats, error) {
	s := Stats{PerIntent: make(map[string]int, cat.NumClasses())}
	for _, label := range labels {
		s.PerIntent[cat.Intents[label].Label]++
	}

	lengths := make(stats.Float64Data, len(corpus))
	for i, tokens := range corpus {
		lengths[i] = float64(len(tokens))
		s.MaxTokens = max(s.MaxTokens, len(tokens))
		if len(tokens) > maxLen {
			s.Truncated++
		}
	}

	var err error
	if s.MeanTokens, err = lengths.Mean(); err != nil {
		return Stats{}, fmt.Errorf("token length mean: %w", err)
	}
	if s.P95Tokens, err = lengths.Percentile(95); err != nil {
		return Stats{}, fmt.Errorf("token length p95: %w", err)
	}

	return s, nil
}
