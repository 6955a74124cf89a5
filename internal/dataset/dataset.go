// Package dataset turns an intent catalog into shuffled, fixed-length
// encoded samples and their class labels.
package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sourcegraph/conc/iter"

	"github.com/example/go-aeva-intent/internal/augment"
	"github.com/example/go-aeva-intent/internal/catalog"
	"github.com/example/go-aeva-intent/internal/text"
	"github.com/example/go-aeva-intent/internal/vocab"
)

// Options control assembly. Rand drives both augmentation and the final
// shuffle; a seeded generator makes the whole dataset reproducible.
type Options struct {
	Factor    int
	MaxLen    int
	VocabSize int
	Rand      *rand.Rand
	// Workers bounds per-sample normalization and encoding goroutines.
	// Zero or less uses one per CPU.
	Workers int
}

// Dataset holds parallel arrays: row i of Samples has label Labels[i] and
// was encoded from Texts[i].
type Dataset struct {
	Samples []text.EncodedSample
	Labels  []int
	Texts   []string
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Labels) }

// Assembly is the output of Assemble.
type Assembly struct {
	Dataset  Dataset
	Vocab    *vocab.Vocabulary
	LabelMap catalog.LabelMap
	Stats    Stats
}

type normalized struct {
	text   string
	tokens []string
}

// Assemble augments every intent's samples, normalizes and tokenizes them,
// builds the vocabulary from the complete token stream, encodes every row
// against the finished vocabulary and shuffles the rows with one
// permutation.
func Assemble(cat catalog.Catalog, opts Options) (*Assembly, error) {
	if opts.Rand == nil {
		return nil, errors.New("dataset: random source is required")
	}
	if opts.MaxLen <= 0 {
		return nil, fmt.Errorf("dataset: max sequence length must be positive, got %d", opts.MaxLen)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}

	var (
		raw    []string
		labels []int
	)
	for i, intent := range cat.Intents {
		augmented := augment.Augment(intent.Samples, opts.Factor, opts.Rand)
		raw = append(raw, augmented...)
		for range augmented {
			labels = append(labels, i)
		}
	}

	rows := iter.Mapper[string, normalized]{MaxGoroutines: opts.Workers}.Map(raw, func(s *string) normalized {
		n := text.Normalize(*s)
		return normalized{text: n, tokens: text.Tokenize(n)}
	})

	corpus := make([][]string, len(rows))
	for i, row := range rows {
		corpus[i] = row.tokens
	}
	v := vocab.Build(corpus, opts.VocabSize)

	samples := iter.Mapper[normalized, text.EncodedSample]{MaxGoroutines: opts.Workers}.Map(rows, func(row *normalized) text.EncodedSample {
		return text.EncodeTokens(row.tokens, v, opts.MaxLen)
	})

	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.text
	}

	stats, err := computeStats(cat, labels, corpus, opts.MaxLen)
	if err != nil {
		return nil, err
	}

	ds := Dataset{Samples: samples, Labels: labels, Texts: texts}
	ds.Shuffle(opts.Rand)

	return &Assembly{
		Dataset:  ds,
		Vocab:    v,
		LabelMap: cat.LabelMap(),
		Stats:    stats,
	}, nil
}

// Shuffle reorders every parallel array with the same permutation.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	perm := rng.Perm(d.Len())

	samples := make([]text.EncodedSample, len(perm))
	labels := make([]int, len(perm))
	texts := make([]string, len(perm))
	for dst, src := range perm {
		samples[dst] = d.Samples[src]
		labels[dst] = d.Labels[src]
		texts[dst] = d.Texts[src]
	}

	d.Samples, d.Labels, d.Texts = samples, labels, texts
}

// Head returns up to n leading samples, e.g. representative inputs for
// quantization.
func (d *Dataset) Head(n int) []text.EncodedSample {
	return d.Samples[:min(n, len(d.Samples))]
}

// Matrix returns the samples as plain int rows for external consumers.
func (d *Dataset) Matrix() [][]int {
	return toMatrix(d.Samples)
}

func toMatrix(samples []text.EncodedSample) [][]int {
	rows := make([][]int, len(samples))
	for i, s := range samples {
		rows[i] = s
	}
	return rows
}
