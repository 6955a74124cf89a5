// Package augment expands a small labeled sample set into a larger, noisier
// training set with randomized text transformations.
package augment

import (
	"strings"

	"github.com/example/go-aeva-intent/internal/text"
)

// Source is the randomness Augment draws from. *rand.Rand from math/rand/v2
// satisfies it; seeding it makes augmentation reproducible.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// Transformation thresholds on a uniform draw r in [0,1).
const (
	wrapBelow = 0.3 // r < 0.3: prefix + sample + suffix
	dropBelow = 0.5 // r < 0.5: drop one word when more than two
	swapBelow = 0.7 // r < 0.7: swap two adjacent words
)

// Prefixes and Suffixes wrap a sample; both include the empty string.
var (
	Prefixes = []string{
		"", "please ", "can you ", "hey aeva ", "aeva ",
		"could you ", "i want to ", "i need to ",
		"help me ", "go ahead and ",
	}
	Suffixes = []string{"", " please", " now", " for me", " right now"}
)

// Augment returns samples unchanged followed by factor variants of each
// sample, grouped per sample in input order. The output length is
// len(samples) * (factor + 1). A negative factor is treated as zero.
func Augment(samples []string, factor int, rng Source) []string {
	factor = max(factor, 0)

	out := make([]string, 0, len(samples)*(factor+1))
	out = append(out, samples...)
	for _, sample := range samples {
		for range factor {
			out = append(out, Variant(sample, rng))
		}
	}

	return out
}

// Variant applies exactly one randomly chosen transformation to sample and
// trims the result. Draw order: r, then the transformation's own draws.
func Variant(sample string, rng Source) string {
	variant := sample

	switch r := rng.Float64(); {
	case r < wrapBelow:
		prefix := Prefixes[rng.IntN(len(Prefixes))]
		suffix := Suffixes[rng.IntN(len(Suffixes))]
		variant = prefix + sample + suffix
	case r < dropBelow:
		if words := text.Tokenize(sample); len(words) > 2 {
			i := rng.IntN(len(words))
			words = append(words[:i], words[i+1:]...)
			variant = strings.Join(words, " ")
		}
	case r < swapBelow:
		if words := text.Tokenize(sample); len(words) > 1 {
			i := rng.IntN(len(words) - 1)
			words[i], words[i+1] = words[i+1], words[i]
			variant = strings.Join(words, " ")
		}
	}

	return text.TrimSpace(variant)
}
