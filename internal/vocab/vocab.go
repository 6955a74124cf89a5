// Package vocab builds and persists the frequency-ranked token vocabulary.
//
// Ids 0 and 1 are reserved for <PAD> and <OOV>. Learned tokens get dense ids
// from 2 in descending frequency; equal frequencies keep the order in which
// the tokens first appeared in the corpus.
package vocab

import (
	"errors"
	"fmt"
)

const (
	PadToken = "<PAD>"
	OOVToken = "<OOV>"

	PadID = 0
	OOVID = 1

	// Reserved is the number of ids assigned before any learned token.
	Reserved = 2
)

// ErrInvalid is returned by Load when a persisted vocabulary violates the
// id invariants.
var ErrInvalid = errors.New("invalid vocabulary")

// Vocabulary maps tokens to ids. It is read-only once built.
type Vocabulary struct {
	ids    map[string]int
	tokens []string // indexed by id
}

// New returns a vocabulary holding only the reserved entries.
func New() *Vocabulary {
	return &Vocabulary{
		ids:    map[string]int{PadToken: PadID, OOVToken: OOVID},
		tokens: []string{PadToken, OOVToken},
	}
}

// ID returns the id of token and whether it is present.
func (v *Vocabulary) ID(token string) (int, bool) {
	id, ok := v.ids[token]
	return id, ok
}

// Token returns the token with the given id.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.tokens) {
		return "", false
	}

	return v.tokens[id], true
}

// Len returns the number of entries, reserved ones included.
func (v *Vocabulary) Len() int { return len(v.tokens) }

// Tokens returns all tokens ordered by id.
func (v *Vocabulary) Tokens() []string {
	return append([]string(nil), v.tokens...)
}

func (v *Vocabulary) add(token string) {
	v.ids[token] = len(v.tokens)
	v.tokens = append(v.tokens, token)
}

// Build counts every token in corpus and returns a vocabulary of at most
// size entries. A size below Reserved is treated as Reserved.
func Build(corpus [][]string, size int) *Vocabulary {
	counts := NewCounts()
	for _, tokens := range corpus {
		counts.Add(tokens...)
	}

	return FromCounts(counts, size)
}

// FromCounts assigns ids to the ranked tokens of c, keeping at most
// size-Reserved learned tokens. Tokens spelled like a reserved entry are
// skipped so the reserved ids can never be reassigned.
func FromCounts(c *Counts, size int) *Vocabulary {
	v := New()
	for _, tc := range c.Ranked() {
		if v.Len() >= size {
			break
		}
		if _, reserved := v.ids[tc.Token]; reserved {
			continue
		}
		v.add(tc.Token)
	}

	return v
}

func fromTokens(tokens []string) (*Vocabulary, error) {
	if len(tokens) < Reserved || tokens[PadID] != PadToken || tokens[OOVID] != OOVToken {
		return nil, fmt.Errorf("%w: want %s=%d and %s=%d", ErrInvalid, PadToken, PadID, OOVToken, OOVID)
	}

	v := New()
	for id, tok := range tokens[Reserved:] {
		if _, dup := v.ids[tok]; dup {
			return nil, fmt.Errorf("%w: token %q appears twice", ErrInvalid, tok)
		}
		if tok == "" {
			return nil, fmt.Errorf("%w: empty token for id %d", ErrInvalid, id+Reserved)
		}
		v.add(tok)
	}

	return v, nil
}
