package vocab

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Save writes v as a JSON object of token to id, one entry per line in id
// order. The byte layout is stable so the file can be fingerprinted.
func (v *Vocabulary) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("{\n"); err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}
	for id, tok := range v.tokens {
		key, err := marshalKey(tok)
		if err != nil {
			return fmt.Errorf("encode token %q: %w", tok, err)
		}

		sep := ","
		if id == len(v.tokens)-1 {
			sep = ""
		}
		if _, err := fmt.Fprintf(bw, "  %s: %d%s\n", key, id, sep); err != nil {
			return fmt.Errorf("write vocabulary: %w", err)
		}
	}
	if _, err := bw.WriteString("}\n"); err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush vocabulary: %w", err)
	}

	return nil
}

// MarshalJSON encodes v in the same layout as Save.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.Save(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// marshalKey encodes a token as a JSON string without HTML escaping, so
// "<PAD>" is written as-is.
func marshalKey(tok string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tok); err != nil {
		return "", err
	}

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Load reads a vocabulary written by Save or by any producer of a flat JSON
// token-to-id object. Ids must be exactly 0..n-1 with the reserved entries
// in place.
func Load(r io.Reader) (*Vocabulary, error) {
	var raw map[string]int
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}

	tokens := make([]string, len(raw))
	filled := make([]bool, len(raw))
	for tok, id := range raw {
		if id < 0 || id >= len(raw) {
			return nil, fmt.Errorf("%w: id %d for %q outside 0..%d", ErrInvalid, id, tok, len(raw)-1)
		}
		if filled[id] {
			return nil, fmt.Errorf("%w: id %d assigned to both %q and %q", ErrInvalid, id, tokens[id], tok)
		}
		tokens[id] = tok
		filled[id] = true
	}

	return fromTokens(tokens)
}

// UnmarshalJSON decodes v with the validation of Load.
func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	loaded, err := Load(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*v = *loaded

	return nil
}
