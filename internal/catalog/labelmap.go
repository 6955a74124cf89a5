package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LabelMap maps class index to intent label. Indices cover 0..n-1.
type LabelMap map[int]string

// Labels returns the labels ordered by index.
func (m LabelMap) Labels() []string {
	labels := make([]string, len(m))
	for i := range labels {
		labels[i] = m[i]
	}
	return labels
}

// Validate checks that indices are exactly 0..n-1 and labels are unique.
func (m LabelMap) Validate() error {
	seen := make(map[string]int, len(m))
	for i := range len(m) {
		label, ok := m[i]
		if !ok {
			return fmt.Errorf("%w: label map has no index %d", ErrInvalid, i)
		}
		if prev, dup := seen[label]; dup {
			return fmt.Errorf("%w: label %q at indices %d and %d", ErrInvalid, label, prev, i)
		}
		seen[label] = i
	}
	return nil
}

// MarshalJSON writes keys as decimal strings in index order, indented two
// spaces: {"0": "timer", "1": "weather"}.
func (m LabelMap) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteString("{")
	for i, label := range m.Labels() {
		value, err := marshalLabel(label)
		if err != nil {
			return nil, fmt.Errorf("encode label %d: %w", i, err)
		}
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "\n  %q: %s", strconv.Itoa(i), value)
	}
	if len(m) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("}")

	return []byte(b.String()), nil
}

// marshalLabel encodes a label as a JSON string without HTML escaping.
func marshalLabel(label string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(label); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON reads the string-keyed form and validates it.
func (m *LabelMap) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(LabelMap, len(raw))
	for key, label := range raw {
		i, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("%w: label map key %q is not an index", ErrInvalid, key)
		}
		out[i] = label
	}
	if err := out.Validate(); err != nil {
		return err
	}

	*m = out
	return nil
}
