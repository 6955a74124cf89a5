// Package catalog loads the labeled intent examples that seed training.
//
// The position of an intent in the catalog is its class index.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every catalog validation failure.
var ErrInvalid = errors.New("invalid intent catalog")

// Format selects the catalog decoder.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// LabeledIntent is one intent and its example utterances.
type LabeledIntent struct {
	Label   string   `json:"label"   yaml:"label"`
	Samples []string `json:"samples" yaml:"samples"`
}

// Catalog is the ordered list of intents; Intents[i] has class index i.
type Catalog struct {
	Intents []LabeledIntent `json:"intents" yaml:"intents"`
}

// FormatFromPath picks the decoder from the file extension; anything that
// is not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates the catalog at path.
func Load(path string) (Catalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open training data: %w", err)
	}
	defer fh.Close()

	cat, err := Decode(fh, FormatFromPath(path))
	if err != nil {
		return Catalog{}, fmt.Errorf("load %s: %w", path, err)
	}

	return cat, nil
}

// Decode reads a catalog in the given format and validates it.
func Decode(r io.Reader, format Format) (Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	var cat Catalog
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return Catalog{}, fmt.Errorf("%w: decode yaml: %w", ErrInvalid, err)
		}
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return Catalog{}, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		if err := json.Unmarshal(data, &cat); err != nil {
			return Catalog{}, fmt.Errorf("%w: decode json: %w", ErrInvalid, err)
		}
	default:
		return Catalog{}, fmt.Errorf("unknown catalog format %q", format)
	}

	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}

	return cat, nil
}

// Validate reports every structural problem at once: no intents, empty or
// duplicate labels, and intents without samples.
func (c Catalog) Validate() error {
	if len(c.Intents) == 0 {
		return fmt.Errorf("%w: no intents", ErrInvalid)
	}

	var errs error
	seen := make(map[string]int, len(c.Intents))
	for i, intent := range c.Intents {
		label := strings.TrimSpace(intent.Label)
		switch {
		case label == "":
			errs = multierr.Append(errs, fmt.Errorf("intent %d: empty label", i))
		case seen[label] > 0:
			errs = multierr.Append(errs, fmt.Errorf("intent %d: label %q duplicates intent %d", i, label, seen[label]-1))
		default:
			seen[label] = i + 1
		}

		if len(intent.Samples) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("intent %d (%q): no samples", i, intent.Label))
		}
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, errs)
	}

	return nil
}

// NumClasses is the number of intents.
func (c Catalog) NumClasses() int { return len(c.Intents) }

// NumSamples is the total number of unaugmented samples.
func (c Catalog) NumSamples() int {
	n := 0
	for _, intent := range c.Intents {
		n += len(intent.Samples)
	}
	return n
}

// LabelMap derives the class-index to label mapping.
func (c Catalog) LabelMap() LabelMap {
	m := make(LabelMap, len(c.Intents))
	for i, intent := range c.Intents {
		m[i] = intent.Label
	}
	return m
}
