// Package artifact writes pipeline outputs into the output directory.
//
// Files belonging to one stage are staged in a temporary directory next to
// their destination and renamed into place only after every file of the
// stage was written. Files they replace are parked in the staging directory
// until the last rename succeeds; if any rename fails, the files already
// installed are removed and the parked ones are restored, so a failed stage
// leaves the previous output as it was.
package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

const (
	VocabFile    = "vocab.json"
	LabelMapFile = "label_map.json"
	ReportFile   = "training_report.json"
	ModelFile    = "intent_model.tflite"
)

// File is one named output of a stage.
type File struct {
	Name string
	Data []byte
}

// Store writes and reads artifacts below a directory of an afero filesystem.
type Store struct {
	fs  afero.Fs
	dir string
}

func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// NewOSStore returns a Store backed by the operating system filesystem.
func NewOSStore(dir string) *Store {
	return NewStore(afero.NewOsFs(), dir)
}

func (s *Store) Dir() string { return s.dir }

// Path returns the destination path of the named artifact.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// WriteStage writes files as one unit. Names must be plain file names.
func (s *Store) WriteStage(stage string, files ...File) (err error) {
	for _, f := range files {
		if f.Name == "" || filepath.Base(f.Name) != f.Name {
			return fmt.Errorf("stage %s: invalid artifact name %q", stage, f.Name)
		}
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("stage %s: create output dir: %w", stage, err)
	}

	tmp, err := afero.TempDir(s.fs, s.dir, ".stage-"+stage+"-")
	if err != nil {
		return fmt.Errorf("stage %s: create staging dir: %w", stage, err)
	}
	defer func() {
		if rmErr := s.fs.RemoveAll(tmp); rmErr != nil && err == nil {
			err = fmt.Errorf("stage %s: remove staging dir: %w", stage, rmErr)
		}
	}()

	for _, f := range files {
		if err := afero.WriteFile(s.fs, filepath.Join(tmp, f.Name), f.Data, 0o644); err != nil {
			return fmt.Errorf("stage %s: write %s: %w", stage, f.Name, err)
		}
	}

	if err := s.install(tmp, files); err != nil {
		return fmt.Errorf("stage %s: %w", stage, err)
	}

	return nil
}

// install renames the staged files into place, rolling back on failure.
func (s *Store) install(tmp string, files []File) error {
	prev := filepath.Join(tmp, ".prev")
	if err := s.fs.Mkdir(prev, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	var installed, parked []string
	rollback := func(cause error) error {
		errs := []error{cause}
		for _, name := range installed {
			if err := s.fs.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
				errs = append(errs, fmt.Errorf("roll back %s: %w", name, err))
			}
		}
		for _, name := range parked {
			if err := s.fs.Rename(filepath.Join(prev, name), s.Path(name)); err != nil {
				errs = append(errs, fmt.Errorf("restore %s: %w", name, err))
			}
		}
		return multierr.Combine(errs...)
	}

	for _, f := range files {
		dst := s.Path(f.Name)
		if _, err := s.fs.Stat(dst); err == nil {
			if err := s.fs.Rename(dst, filepath.Join(prev, f.Name)); err != nil {
				return rollback(fmt.Errorf("park %s: %w", f.Name, err))
			}
			parked = append(parked, f.Name)
		}
		if err := s.fs.Rename(filepath.Join(tmp, f.Name), dst); err != nil {
			return rollback(fmt.Errorf("install %s: %w", f.Name, err))
		}
		installed = append(installed, f.Name)
	}

	return nil
}

// Read returns the content of the named artifact.
func (s *Store) Read(name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", name, err)
	}
	return data, nil
}

// Exists reports whether the named artifact is present.
func (s *Store) Exists(name string) bool {
	_, err := s.fs.Stat(s.Path(name))
	return err == nil
}

// Remove deletes the named artifact; a missing artifact is not an error.
func (s *Store) Remove(name string) error {
	if err := s.fs.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact %s: %w", name, err)
	}
	return nil
}

// JSON encodes v indented by two spaces with a trailing newline. HTML
// characters are written unescaped.
func JSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SHA256 returns the lowercase hex sha256 of data.
func SHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
