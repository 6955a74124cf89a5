// Package doctor provides environment preflight checks for aeva-intent.
package doctor

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/go-aeva-intent/internal/catalog"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// PythonVersion returns the interpreter version (e.g. "Python 3.11.4").
	PythonVersion VersionFunc
	// TensorFlow reports whether the interpreter can import tensorflow.
	TensorFlow func() error
	// SkipTrainer skips the Python checks when model training is disabled.
	SkipTrainer bool
	// ScriptPath is the training helper script.
	ScriptPath string
	// DataPath is the intent catalog to validate.
	DataPath string
	// OutputDir must be creatable and writable.
	OutputDir string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- Python tooling ---------------------------------------------------
	if cfg.SkipTrainer {
		fmt.Fprintf(w, "%s python: skipped (training disabled)\n", PassMark)
		fmt.Fprintf(w, "%s tensorflow: skipped (training disabled)\n", PassMark)
	} else {
		checkPython(cfg, w, &res)
	}

	// ---- training data ----------------------------------------------------
	if cat, err := catalog.Load(cfg.DataPath); err != nil {
		res.fail(fmt.Sprintf("training data: %v", err))
		fmt.Fprintf(w, "%s training data %s: %v\n", FailMark, cfg.DataPath, err)
	} else {
		fmt.Fprintf(w, "%s training data: %s (%d intents, %d samples)\n",
			PassMark, cfg.DataPath, cat.NumClasses(), cat.NumSamples())
	}

	// ---- output directory -------------------------------------------------
	if err := checkWritable(cfg.OutputDir); err != nil {
		res.fail(fmt.Sprintf("output dir: %v", err))
		fmt.Fprintf(w, "%s output dir %s: not writable (%v)\n", FailMark, cfg.OutputDir, err)
	} else {
		fmt.Fprintf(w, "%s output dir: %s\n", PassMark, cfg.OutputDir)
	}

	return res
}

func checkPython(cfg Config, w io.Writer, res *Result) {
	pyVer, err := cfg.PythonVersion()
	if err != nil {
		res.fail(fmt.Sprintf("python version: %v", err))
		fmt.Fprintf(w, "%s python version: not found (%v)\n", FailMark, err)
	} else if pyErr := checkPythonVersion(pyVer); pyErr != nil {
		res.fail(fmt.Sprintf("python version: %v", pyErr))
		fmt.Fprintf(w, "%s python version %s: %v\n", FailMark, pyVer, pyErr)
	} else {
		fmt.Fprintf(w, "%s python version: %s\n", PassMark, pyVer)
	}

	if err := cfg.TensorFlow(); err != nil {
		res.fail(fmt.Sprintf("tensorflow: %v", err))
		fmt.Fprintf(w, "%s tensorflow: %v\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s tensorflow: importable\n", PassMark)
	}

	if _, err := os.Stat(cfg.ScriptPath); err != nil {
		res.fail(fmt.Sprintf("training script %q: %v", cfg.ScriptPath, err))
		fmt.Fprintf(w, "%s training script %s: not found\n", FailMark, cfg.ScriptPath)
	} else {
		fmt.Fprintf(w, "%s training script: %s\n", PassMark, cfg.ScriptPath)
	}
}

func checkWritable(dir string) error {
	if dir == "" {
		return fmt.Errorf("not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, ".doctor-")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()

	return os.Remove(name)
}

// checkPythonVersion returns an error if ver is outside [3.9, 3.14), the
// range TensorFlow publishes wheels for. A leading "Python " is ignored.
func checkPythonVersion(ver string) error {
	ver = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ver), "Python"))
	major, minor, err := parseMajorMinor(ver)
	if err != nil {
		return fmt.Errorf("cannot parse %q: %w", ver, err)
	}
	if major != 3 {
		return fmt.Errorf("requires Python 3, got %d", major)
	}
	if minor < 9 {
		return fmt.Errorf("requires Python >=3.9, got 3.%d", minor)
	}
	if minor >= 14 {
		return fmt.Errorf("requires Python <3.14, got 3.%d", minor)
	}
	return nil
}

func parseMajorMinor(ver string) (major, minor int, err error) {
	parts := strings.SplitN(ver, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("unexpected version format %q", ver)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad major in %q: %w", ver, err)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad minor in %q: %w", ver, err)
	}
	return major, minor, nil
}
