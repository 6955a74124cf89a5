package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const defaultPython = "python3"

// Python trains and exports through a helper script run by a Python
// interpreter with TensorFlow installed. The script speaks a file protocol:
//
//	<script> fit      --request req.json --model-dir dir --result out.json
//	<script> evaluate --request req.json --model-dir dir --result out.json
//	<script> export   --request req.json --model-dir dir --output model.tflite
type Python struct {
	// Bin is the interpreter; empty means python3 from PATH.
	Bin    string
	Script string
	// WorkDir receives the per-model scratch directories; empty means the
	// system temp dir.
	WorkDir string
	Stdout  io.Writer
	Stderr  io.Writer
}

var (
	_ Trainer  = (*Python)(nil)
	_ Exporter = (*Python)(nil)
)

func (p *Python) python() string {
	if p.Bin == "" {
		return defaultPython
	}
	return p.Bin
}

// Probe checks that the interpreter exists and can import tensorflow. Every
// failure wraps ErrUnavailable.
func (p *Python) Probe(ctx context.Context) error {
	bin, err := exec.LookPath(p.python())
	if err != nil {
		return fmt.Errorf("%w: python interpreter %q not found: %w", ErrUnavailable, p.python(), err)
	}

	var stderr bytes.Buffer
	check := exec.CommandContext(ctx, bin, "-c", "import tensorflow")
	check.Stdout = io.Discard
	check.Stderr = &stderr
	if err := check.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: tensorflow not importable by %s: %s", ErrUnavailable, bin, lastLine(stderr.String()))
	}

	return nil
}

// Version returns the interpreter's version string, e.g. "Python 3.11.4".
func (p *Python) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, p.python(), "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s --version: %w", p.python(), err)
	}
	return strings.TrimSpace(string(out)), nil
}

type fitRequest struct {
	Hyperparameters Hyperparameters `json:"hyperparameters"`
	X               [][]int         `json:"x"`
	Y               []int           `json:"y"`
}

type fitResult struct {
	History History `json:"history"`
}

func (p *Python) Fit(ctx context.Context, X [][]int, y []int, hp Hyperparameters) (TrainedModel, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("fit: %d samples but %d labels", len(X), len(y))
	}
	if err := p.Probe(ctx); err != nil {
		return nil, err
	}

	script, err := resolveScriptPath(p.Script)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	dir, err := os.MkdirTemp(p.WorkDir, "aeva-model-")
	if err != nil {
		return nil, fmt.Errorf("create model work dir: %w", err)
	}

	m := &pythonModel{py: p, script: script, dir: dir}

	var res fitResult
	err = m.call(ctx, "fit", fitRequest{Hyperparameters: hp, X: X, Y: y}, "--result", &res)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	m.history = res.History

	return m, nil
}

type exportRequest struct {
	Representative [][]int `json:"representative"`
}

func (p *Python) Export(ctx context.Context, tm TrainedModel, representative [][]int) ([]byte, error) {
	m, ok := tm.(*pythonModel)
	if !ok {
		return nil, fmt.Errorf("export: model %T was not trained by this exporter", tm)
	}

	if err := m.call(ctx, "export", exportRequest{Representative: representative}, "--output", nil); err != nil {
		return nil, err
	}

	blob, err := os.ReadFile(m.outPath("export"))
	if err != nil {
		return nil, fmt.Errorf("read exported model: %w", err)
	}
	if len(blob) == 0 {
		return nil, errors.New("export produced an empty model")
	}

	return blob, nil
}

type pythonModel struct {
	py      *Python
	script  string
	dir     string
	history History
}

type evaluateRequest struct {
	X [][]int `json:"x"`
	Y []int   `json:"y"`
}

type evaluateResult struct {
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`
}

func (m *pythonModel) Evaluate(ctx context.Context, X [][]int, y []int) (float64, float64, error) {
	var res evaluateResult
	if err := m.call(ctx, "evaluate", evaluateRequest{X: X, Y: y}, "--result", &res); err != nil {
		return 0, 0, err
	}
	return res.Loss, res.Accuracy, nil
}

func (m *pythonModel) History() History { return m.history }

// Close removes the saved model and request files.
func (m *pythonModel) Close() error {
	return os.RemoveAll(m.dir)
}

func (m *pythonModel) outPath(command string) string {
	if command == "export" {
		return filepath.Join(m.dir, "model.tflite")
	}
	return filepath.Join(m.dir, command+".result.json")
}

// call writes req, runs one script command and decodes its JSON result into
// res when res is non-nil.
func (m *pythonModel) call(ctx context.Context, command string, req any, outFlag string, res any) error {
	reqPath := filepath.Join(m.dir, command+".request.json")
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", command, err)
	}
	if err := os.WriteFile(reqPath, data, 0o600); err != nil {
		return fmt.Errorf("write %s request: %w", command, err)
	}

	outPath := m.outPath(command)
	args := []string{
		m.script, command,
		"--request", reqPath,
		"--model-dir", filepath.Join(m.dir, "saved_model"),
		outFlag, outPath,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.py.python(), args...)
	cmd.Stdout = writerOr(m.py.Stdout)
	cmd.Stderr = io.MultiWriter(&stderr, writerOr(m.py.Stderr))

	slog.Debug("running model helper", "command", command, "python", m.py.python(), "script", m.script)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("model %s: %w", command, ctx.Err())
		}
		return fmt.Errorf("model %s: %w: %s", command, err, lastLine(stderr.String()))
	}

	if res == nil {
		return nil
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return fmt.Errorf("read %s result: %w", command, err)
	}
	if err := json.Unmarshal(out, res); err != nil {
		return fmt.Errorf("decode %s result: %w", command, err)
	}

	return nil
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// resolveScriptPath finds rel relative to the working directory or, for
// tests run from a package directory, the module root two levels up.
func resolveScriptPath(rel string) (string, error) {
	if rel == "" {
		return "", errors.New("script path is required")
	}
	if filepath.IsAbs(rel) {
		if _, err := os.Stat(rel); err != nil {
			return "", fmt.Errorf("script %q: %w", rel, err)
		}
		return rel, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	paths := []string{
		filepath.Join(cwd, rel),
		filepath.Join(cwd, "..", "..", rel),
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return filepath.Clean(p), nil
		}
	}

	return "", fmt.Errorf("script %q not found from %s", rel, cwd)
}
