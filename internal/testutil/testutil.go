// Package testutil provides shared skip helpers and fakes for tests that
// touch the Python training tooling.
//
// Each Require helper calls t.Skip with a clear human-readable reason when
// the named prerequisite is absent, so integration tests remain runnable in
// partial environments without failing noisily.
//
// Typical usage:
//
//	func TestTrainIntegration(t *testing.T) {
//	    testutil.RequireTensorFlow(t)
//	    ...
//	}
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// PythonEnv names the variable that overrides the interpreter used by
// integration tests.
const PythonEnv = "AEVA_TRAINER_PYTHON_BIN"

// Python returns the interpreter integration tests should use.
func Python() string {
	if p := os.Getenv(PythonEnv); p != "" {
		return p
	}
	return "python3"
}

// RequirePython skips the test if no Python interpreter is found in PATH or
// at the path given by AEVA_TRAINER_PYTHON_BIN.
func RequirePython(tb testing.TB) {
	tb.Helper()

	if _, err := exec.LookPath(Python()); err != nil {
		tb.Skipf("python interpreter not available (%q not in PATH); set %s to override", Python(), PythonEnv)
	}
}

// RequireTensorFlow skips the test unless the interpreter can import
// tensorflow.
func RequireTensorFlow(tb testing.TB) {
	tb.Helper()

	RequirePython(tb)

	if err := exec.Command(Python(), "-c", "import tensorflow").Run(); err != nil {
		tb.Skipf("tensorflow not importable by %s: %v", Python(), err)
	}
}

// FakeModel is the blob written by the interpreter from FakePython on
// export.
const FakeModel = "TFL3-fake-intent-model"

const fakePythonScript = `#!/bin/sh
case "$1" in
  -c) exit 0 ;;
  --version) echo "Python 3.11.9"; exit 0 ;;
esac
cmd="$2"
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --result|--output) out="$2"; shift ;;
  esac
  shift
done
case "$cmd" in
  fit) printf '%s' '{"history":{"accuracy":[0.5,0.9],"val_accuracy":[0.4,0.85],"loss":[1.2,0.3],"val_loss":[1.3,0.4]}}' > "$out" ;;
  evaluate) printf '%s' '{"loss":0.25,"accuracy":0.93}' > "$out" ;;
  export) printf '%s' '` + FakeModel + `' > "$out" ;;
  *) echo "unknown command: $cmd" >&2; exit 2 ;;
esac
`

// FakePython writes a POSIX shell stand-in for the Python interpreter that
// answers the tensorflow probe and the training script protocol with canned
// results. It returns the interpreter path and an existing script path.
func FakePython(tb testing.TB) (bin, script string) {
	tb.Helper()

	if runtime.GOOS == "windows" {
		tb.Skip("fake interpreter needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		tb.Skip("fake interpreter needs sh in PATH")
	}

	dir := tb.TempDir()
	bin = filepath.Join(dir, "python3")
	if err := os.WriteFile(bin, []byte(fakePythonScript), 0o755); err != nil {
		tb.Fatalf("write fake python: %v", err)
	}

	script = filepath.Join(dir, "intent_model.py")
	if err := os.WriteFile(script, []byte("# fake\n"), 0o644); err != nil {
		tb.Fatalf("write fake script: %v", err)
	}

	return bin, script
}

// MissingPython returns an interpreter path that cannot exist.
func MissingPython(tb testing.TB) string {
	tb.Helper()
	return filepath.Join(tb.TempDir(), "no-such-python")
}
