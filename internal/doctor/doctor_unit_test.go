package doctor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseMajorMinor(t *testing.T) {
	tests := []struct {
		name      string
		ver       string
		wantMajor int
		wantMinor int
		wantErr   bool
	}{
		{"simple", "3.11", 3, 11, false},
		{"with patch", "3.11.4", 3, 11, false},
		{"python2", "2.7.18", 2, 7, false},
		{"single number", "3", 0, 0, true},
		{"empty", "", 0, 0, true},
		{"bad major", "abc.11", 0, 0, true},
		{"bad minor", "3.xyz", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			major, minor, err := parseMajorMinor(tt.ver)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseMajorMinor(%q) = (%d,%d,nil); want error", tt.ver, major, minor)
				}

				return
			}

			if err != nil {
				t.Fatalf("parseMajorMinor(%q) error: %v", tt.ver, err)
			}

			if major != tt.wantMajor || minor != tt.wantMinor {
				t.Fatalf("parseMajorMinor(%q) = (%d,%d); want (%d,%d)",
					tt.ver, major, minor, tt.wantMajor, tt.wantMinor)
			}
		})
	}
}

func TestCheckPythonVersion(t *testing.T) {
	tests := []struct {
		name    string
		ver     string
		wantErr bool
	}{
		{"3.9 ok", "3.9.18", false},
		{"3.11 ok", "3.11.4", false},
		{"interpreter banner", "Python 3.12.1", false},
		{"3.13 ok", "3.13.0", false},
		{"too old", "3.8.10", true},
		{"too new", "3.14.0", true},
		{"python2", "Python 2.7.18", true},
		{"not python", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPythonVersion(tt.ver)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkPythonVersion(%q) = %v; wantErr=%v", tt.ver, err, tt.wantErr)
			}
		})
	}
}

func TestCheckWritable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "ml")
	if err := checkWritable(dir); err != nil {
		t.Fatalf("checkWritable(%q) = %v", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}

	if err := checkWritable(""); err == nil {
		t.Error("checkWritable(\"\") = nil; want error")
	}
}
