package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingFs refuses to create files with the given base name.
type failingFs struct {
	afero.Fs
	failName string
}

var errDiskFull = errors.New("disk full")

func (f failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if filepath.Base(name) == f.failName {
		return nil, errDiskFull
	}
	return f.Fs.OpenFile(name, flag, perm)
}

// renameFailingFs refuses to rename files onto the given destination path.
type renameFailingFs struct {
	afero.Fs
	failPath string
}

func (f renameFailingFs) Rename(oldname, newname string) error {
	if newname == f.failPath {
		return errDiskFull
	}
	return f.Fs.Rename(oldname, newname)
}

func entries(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()

	infos, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)

	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	return names
}

func TestWriteStage(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "out/ml")

	err := s.WriteStage("encoding",
		File{Name: VocabFile, Data: []byte(`{"<PAD>": 0}`)},
		File{Name: LabelMapFile, Data: []byte(`{"0": "timer"}`)},
	)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{VocabFile, LabelMapFile}, entries(t, fs, "out/ml"))

	got, err := s.Read(VocabFile)
	require.NoError(t, err)
	assert.Equal(t, `{"<PAD>": 0}`, string(got))
	assert.True(t, s.Exists(LabelMapFile))
	assert.False(t, s.Exists(ModelFile))
}

func TestWriteStage_Overwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "ml")

	require.NoError(t, s.WriteStage("report", File{Name: ReportFile, Data: []byte("old")}))
	require.NoError(t, s.WriteStage("report", File{Name: ReportFile, Data: []byte("new")}))

	got, err := s.Read(ReportFile)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestWriteStage_FailureLeavesNothing(t *testing.T) {
	fs := failingFs{Fs: afero.NewMemMapFs(), failName: ReportFile}
	s := NewStore(fs, "ml")

	err := s.WriteStage("model",
		File{Name: ModelFile, Data: []byte("blob")},
		File{Name: ReportFile, Data: []byte("{}")},
	)
	require.ErrorIs(t, err, errDiskFull)

	assert.Empty(t, entries(t, fs, "ml"))
}

func TestWriteStage_InstallFailureRestoresPrevious(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, NewStore(mem, "ml").WriteStage("model",
		File{Name: ModelFile, Data: []byte("old model")},
		File{Name: ReportFile, Data: []byte("old report")},
	))

	s := NewStore(renameFailingFs{Fs: mem, failPath: filepath.Join("ml", ReportFile)}, "ml")
	err := s.WriteStage("model",
		File{Name: ModelFile, Data: []byte("new model")},
		File{Name: ReportFile, Data: []byte("new report")},
	)
	require.ErrorIs(t, err, errDiskFull)

	assert.ElementsMatch(t, []string{ModelFile, ReportFile}, entries(t, mem, "ml"))
	for name, want := range map[string]string{ModelFile: "old model", ReportFile: "old report"} {
		got, err := s.Read(name)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), name)
	}
}

func TestWriteStage_InstallFailureWithoutPrevious(t *testing.T) {
	mem := afero.NewMemMapFs()
	s := NewStore(renameFailingFs{Fs: mem, failPath: filepath.Join("ml", ReportFile)}, "ml")

	err := s.WriteStage("model",
		File{Name: ModelFile, Data: []byte("blob")},
		File{Name: ReportFile, Data: []byte("{}")},
	)
	require.ErrorIs(t, err, errDiskFull)

	assert.Empty(t, entries(t, mem, "ml"))
}

func TestWriteStage_ReadOnly(t *testing.T) {
	s := NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "ml")

	err := s.WriteStage("encoding", File{Name: VocabFile, Data: []byte("{}")})
	assert.Error(t, err)
}

func TestWriteStage_RejectsPaths(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "ml")

	for _, name := range []string{"", "../escape.json", "sub/vocab.json"} {
		err := s.WriteStage("encoding", File{Name: name, Data: []byte("{}")})
		assert.Error(t, err, "name %q", name)
	}
}

func TestRemove(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "ml")

	require.NoError(t, s.WriteStage("model", File{Name: ModelFile, Data: []byte("blob")}))
	require.NoError(t, s.Remove(ModelFile))
	assert.False(t, s.Exists(ModelFile))

	// Removing twice is fine.
	assert.NoError(t, s.Remove(ModelFile))
}

func TestRead_Missing(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "ml")

	_, err := s.Read(VocabFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOSStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ml")
	s := NewOSStore(dir)

	require.NoError(t, s.WriteStage("encoding", File{Name: VocabFile, Data: []byte("{}\n")}))

	data, err := os.ReadFile(filepath.Join(dir, VocabFile))
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
	assert.Equal(t, dir, s.Dir())
}

func TestJSON(t *testing.T) {
	data, err := JSON(map[string]any{"model_architecture": "a → b", "note": "<none>"})
	require.NoError(t, err)

	want := "{\n  \"model_architecture\": \"a → b\",\n  \"note\": \"<none>\"\n}\n"
	assert.Equal(t, want, string(data))
}

func TestSHA256(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		SHA256(nil))
}
