package persist_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stock-watch/internal/persist"
)

func TestFile_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	f := persist.NewFile(filepath.Join(t.TempDir(), "stocks.json"))
	input := []string{"600519", "NVDA"}

	require.NoError(t, f.Save(input))
	output, err := f.Load()
	require.NoError(t, err)
	require.Equal(t, input, output)
}

func TestFile_WritesDocumentedSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "stocks.json")
	f := persist.NewFile(path)
	require.NoError(t, f.Save([]string{"x105.NVDA", "00700"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"stocks":[{"code":"x105.NVDA"},{"code":"00700"}]}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file left behind")
}

func TestFile_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	f := persist.NewFile(filepath.Join(t.TempDir(), "absent.json"))
	codes, err := f.Load()
	require.NoError(t, err)
	require.Empty(t, codes)
}

func TestFile_MalformedFileIsReported(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stocks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o644))

	codes, err := persist.NewFile(path).Load()
	require.Nil(t, codes)

	var pe *persist.Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "parse", pe.Op)
	require.Equal(t, path, pe.Path)
}

func TestFile_SaveFailureIsReported(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := persist.NewFile(filepath.Join(blocker, "stocks.json")).Save([]string{"NVDA"})
	var pe *persist.Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "write", pe.Op)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(persist.PathEnv, "/tmp/custom-stocks.json")
	p, err := persist.DefaultPath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom-stocks.json", p)

	t.Setenv(persist.PathEnv, "")
	t.Setenv("HOME", "/home/tester")
	p, err = persist.DefaultPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/tester", persist.DefaultFileName), p)
}
