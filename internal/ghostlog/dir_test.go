package ghostlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/fsutil"
)

func TestWriteRead_Directory(t *testing.T) {
	rec := sampleRecording(t, 5, 4)
	dir := filepath.Join(t.TempDir(), "best"+DirExtension)

	written, err := Write(dir, rec, "run-42")
	require.NoError(t, err)
	assert.Equal(t, dir, written)
	assert.FileExists(t, filepath.Join(dir, "header.json"))
	assert.FileExists(t, filepath.Join(dir, "laps.bin"))

	h, got, err := Read(dir)
	require.NoError(t, err)

	assert.Equal(t, "run-42", h.RunID)
	assert.Equal(t, "oval", h.Track)
	assert.Equal(t, 10*time.Millisecond, h.Interval())
	assert.Equal(t, []int{5, 4}, h.LapSamples)
	assert.Equal(t, 9, h.TotalSamples)
	assert.InDelta(t, 0.09, h.DurationSec, 1e-9)

	if diff := cmp.Diff(lapsOf(rec), lapsOf(got)); diff != "" {
		t.Errorf("laps mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_DefaultsToTempDir(t *testing.T) {
	dir, err := Write("", sampleRecording(t, 1), "")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	assert.Equal(t, DirExtension, filepath.Ext(dir))
	assert.DirExists(t, dir)
}

func TestRead_MissingHeader(t *testing.T) {
	_, _, err := Read(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read header")
}

func TestRead_HeaderMismatch(t *testing.T) {
	dir, err := Write(t.TempDir(), sampleRecording(t, 3), "")
	require.NoError(t, err)

	hdr := filepath.Join(dir, "header.json")
	data, err := os.ReadFile(hdr)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(hdr, []byte(string(data[:len(data)-1])+`,"track":"valley"}`), 0644))

	_, _, err = Read(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestWriteReadFS_Memory(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	rec := sampleRecording(t, 2, 3)

	dir, err := WriteFS(mem, "/ghosts/oval"+DirExtension, rec, "run-7")
	require.NoError(t, err)
	assert.Equal(t, []string{"/ghosts/oval.ghostlog/header.json", "/ghosts/oval.ghostlog/laps.bin"}, mem.Files())

	h, got, err := ReadFS(mem, dir)
	require.NoError(t, err)
	assert.Equal(t, "run-7", h.RunID)
	if diff := cmp.Diff(lapsOf(rec), lapsOf(got)); diff != "" {
		t.Errorf("laps mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFS_MissingLaps(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	require.NoError(t, mem.MkdirAll("/g", 0755))
	require.NoError(t, mem.WriteFile("/g/header.json", []byte(`{"track":"oval"}`), 0644))

	_, _, err := ReadFS(mem, "/g")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open lap file")
}
