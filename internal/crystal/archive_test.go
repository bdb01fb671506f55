package crystal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestZipUnzipRoundtrip(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "notes.txt"), "hello")
	writeTemp(t, filepath.Join(dir, "logs", "a.log"), "first")
	writeTemp(t, filepath.Join(dir, "logs", "deep", "b.log"), "second")

	gw := &OSGateway{}
	archive := filepath.Join(dir, "backup.zip")

	msg, err := gw.Zip([]string{
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "logs"),
	}, archive)
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS]")
	assert.Contains(t, msg, "3 file(s)")

	dest := filepath.Join(dir, "restored")
	msg, err = gw.Unzip(archive, dest)
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS]")

	got, err := os.ReadFile(filepath.Join(dest, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got, err = os.ReadFile(filepath.Join(dest, "logs", "deep", "b.log"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestZipMissingSourceIsSoft(t *testing.T) {
	dir := t.TempDir()
	gw := &OSGateway{}

	msg, err := gw.Zip([]string{filepath.Join(dir, "nope.txt")}, filepath.Join(dir, "out.zip"))
	require.NoError(t, err)
	assert.Contains(t, msg, "[ERROR] Source not found")
	assert.NoFileExists(t, filepath.Join(dir, "out.zip"))
}

func TestUnzipMissingArchiveIsSoft(t *testing.T) {
	dir := t.TempDir()
	gw := &OSGateway{}

	msg, err := gw.Unzip(filepath.Join(dir, "nope.zip"), dir)
	require.NoError(t, err)
	assert.Contains(t, msg, "[ERROR] Archive not found")
}

func TestZipDirectoryKeepsBaseName(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "proj", "main.txt"), "x")

	gw := &OSGateway{}
	archive := filepath.Join(dir, "proj.zip")
	_, err := gw.Zip([]string{filepath.Join(dir, "proj")}, archive)
	require.NoError(t, err)

	dest := filepath.Join(dir, "out")
	_, err = gw.Unzip(archive, dest)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dest, "proj", "main.txt"))
}
