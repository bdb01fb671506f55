package crystal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptAll(string) bool  { return true }
func declineAll(string) bool { return false }

func TestCopyFileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "a.txt"), "contents")
	writeTemp(t, filepath.Join(dir, "tree", "sub", "b.txt"), "nested")

	gw := &OSGateway{Confirm: declineAll}

	msg, err := gw.Copy(filepath.Join(dir, "a.txt"), filepath.Join(dir, "a2.txt"), false)
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS] Copied file")

	got, err := os.ReadFile(filepath.Join(dir, "a2.txt"))
	require.NoError(t, err)
	assert.Equal(t, "contents", string(got))

	msg, err = gw.Copy(filepath.Join(dir, "tree"), filepath.Join(dir, "tree2"), false)
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS] Copied directory")
	assert.FileExists(t, filepath.Join(dir, "tree2", "sub", "b.txt"))
}

func TestCopyMissingSourceIsSoft(t *testing.T) {
	dir := t.TempDir()
	gw := &OSGateway{}

	msg, err := gw.Copy(filepath.Join(dir, "ghost.txt"), filepath.Join(dir, "out.txt"), false)
	require.NoError(t, err)
	assert.Contains(t, msg, "[ERROR] Source not found")
}

func TestCopyOverwriteDeclined(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "src.txt"), "new")
	writeTemp(t, filepath.Join(dir, "dst.txt"), "old")

	gw := &OSGateway{Confirm: declineAll}
	msg, err := gw.Copy(filepath.Join(dir, "src.txt"), filepath.Join(dir, "dst.txt"), false)
	require.NoError(t, err)
	assert.Contains(t, msg, "[CANCELLED]")

	got, _ := os.ReadFile(filepath.Join(dir, "dst.txt"))
	assert.Equal(t, "old", string(got))
}

func TestCopyForceSkipsConfirmation(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "src.txt"), "new")
	writeTemp(t, filepath.Join(dir, "dst.txt"), "old")

	gw := &OSGateway{Confirm: declineAll}
	msg, err := gw.Copy(filepath.Join(dir, "src.txt"), filepath.Join(dir, "dst.txt"), true)
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS]")

	got, _ := os.ReadFile(filepath.Join(dir, "dst.txt"))
	assert.Equal(t, "new", string(got))
}

func TestMoveRenames(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "from.txt"), "data")

	gw := &OSGateway{Confirm: acceptAll}
	msg, err := gw.Move(filepath.Join(dir, "from.txt"), filepath.Join(dir, "to.txt"), false)
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS] Moved")
	assert.NoFileExists(t, filepath.Join(dir, "from.txt"))
	assert.FileExists(t, filepath.Join(dir, "to.txt"))
}

func TestDeleteConfirmedAndDeclined(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "doomed.txt"), "x")

	gw := &OSGateway{Confirm: declineAll}
	msg, err := gw.Delete(filepath.Join(dir, "doomed.txt"), false)
	require.NoError(t, err)
	assert.Contains(t, msg, "[CANCELLED]")
	assert.FileExists(t, filepath.Join(dir, "doomed.txt"))

	gw.Confirm = acceptAll
	msg, err = gw.Delete(filepath.Join(dir, "doomed.txt"), false)
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS] Deleted file")
	assert.NoFileExists(t, filepath.Join(dir, "doomed.txt"))
}

func TestDeleteDirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "junk", "inner", "f.txt"), "x")

	gw := &OSGateway{}
	msg, err := gw.Delete(filepath.Join(dir, "junk"), true)
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS] Deleted directory")
	assert.NoDirExists(t, filepath.Join(dir, "junk"))
}

func TestCreateFileAndFolder(t *testing.T) {
	dir := t.TempDir()
	gw := &OSGateway{}

	msg, err := gw.CreateFile(filepath.Join(dir, "new.txt"))
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS] Created file")

	msg, err = gw.CreateFile(filepath.Join(dir, "new.txt"))
	require.NoError(t, err)
	assert.Contains(t, msg, "[ERROR] Already exists")

	msg, err = gw.CreateFolder(filepath.Join(dir, "sub", "deep"))
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS] Created folder")
	assert.DirExists(t, filepath.Join(dir, "sub", "deep"))
}

func TestWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	gw := &OSGateway{}

	msg, err := gw.WriteFile(filepath.Join(dir, "a", "b", "c.txt"), "body", false)
	require.NoError(t, err)
	assert.Contains(t, msg, "[SUCCESS]")

	got, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "body", string(got))
}

func TestListFiltersAndFormats(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "z.txt"), "")
	writeTemp(t, filepath.Join(dir, "a.txt"), "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "docs"), 0755))

	gw := &OSGateway{}

	out, err := gw.List(dir, ListFiles)
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "z.txt")
	assert.NotContains(t, out, "docs/")
	assert.Contains(t, out, "Total: 2 item(s)")

	out, err = gw.List(dir, ListFolders)
	require.NoError(t, err)
	assert.Contains(t, out, "docs/")
	assert.NotContains(t, out, "a.txt")

	out, err = gw.List(dir, ListAll)
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 3 item(s)")
}

func TestListEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	gw := &OSGateway{}

	out, err := gw.List(dir, ListAll)
	require.NoError(t, err)
	assert.Contains(t, out, "No ")
}

func TestEntriesReturnsNames(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "one"), "")
	writeTemp(t, filepath.Join(dir, "two"), "")

	gw := &OSGateway{}
	names, err := gw.Entries(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, names)

	_, err = gw.Entries(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestReadScript(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, filepath.Join(dir, "setup.cry"), "say \"hi\"\n")

	gw := &OSGateway{}
	src, err := gw.ReadScript(filepath.Join(dir, "setup.cry"))
	require.NoError(t, err)
	assert.Equal(t, "say \"hi\"\n", src)

	_, err = gw.ReadScript(filepath.Join(dir, "absent.cry"))
	assert.Error(t, err)
}
