package status

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStatus_String(t *testing.T) {
	tests := []struct {
		status  FileStatus
		want    string
		touched bool
	}{
		{StatusFixed, "fixed", true},
		{StatusWouldFix, "would fix", true},
		{StatusUnchanged, "no changes needed", false},
		{StatusNeedsReview, "needs review", false},
		{StatusNotFound, "file not found", false},
		{StatusFailed, "failed", false},
		{StatusUnknown, "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
			assert.Equal(t, tt.touched, tt.status.Touched())
		})
	}
}

func TestStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "page.dart")
	require.NoError(t, os.WriteFile(path, []byte("// caf\xc3\xa9\r\nvoid main() {}\r\n"), 0o640))

	store := NewStore()
	content, mode, err := store.ReadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "// caf\xc3\xa9\r\nvoid main() {}\r\n", string(content))

	require.NoError(t, store.WriteFileAtomic(ctx, path, []byte("rewritten\r\n"), mode))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rewritten\r\n", string(got))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStore_ReadFile_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewStore()

	_, _, err := store.ReadFile(ctx, filepath.Join(dir, "missing.dart"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = store.ReadFile(ctx, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestStore_WriteFileAtomic_MissingDir(t *testing.T) {
	err := NewStore().WriteFileAtomic(context.Background(), filepath.Join(t.TempDir(), "nope", "a.dart"), []byte("x"), 0o644)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving symlinks")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStore_WriteFileAtomic_Links(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("links need extra privileges on windows")
	}

	tests := []struct {
		name string
		link func(target, name string) error
	}{
		{name: "symlink", link: os.Symlink},
		{name: "hard_link", link: os.Link},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			orig := filepath.Join(dir, "orig.dart")
			link := filepath.Join(dir, "link.dart")
			require.NoError(t, os.WriteFile(orig, []byte("old"), 0o644))
			require.NoError(t, tt.link(orig, link))

			before, err := os.Lstat(link)
			require.NoError(t, err)

			store := NewStore()
			_, mode, err := store.ReadFile(ctx, link)
			require.NoError(t, err)
			require.NoError(t, store.WriteFileAtomic(ctx, link, []byte("new"), mode))

			got, err := os.ReadFile(orig)
			require.NoError(t, err)
			assert.Equal(t, "new", string(got), "the file behind the link is rewritten")

			got, err = os.ReadFile(link)
			require.NoError(t, err)
			assert.Equal(t, "new", string(got))

			after, err := os.Lstat(link)
			require.NoError(t, err)
			assert.Equal(t, before.Mode().Type(), after.Mode().Type(), "the link keeps its kind")

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 2, "no temp files left behind")
		})
	}
}
