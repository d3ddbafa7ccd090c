package videostore

import (
	"os"
	"path/filepath"
	"testing"

	"TikTokFactCheck/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *FileSystemStorage {
	t.Helper()
	fs, err := NewFileSystemStorage(filepath.Join(t.TempDir(), "videos"), logger.NewNop())
	require.NoError(t, err)
	return fs
}

func TestNewFileSystemStorageCreatesRoot(t *testing.T) {
	fs := newStore(t)
	assert.DirExists(t, fs.BasePath())

	_, err := NewFileSystemStorage("", nil)
	assert.Error(t, err)
}

func TestUserDir(t *testing.T) {
	fs := newStore(t)
	dir, err := fs.UserDir("@jean.dupont")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fs.BasePath(), "jean.dupont"), dir)
	assert.DirExists(t, dir)

	dir, err = fs.UserDir("../../etc")
	require.NoError(t, err)
	assert.Equal(t, fs.BasePath(), filepath.Dir(dir))

	_, err = fs.UserDir("  ")
	assert.Error(t, err)
}

func TestAbsoluteAndRelativePath(t *testing.T) {
	fs := newStore(t)

	abs, err := fs.AbsolutePath("alice/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fs.BasePath(), "alice", "clip.mp4"), abs)

	rel, err := fs.RelativePath(abs)
	require.NoError(t, err)
	assert.Equal(t, "alice/clip.mp4", rel)

	_, err = fs.AbsolutePath("../secret.txt")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = fs.RelativePath("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestDeleteVideoRemovesEmptyUserDir(t *testing.T) {
	fs := newStore(t)
	dir, err := fs.UserDir("bob")
	require.NoError(t, err)
	video := filepath.Join(dir, "v.mp4")
	require.NoError(t, os.WriteFile(video, []byte("data"), 0o644))

	require.NoError(t, fs.DeleteVideo(video))
	assert.NoFileExists(t, video)
	assert.NoDirExists(t, dir)
	assert.DirExists(t, fs.BasePath())

	assert.ErrorIs(t, fs.DeleteVideo("/tmp/outside.mp4"), ErrOutsideRoot)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Vidéo_drôle", SanitizeName("Vidéo drôle"))
	assert.Equal(t, "a_b", SanitizeName("a/b"))
	assert.Equal(t, "", SanitizeName("..."))
}
