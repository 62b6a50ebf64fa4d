package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fw.bin")

	assert.False(t, Exists(path))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	assert.True(t, Exists(path))

	// directories are not files
	assert.False(t, Exists(dir))
}

func TestPlaceFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dl", "1.2.3", "Firmware", "Windows_Server")

	final, temp, err := PlaceFile(dir, "9211_P20.zip", []byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "9211_P20.zip"), final)
	assert.True(t, strings.HasPrefix(filepath.Base(temp), TempPrefix))
	assert.True(t, strings.HasSuffix(temp, ".zip"))

	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = os.Stat(temp)
	assert.True(t, os.IsNotExist(err), "temporary file should be gone")

	info, err := os.Stat(final)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestPlaceFile_DirIsFile(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "dl")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, _, err := PlaceFile(filepath.Join(blocker, "sub"), "fw.bin", []byte("payload"))
	assert.Error(t, err)
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0644))

	require.NoError(t, MoveFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
	assert.False(t, Exists(src))
}

func TestMoveFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, MoveFile(filepath.Join(dir, "does_not_exist"), filepath.Join(dir, "dst")))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0640))

	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
	assert.True(t, Exists(src))
}

func TestLockDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dl")

	unlock, err := LockDir(context.Background(), dir, 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, Exists(dir+".lock"))
	assert.NoDirExists(t, dir)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = LockDir(ctx, dir, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock())

	unlock, err = LockDir(context.Background(), dir, 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestLockPath(t *testing.T) {
	assert.Equal(t, filepath.Join("mirror", "dl.lock"), LockPath(filepath.Join("mirror", "dl")+"/"))
	assert.Equal(t, "dl.lock", LockPath("dl"))
}
