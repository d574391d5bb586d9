package fswatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestInitialScanFindsFilesAndSkipsCacheDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "x.py"), []byte("x=1"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".monitor", "results"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".monitor", "status.db"), []byte("junk"), 0o644))

	snaps, err := InitialScan(root, ".monitor")
	require.NoError(t, err)

	_, ok := snaps[domain.NewPath("main.go")]
	require.True(t, ok)
	_, ok = snaps[domain.NewPath("sub/x.py")]
	require.True(t, ok)
	for p := range snaps {
		require.NotContains(t, p.String(), ".monitor")
	}
}

func TestInitialScanOmitsBrokenSymlink(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(root, "does-not-exist"), filepath.Join(root, "dangling")))

	snaps, err := InitialScan(root, ".monitor")
	require.NoError(t, err)
	_, ok := snaps[domain.NewPath("dangling")]
	require.False(t, ok)
}

func TestInitialScanFollowsFileSymlinkInsideRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "alias.txt")))

	snaps, err := InitialScan(root, ".monitor")
	require.NoError(t, err)
	_, ok := snaps[domain.NewPath("alias.txt")]
	require.True(t, ok)
}

func TestInitialScanOmitsSymlinkOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "leak.txt")))

	snaps, err := InitialScan(root, ".monitor")
	require.NoError(t, err)
	_, ok := snaps[domain.NewPath("leak.txt")]
	require.False(t, ok)
}

func TestInitialScanBreaksSymlinkCycle(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	// a/loop -> root, a cycle: root/a/loop/a/loop/...
	require.NoError(t, os.Symlink(root, filepath.Join(root, "a", "loop")))

	done := make(chan struct{})
	go func() {
		_, _ = InitialScan(root, ".monitor")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("InitialScan did not terminate; symlink cycle not broken")
	}
}
