package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestBlobRoundTrip(t *testing.T) {
	root := t.TempDir()
	c, _, ok, err := Open(root, 6, nil)
	require.NoError(t, err)
	require.False(t, ok) // no prior status.db
	defer c.Close()

	digest := BlobKey(domain.NewPath("a.go"), "gofmt", "abc123")
	require.NoError(t, c.WriteBlob(digest, []byte("a.go:3: needs formatting")))

	got, err := c.ReadBlob(digest)
	require.NoError(t, err)
	require.Equal(t, "a.go:3: needs formatting", string(got))
}

func TestStatusRoundTripAcrossOpen(t *testing.T) {
	root := t.TempDir()
	c1, _, ok, err := Open(root, 6, nil)
	require.NoError(t, err)
	require.False(t, ok)

	state := PersistedState{
		Rows: []PersistedRow{{
			Path: domain.NewPath("main.go"),
			Entries: []PersistedEntry{{
				ToolName: "gofmt",
				Status:   domain.Ok,
			}},
		}},
		Sort: domain.ByExtDir,
	}
	require.NoError(t, c1.writeStatus(state))
	require.NoError(t, c1.Close())

	c2, loaded, ok2, err := Open(root, 6, nil)
	require.NoError(t, err)
	require.True(t, ok2)
	require.Equal(t, domain.ByExtDir, loaded.Sort)
	require.Len(t, loaded.Rows, 1)
	require.Equal(t, "gofmt", loaded.Rows[0].Entries[0].ToolName)
	defer c2.Close()
}

func TestTornStatusTriggersFullRescan(t *testing.T) {
	root := t.TempDir()
	c1, _, _, err := Open(root, 6, nil)
	require.NoError(t, err)
	require.NoError(t, c1.writeStatus(PersistedState{Sort: domain.ByExtDir}))
	require.NoError(t, c1.Close())

	// Corrupt the last byte of status.db (the checksum trailer).
	path := filepath.Join(root, AppDirName, "status.db")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c2, loaded, ok, err := Open(root, 6, nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, loaded.Rows)
	defer c2.Close()
}

func TestGCRemovesUnreferencedBlobs(t *testing.T) {
	root := t.TempDir()
	c, _, _, err := Open(root, 6, nil)
	require.NoError(t, err)

	kept := BlobKey(domain.NewPath("keep.go"), "gofmt", "x")
	orphan := BlobKey(domain.NewPath("gone.go"), "gofmt", "y")
	require.NoError(t, c.WriteBlob(kept, []byte("keep")))
	require.NoError(t, c.WriteBlob(orphan, []byte("orphan")))

	state := PersistedState{Rows: []PersistedRow{{
		Path:    domain.NewPath("keep.go"),
		Entries: []PersistedEntry{{ToolName: "gofmt", BlobKey: kept}},
	}}}
	require.NoError(t, c.writeStatus(state))
	require.NoError(t, c.Close())

	c2, loaded, ok, err := Open(root, 6, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, loaded.Rows, 1)
	defer c2.Close()

	_, err = c2.ReadBlob(kept)
	require.NoError(t, err)
	_, err = c2.ReadBlob(orphan)
	require.Error(t, err)
}

func TestCreationTimeChangeDisablesWrites(t *testing.T) {
	root := t.TempDir()
	c, _, _, err := Open(root, 6, nil)
	require.NoError(t, err)
	defer c.Close()

	ctPath := filepath.Join(root, AppDirName, creationTimeFile)
	require.NoError(t, os.WriteFile(ctPath, []byte("999999999999999"), 0o644))

	c.checkForeign()
	require.True(t, c.Foreign())

	err = c.WriteBlob(BlobKey(domain.NewPath("x"), "t", "d"), []byte("x"))
	require.ErrorIs(t, err, ErrForeignCache)
}
