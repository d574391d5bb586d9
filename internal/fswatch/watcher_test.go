package fswatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestSynchronizerReportsNewFile(t *testing.T) {
	root := t.TempDir()
	s, initial, err := New(root, ".monitor", nil)
	require.NoError(t, err)
	defer s.Close()
	require.Empty(t, initial)

	path := filepath.Join(root, "new.go")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0o644))

	select {
	case ev := <-s.Events():
		require.Equal(t, Added, ev.Kind)
		require.Equal(t, domain.NewPath("new.go"), ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for Added event")
	}
}

func TestSynchronizerCoalescesRapidWrites(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "hot.go")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	s, _, err := New(root, ".monitor", nil)
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('0' + i)}, 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	var got []Event
	deadline := time.After(2 * time.Second)
collect:
	for {
		select {
		case ev := <-s.Events():
			got = append(got, ev)
		case <-time.After(200 * time.Millisecond):
			break collect
		case <-deadline:
			break collect
		}
	}
	require.LessOrEqual(t, len(got), 2, "rapid writes within the coalesce window should collapse to very few events")
}

func TestSynchronizerReportsRemoval(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gone.go")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	s, initial, err := New(root, ".monitor", nil)
	require.NoError(t, err)
	defer s.Close()
	require.Contains(t, initial, domain.NewPath("gone.go"))

	require.NoError(t, os.Remove(path))

	select {
	case ev := <-s.Events():
		require.Equal(t, Removed, ev.Kind)
		require.Equal(t, domain.NewPath("gone.go"), ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for Removed event")
	}
}
