package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/connorleisz/monitor/internal/domain"
)

func descriptorRow(path string, toolName string, key domain.SnapshotKey, status domain.Status) domain.Row {
	return domain.Row{
		Path: domain.NewPath(path),
		Entries: []domain.Entry{
			{Descriptor: &domain.ToolDescriptor{Name: toolName}, SnapshotKey: key, Status: status},
		},
	}
}

func TestMergeInvalidatedCarriesForwardUnchanged(t *testing.T) {
	key := domain.SnapshotKey{Size: 1}
	existing := descriptorRow("a.go", "gofmt", key, domain.Ok)
	fresh := descriptorRow("a.go", "gofmt", key, domain.Pending)

	merged := mergeInvalidated(existing, fresh)

	require.Equal(t, domain.Ok, merged.Entries[0].Status)
}

func TestMergeInvalidatedResetsChangedSnapshot(t *testing.T) {
	existing := descriptorRow("a.go", "gofmt", domain.SnapshotKey{Size: 1}, domain.Ok)
	fresh := descriptorRow("a.go", "gofmt", domain.SnapshotKey{Size: 2}, domain.Pending)

	merged := mergeInvalidated(existing, fresh)

	require.Equal(t, domain.Pending, merged.Entries[0].Status)
	require.Equal(t, domain.SnapshotKey{Size: 2}, merged.Entries[0].SnapshotKey)
}

func TestMergeInvalidatedLeavesRunningAlone(t *testing.T) {
	existing := descriptorRow("a.go", "gofmt", domain.SnapshotKey{Size: 1}, domain.Running)
	fresh := descriptorRow("a.go", "gofmt", domain.SnapshotKey{Size: 2}, domain.Pending)

	merged := mergeInvalidated(existing, fresh)

	// Invalidate (called via Entry.Invalidate inside mergeInvalidated)
	// leaves a Running entry untouched rather than resetting it, so a job
	// already in flight isn't silently disowned by a same-tick FS event.
	require.Equal(t, domain.Running, merged.Entries[0].Status)
	require.Equal(t, domain.SnapshotKey{Size: 1}, merged.Entries[0].SnapshotKey)
}

func TestApplyFilterNarrowsVisibleRows(t *testing.T) {
	m := Model{domain: domain.NewModel(), filter: newRowFilter()}
	m.domain = m.domain.UpsertRow(domain.Row{Path: domain.NewPath("internal/app/view.go")})
	m.domain = m.domain.UpsertRow(domain.Row{Path: domain.NewPath("internal/cache/blob.go")})

	m.filter.input.SetValue("view")
	m.applyFilter()

	rows := m.visibleRows()
	require.Len(t, rows, 1)
	require.Equal(t, domain.NewPath("internal/app/view.go"), rows[0].Path)
}

func TestApplyFilterEmptyQueryShowsEverything(t *testing.T) {
	m := Model{domain: domain.NewModel(), filter: newRowFilter()}
	m.domain = m.domain.UpsertRow(domain.Row{Path: domain.NewPath("a.go")})
	m.domain = m.domain.UpsertRow(domain.Row{Path: domain.NewPath("b.go")})

	m.filter.input.SetValue("a")
	m.applyFilter()
	require.Len(t, m.visibleRows(), 1)

	m.filter.input.SetValue("")
	m.applyFilter()
	require.Len(t, m.visibleRows(), 2)
}
