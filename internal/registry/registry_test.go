package registry

import (
	"os"
	"os/exec"
	"testing"

	"github.com/connorleisz/monitor/internal/applog"
	"github.com/connorleisz/monitor/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestNewElidesMissingExecutablesOnly(t *testing.T) {
	log := applog.NewBuffer(16)
	reg := New(t.TempDir(), log)

	kept := make(map[string]bool)
	for _, d := range reg.Descriptors() {
		kept[d.Name] = true
		if d.Argv.Program != "" {
			_, err := exec.LookPath(d.Argv.Program)
			require.NoErrorf(t, err, "descriptor %q kept despite missing executable %q", d.Name, d.Argv.Program)
		}
	}
	// synthetic tools never need an executable and are never elided
	require.True(t, kept["contents"])
	require.True(t, kept["metadata"])

	for _, l := range log.Lines() {
		require.Equal(t, applog.Info, l.Level, "elision lines must log at Info, not a louder level")
	}
}

func TestClassifyMatchesExtension(t *testing.T) {
	reg := New(t.TempDir(), nil)
	snap := domain.FileSnapshot{Path: domain.NewPath("main.go")}

	matched := reg.Classify(domain.NewPath("main.go"), snap)

	var names []string
	for _, d := range matched {
		names = append(names, d.Name)
	}
	require.Contains(t, names, "contents")
	require.Contains(t, names, "metadata")
	require.Contains(t, names, "gofmt")
	require.NotContains(t, names, "python_syntax")
}

func TestBuildRowMarksNotApplicableEntries(t *testing.T) {
	reg := New(t.TempDir(), nil)
	snap := domain.FileSnapshot{Path: domain.NewPath("main.go")}

	row := reg.BuildRow(domain.NewPath("main.go"), snap)

	idx := row.EntryForTool("contents")
	require.GreaterOrEqual(t, idx, 0)
	require.Equal(t, domain.Pending, row.Entries[idx].Status)

	pyIdx := row.EntryForTool("python_syntax")
	require.GreaterOrEqual(t, pyIdx, 0)
	require.Equal(t, domain.NotApplicable, row.Entries[pyIdx].Status)
}

func TestShebangInterpreterHandlesEnvForm(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/script"
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/env python3\nprint(1)\n"), 0o644))
	require.Equal(t, "python3", shebangInterpreter(path))
}

func TestShebangInterpreterDirectForm(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/script"
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/bash\necho hi\n"), 0o644))
	require.Equal(t, "bash", shebangInterpreter(path))
}
