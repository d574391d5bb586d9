package registry

import (
	"path/filepath"
	"strings"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/filetype"
	"github.com/connorleisz/monitor/internal/git"
	"github.com/connorleisz/monitor/internal/styledtext"
)

const defaultTimeoutS = 60

func extIs(exts ...string) func(domain.Path, domain.FileSnapshot) bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[e] = true
	}
	return func(p domain.Path, _ domain.FileSnapshot) bool {
		return set[filetype.Ext(p.String())]
	}
}

// builtinDescriptors returns the full set of ToolDescriptors the
// registry knows how to build, before startup elision for missing
// executables. repoRoot is "" if the codebase isn't a git repository,
// disabling the git_log/git_blame descriptors.
func builtinDescriptors(repoRoot string) []*domain.ToolDescriptor {
	descs := []*domain.ToolDescriptor{
		{
			Name:       "contents",
			Color:      styledtext.RGB(180, 180, 180),
			Applicable: func(domain.Path, domain.FileSnapshot) bool { return true },
			TimeoutS:   defaultTimeoutS,
			Version:    "1",
		},
		{
			Name:       "metadata",
			Color:      styledtext.RGB(150, 150, 220),
			Applicable: func(domain.Path, domain.FileSnapshot) bool { return true },
			TimeoutS:   defaultTimeoutS,
			Version:    "1",
		},
		{
			Name:       "gofmt",
			Color:      styledtext.RGB(0, 173, 216),
			Applicable: extIs(".go"),
			Argv:       domain.ArgvTemplate{Program: "gofmt", Args: []string{"-l", "{abs}"}},
			TimeoutS:   defaultTimeoutS,
			ClassifierKind:     domain.ClassifyStdoutRegex,
			StdoutEmptyMeansOk: true,
			Version:    "1",
		},
		{
			Name:       "go_vet",
			Color:      styledtext.RGB(0, 150, 190),
			Applicable: extIs(".go"),
			Argv:       domain.ArgvTemplate{Program: "go", Args: []string{"vet", "{abs}"}},
			TimeoutS:   defaultTimeoutS,
			ClassifierKind: domain.ClassifyExitCode,
			Version:    "1",
		},
		{
			Name:       "python_syntax",
			Color:      styledtext.RGB(255, 212, 59),
			Applicable: extIs(".py"),
			Argv:       domain.ArgvTemplate{Program: "python3", Args: []string{"-m", "py_compile", "{abs}"}},
			TimeoutS:   defaultTimeoutS,
			ClassifierKind: domain.ClassifyExitCode,
			Version:    "1",
		},
		{
			Name: "shellcheck",
			Color: styledtext.RGB(0, 200, 0),
			Applicable: func(p domain.Path, snap domain.FileSnapshot) bool {
				if extIs(".sh")(p, snap) {
					return true
				}
				interp := shebangInterpreter(p.String())
				return interp == "sh" || interp == "bash" || interp == "zsh"
			},
			Argv:     domain.ArgvTemplate{Program: "shellcheck", Args: []string{"{abs}"}},
			TimeoutS: defaultTimeoutS,
			ClassifierKind: domain.ClassifyExitCode,
			ExitCodeTable:  map[int]domain.Status{1: domain.Problem, 2: domain.Error},
			Version:  "1",
		},
		{
			Name:       "jsonlint",
			Color:      styledtext.RGB(240, 180, 0),
			Applicable: extIs(".json"),
			Argv:       domain.ArgvTemplate{Program: "python3", Args: []string{"-m", "json.tool", "{abs}"}},
			TimeoutS:   defaultTimeoutS,
			ClassifierKind: domain.ClassifyExitCode,
			Version:    "1",
		},
		{
			Name:       "yamllint",
			Color:      styledtext.RGB(200, 100, 220),
			Applicable: extIs(".yaml", ".yml"),
			Argv:       domain.ArgvTemplate{Program: "yamllint", Args: []string{"{abs}"}},
			TimeoutS:   defaultTimeoutS,
			ClassifierKind: domain.ClassifyExitCode,
			Version:    "1",
		},
	}

	if repoRoot != "" {
		descs = append(descs,
			&domain.ToolDescriptor{
				Name:       "git_log",
				Color:      styledtext.RGB(240, 120, 60),
				Applicable: func(domain.Path, domain.FileSnapshot) bool { return true },
				Argv:       domain.ArgvTemplate{Program: "git", Args: []string{"-C", repoRoot, "log", "--oneline", "-n", "20", "--", "{rel}"}},
				TimeoutS:   defaultTimeoutS,
				ClassifierKind: domain.ClassifyExitCode,
				Version:    "1",
			},
			&domain.ToolDescriptor{
				Name:       "git_blame",
				Color:      styledtext.RGB(220, 100, 80),
				Applicable: func(domain.Path, domain.FileSnapshot) bool { return true },
				Argv:       domain.ArgvTemplate{Program: "git", Args: []string{"-C", repoRoot, "blame", "--line-porcelain", "--", "{rel}"}},
				TimeoutS:   defaultTimeoutS,
				ClassifierKind: domain.ClassifyExitCode,
				Version:    "1",
			},
		)
	}

	return descs
}

// detectRepoRoot delegates to internal/git, returning "" when the
// codebase isn't a git repository.
func detectRepoRoot(codebaseRoot string) string {
	isRepo, root := git.IsRepo(codebaseRoot)
	if !isRepo {
		return ""
	}
	return root
}

// isShebangOrExtensionless reports whether a path has no extension,
// meaning the registry must fall back to shebang/content sniffing to
// classify it (§4.5).
func isShebangOrExtensionless(p domain.Path) bool {
	return filepath.Ext(p.String()) == "" && !strings.Contains(filepath.Base(p.String()), ".")
}
