// Package projectconfig loads an optional `.monitor.toml` defaults file
// from the codebase root, supplying flag defaults the CLI doesn't see on
// the command line. Adapted from the teacher's internal/config package
// (JSON-based per-project prefs); TOML is used here instead because
// BurntSushi/toml is already in the dependency graph the teacher's own
// go.mod carries (transitively, via glamour's ancestor deps) and the
// pack's CPI-SI statusline repo shows the same library used directly for
// exactly this kind of settings file.
package projectconfig

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the project-local defaults file, read from the codebase
// root.
const FileName = ".monitor.toml"

// Config holds flag defaults a project can pin so contributors don't
// need to repeat them on every invocation.
type Config struct {
	Workers     int    `toml:"workers"`
	Editor      string `toml:"editor"`
	Theme       string `toml:"theme"`
	Compression int    `toml:"compression"`
}

// Load reads FileName from root; a missing or malformed file yields a
// zero Config (all flag defaults apply), never an error — a broken
// config file must not prevent the monitor from starting.
func Load(root string) Config {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		return Config{}
	}
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}
	}
	return cfg
}
