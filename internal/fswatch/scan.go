package fswatch

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/connorleisz/monitor/internal/domain"
)

// InitialScan recursively walks root, producing the startup
// {path -> FileSnapshot} map described in §4.4. A symlinked directory is
// followed at most once per target inode (an ino-seen set breaks
// cycles); a symlink to a file is followed only if its target resolves
// inside root, and a broken symlink is silently omitted. Paths under
// appDirName (the cache directory) are never surfaced.
func InitialScan(root, appDirName string) (map[domain.Path]domain.FileSnapshot, error) {
	out := make(map[domain.Path]domain.FileSnapshot)
	seenDirInodes := make(map[uint64]bool)
	if err := scanDir(root, root, appDirName, seenDirInodes, out); err != nil {
		return nil, err
	}
	return out, nil
}

func scanDir(absRoot, dir, appDirName string, seenDirInodes map[uint64]bool, out map[domain.Path]domain.FileSnapshot) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		absPath := filepath.Join(dir, entry.Name())
		relPath, err := filepath.Rel(absRoot, absPath)
		if err != nil {
			continue
		}
		relPath = filepath.ToSlash(relPath)
		if domain.IsCacheDir(domain.Path(relPath), appDirName) {
			continue
		}

		lst, err := entry.Info() // Lstat semantics: does not follow a symlink
		if err != nil {
			continue
		}

		if lst.Mode()&os.ModeSymlink != 0 {
			target, statErr := os.Stat(absPath) // follows the symlink
			if statErr != nil {
				continue // broken symlink: omitted
			}
			realAbs, evalErr := filepath.EvalSymlinks(absPath)
			if evalErr != nil {
				continue
			}
			relReal, relErr := filepath.Rel(absRoot, realAbs)
			if relErr != nil || strings.HasPrefix(relReal, "..") || relReal == ".." {
				continue // resolves outside the codebase: omitted
			}
			if target.IsDir() {
				if !markSeen(target, seenDirInodes) {
					continue // cycle: this inode was already walked
				}
				_ = scanDir(absRoot, absPath, appDirName, seenDirInodes, out)
				continue
			}
			out[domain.Path(relPath)] = snapshotOf(relPath, target)
			continue
		}

		if lst.IsDir() {
			if !markSeen(lst, seenDirInodes) {
				continue
			}
			_ = scanDir(absRoot, absPath, appDirName, seenDirInodes, out)
			continue
		}

		if lst.Mode().IsRegular() {
			out[domain.Path(relPath)] = snapshotOf(relPath, lst)
		}
	}
	return nil
}

// markSeen records a directory's inode and reports whether this is the
// first time it has been seen (false means "already walked, stop here").
func markSeen(info os.FileInfo, seen map[uint64]bool) bool {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return true // no inode info available; can't detect a cycle, proceed once
	}
	if seen[st.Ino] {
		return false
	}
	seen[st.Ino] = true
	return true
}

// walkDirs returns every directory under root (including root itself),
// skipping appDirName, for seeding the fsnotify watch list.
func walkDirs(root, appDirName string) []string {
	var dirs []string
	var walk func(dir string)
	walk = func(dir string) {
		dirs = append(dirs, dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			rel, err := filepath.Rel(root, filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			if domain.IsCacheDir(domain.Path(filepath.ToSlash(rel)), appDirName) {
				continue
			}
			walk(filepath.Join(dir, e.Name()))
		}
	}
	walk(root)
	return dirs
}
