package fswatch

import (
	"os"
	"syscall"

	"github.com/connorleisz/monitor/internal/domain"
)

// snapshotOf builds a FileSnapshot from a regular file's os.FileInfo.
// Ino/MountDev come from the platform stat_t so two hard links (or the
// same inode reached via two symlinks) compare equal, matching the
// equivalence definition in §3.
func snapshotOf(relPath string, info os.FileInfo) domain.FileSnapshot {
	snap := domain.FileSnapshot{
		Path:    domain.NewPath(relPath),
		Size:    info.Size(),
		MtimeNS: info.ModTime().UnixNano(),
		Mode:    uint32(info.Mode()),
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		snap.Ino = st.Ino
		snap.MountDev = uint64(st.Dev)
	}
	return snap
}
