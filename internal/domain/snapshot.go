package domain

// FileSnapshot is the stat tuple that identifies the inputs of a file at
// a point in time. Two snapshots of the same path are equivalent iff all
// of Size, MtimeNS, Mode, Ino, MountDev compare equal (content_digest is
// computed lazily and does not participate in equivalence).
type FileSnapshot struct {
	Path         Path
	Size         int64
	MtimeNS      int64
	Mode         uint32
	Ino          uint64
	MountDev     uint64
	contentDigest string // lazily populated; empty means "not computed"
}

// Equivalent compares the stat tuple only, per the spec's equivalence
// definition in §3.
func (s FileSnapshot) Equivalent(o FileSnapshot) bool {
	return s.Size == o.Size &&
		s.MtimeNS == o.MtimeNS &&
		s.Mode == o.Mode &&
		s.Ino == o.Ino &&
		s.MountDev == o.MountDev
}

// ContentDigest returns the cached content digest, and whether one has
// been computed yet.
func (s FileSnapshot) ContentDigest() (string, bool) {
	return s.contentDigest, s.contentDigest != ""
}

// WithContentDigest returns a copy of s with its content digest set.
func (s FileSnapshot) WithContentDigest(digest string) FileSnapshot {
	s.contentDigest = digest
	return s
}

// SnapshotKey is the tuple that identifies the inputs of a Result: the
// stat tuple plus a tool-version tag, so changing a tool's behavior
// (without the file changing) can still invalidate prior results.
type SnapshotKey struct {
	Size        int64
	MtimeNS     int64
	Mode        uint32
	Ino         uint64
	MountDev    uint64
	ToolVersion string
}

// Key derives the SnapshotKey for this snapshot under the given tool
// version tag.
func (s FileSnapshot) Key(toolVersion string) SnapshotKey {
	return SnapshotKey{
		Size:        s.Size,
		MtimeNS:     s.MtimeNS,
		Mode:        s.Mode,
		Ino:         s.Ino,
		MountDev:    s.MountDev,
		ToolVersion: toolVersion,
	}
}
