// Package fswatch implements the Filesystem Synchronizer (§4.4): an
// initial recursive scan producing a {path -> FileSnapshot} map, an
// fsnotify subscription for live changes, and a periodic light rescan
// that catches anything the OS notification stream missed.
package fswatch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/connorleisz/monitor/internal/applog"
	"github.com/connorleisz/monitor/internal/domain"
	"github.com/fsnotify/fsnotify"
)

const coalesceWindow = 50 * time.Millisecond
const rescanInterval = 5 * time.Second

// Synchronizer owns the live view of {path -> FileSnapshot} for one
// codebase root and streams Events as the filesystem changes.
type Synchronizer struct {
	root       string
	appDirName string
	log        *applog.Buffer

	mu        sync.Mutex
	snapshots map[domain.Path]domain.FileSnapshot

	watcher *fsnotify.Watcher
	events  chan Event

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New performs the initial scan and starts watching root for changes.
// The caller owns the returned snapshots map as the starting state of
// the summary grid; it is a copy and is never mutated by the
// Synchronizer afterward.
func New(root, appDirName string, log *applog.Buffer) (*Synchronizer, map[domain.Path]domain.FileSnapshot, error) {
	initial, err := InitialScan(root, appDirName)
	if err != nil {
		return nil, nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	for _, dir := range walkDirs(root, appDirName) {
		_ = w.Add(dir) // best-effort; a dir that vanishes mid-walk is simply skipped
	}

	snapshotsCopy := make(map[domain.Path]domain.FileSnapshot, len(initial))
	for p, s := range initial {
		snapshotsCopy[p] = s
	}

	s := &Synchronizer{
		root:       root,
		appDirName: appDirName,
		log:        log,
		snapshots:  snapshotsCopy,
		watcher:    w,
		events:     make(chan Event, 256),
		stop:       make(chan struct{}),
	}

	s.wg.Add(2)
	go s.watchLoop()
	go s.rescanLoop()

	initialOut := make(map[domain.Path]domain.FileSnapshot, len(initial))
	for p, snap := range initial {
		initialOut[p] = snap
	}
	return s, initialOut, nil
}

// Events returns the channel of coalesced filesystem Events.
func (s *Synchronizer) Events() <-chan Event { return s.events }

// Close stops the watch and rescan loops.
func (s *Synchronizer) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	err := s.watcher.Close()
	s.wg.Wait()
	close(s.events)
	return err
}

func (s *Synchronizer) relPath(absPath string) (domain.Path, bool) {
	rel, err := filepath.Rel(s.root, absPath)
	if err != nil {
		return "", false
	}
	p := domain.NewPath(rel)
	if domain.IsCacheDir(p, s.appDirName) {
		return "", false
	}
	return p, true
}

// watchLoop drains raw fsnotify events into a coalescing buffer and
// flushes it every coalesceWindow, per §4.4's "only the latest snapshot
// per path in a 50ms window is forwarded" rule.
func (s *Synchronizer) watchLoop() {
	defer s.wg.Done()

	pending := make(map[domain.Path]Event)
	var flush <-chan time.Time
	var timer *time.Timer

	emit := func() {
		for _, ev := range pending {
			select {
			case s.events <- ev:
			case <-s.stop:
				return
			}
		}
		pending = make(map[domain.Path]Event)
		timer = nil
		flush = nil
	}

	for {
		select {
		case <-s.stop:
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			ev, handled := s.translate(raw)
			if handled {
				pending[ev.Path] = ev
				if timer == nil {
					timer = time.NewTimer(coalesceWindow)
					flush = timer.C
				}
			}

		case <-flush:
			emit()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			if s.log != nil && err != nil {
				s.log.Warn("fswatch: " + err.Error())
			}
		}
	}
}

// translate converts one raw fsnotify event into an Event, updating the
// Synchronizer's own snapshot map so the next rescan can diff against
// it. The second return value is false for events outside the codebase
// scope or that need no forwarding (e.g. a bare Chmod).
func (s *Synchronizer) translate(raw fsnotify.Event) (Event, bool) {
	path, ok := s.relPath(raw.Name)
	if !ok {
		return Event{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if raw.Has(fsnotify.Remove) || raw.Has(fsnotify.Rename) {
		if _, existed := s.snapshots[path]; !existed {
			return Event{}, false
		}
		delete(s.snapshots, path)
		return Event{Kind: Removed, Path: path}, true
	}

	info, err := os.Lstat(raw.Name)
	if err != nil {
		// The path vanished between the event firing and our stat; treat
		// as removed if we were tracking it.
		if _, existed := s.snapshots[path]; existed {
			delete(s.snapshots, path)
			return Event{Kind: Removed, Path: path}, true
		}
		return Event{}, false
	}

	if info.IsDir() {
		if raw.Has(fsnotify.Create) {
			_ = s.watcher.Add(raw.Name)
		}
		return Event{}, false
	}
	if !info.Mode().IsRegular() {
		return Event{}, false
	}

	snap := snapshotOf(string(path), info)
	prev, existed := s.snapshots[path]
	if existed && prev.Equivalent(snap) {
		return Event{}, false
	}
	s.snapshots[path] = snap

	if !existed {
		return Event{Kind: Added, Path: path, Snapshot: snap}, true
	}
	return Event{Kind: Modified, Path: path, Snapshot: snap}, true
}

// rescanLoop periodically performs a full InitialScan and diffs it
// against the live snapshot map, catching changes the OS notification
// stream missed (§4.4).
func (s *Synchronizer) rescanLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(rescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			fresh, err := InitialScan(s.root, s.appDirName)
			if err != nil {
				if s.log != nil {
					s.log.Warn("fswatch: rescan failed: " + err.Error())
				}
				continue
			}
			s.diffAndEmit(fresh)
		}
	}
}

func (s *Synchronizer) diffAndEmit(fresh map[domain.Path]domain.FileSnapshot) {
	s.mu.Lock()
	var toEmit []Event
	for p, snap := range fresh {
		prev, existed := s.snapshots[p]
		if !existed {
			toEmit = append(toEmit, Event{Kind: Added, Path: p, Snapshot: snap})
		} else if !prev.Equivalent(snap) {
			toEmit = append(toEmit, Event{Kind: Modified, Path: p, Snapshot: snap})
		}
	}
	for p := range s.snapshots {
		if _, stillThere := fresh[p]; !stillThere {
			toEmit = append(toEmit, Event{Kind: Removed, Path: p})
		}
	}
	s.snapshots = fresh
	s.mu.Unlock()

	for _, ev := range toEmit {
		select {
		case s.events <- ev:
		case <-s.stop:
			return
		}
	}
}
