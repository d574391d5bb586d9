// Package cache implements the Result Cache (§4.3): a content-addressed,
// disk-backed store under "<codebase>/.monitor/" that persists individual
// tool results and the aggregate summary grid so a restart is near-instant.
package cache

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/connorleisz/monitor/internal/applog"
	"github.com/connorleisz/monitor/internal/wire"
)

// AppDirName is the on-disk app directory under the codebase root.
const AppDirName = ".monitor"

const creationTimeFile = "creation-time"
const statusFile = "status.db"

const statusWriteDebounce = 1100 * time.Millisecond

// ErrForeignCache is returned by blob writes once this process has
// detected that another instance has taken over the cache directory
// (the creation-time file changed under it). Flush then skips the
// status write and returns nil.
var ErrForeignCache = errors.New("cache: creation-time changed, cache is now owned by another process")

// Cache owns "<codebase>/.monitor/": the creation-time guard, the
// periodically-flushed status aggregate, and the content-addressed blob
// store under results/.
type Cache struct {
	root string
	dir  string

	creationTime     int64
	compressionLevel int
	log              *applog.Buffer

	mu       sync.Mutex
	foreign  bool
	pending  *PersistedState
	lastFlush time.Time

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Open creates/opens the cache directory for codebaseRoot, loads
// status.db (returning ok=false if it is missing or torn, in which case
// the caller performs a full rescan), runs blob garbage collection
// against the loaded state, and starts the background flush/foreign-
// detection loop. compressionLevel is the CLI's 0..9 dial, mapped
// directly onto gzip's levels per SPEC_FULL.md §4.3.
func Open(codebaseRoot string, compressionLevel int, log *applog.Buffer) (*Cache, PersistedState, bool, error) {
	dir := filepath.Join(codebaseRoot, AppDirName)
	if err := os.MkdirAll(filepath.Join(dir, resultsDirName), 0o755); err != nil {
		return nil, PersistedState{}, false, fmt.Errorf("cache: create %s: %w", dir, err)
	}

	ct, err := loadOrCreateCreationTime(dir)
	if err != nil {
		return nil, PersistedState{}, false, fmt.Errorf("cache: creation-time: %w", err)
	}

	c := &Cache{
		root:             codebaseRoot,
		dir:              dir,
		creationTime:     ct,
		compressionLevel: clampCompressionLevel(compressionLevel),
		log:              log,
		stop:             make(chan struct{}),
	}

	state, ok := c.loadStatus()
	c.gc(state.ReferencedBlobKeys())

	c.wg.Add(1)
	go c.backgroundLoop()

	return c, state, ok, nil
}

func clampCompressionLevel(level int) int {
	if level < gzip.NoCompression {
		return gzip.NoCompression
	}
	if level > gzip.BestCompression {
		return gzip.BestCompression
	}
	return level
}

func loadOrCreateCreationTime(dir string) (int64, error) {
	path := filepath.Join(dir, creationTimeFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if v, perr := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); perr == nil {
			return v, nil
		}
	}
	v := time.Now().UnixNano()
	if err := atomicWrite(dir, path, []byte(strconv.FormatInt(v, 10))); err != nil {
		return 0, err
	}
	return v, nil
}

func (c *Cache) statusPath() string { return filepath.Join(c.dir, statusFile) }

// loadStatus reads status.db. A missing file, a torn frame (bad magic,
// checksum mismatch, unsupported version), or a gob decode failure is
// all treated identically: cache absent, full rescan, per §4.3's
// consistency rules.
func (c *Cache) loadStatus() (PersistedState, bool) {
	f, err := os.Open(c.statusPath())
	if err != nil {
		return PersistedState{}, false
	}
	defer f.Close()

	var state PersistedState
	if err := wire.ReadFrame(f, &state); err != nil {
		if c.log != nil {
			c.log.Warn("cache: status.db unreadable (" + err.Error() + "), performing full rescan")
		}
		return PersistedState{}, false
	}
	return state, true
}

// RequestStatusWrite queues state to be flushed to status.db. Writes are
// debounced (≥1s apart, per §4.3); the most recent call before a flush
// wins.
func (c *Cache) RequestStatusWrite(state PersistedState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := state
	c.pending = &s
}

// Flush writes any pending status immediately, bypassing the debounce —
// used on clean shutdown.
func (c *Cache) Flush() error {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	foreign := c.foreign
	c.mu.Unlock()

	if pending == nil || foreign {
		return nil
	}
	return c.writeStatus(*pending)
}

func (c *Cache) writeStatus(state PersistedState) error {
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmpName)
		}
	}()

	if err := wire.WriteFrame(tmp, state); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, c.statusPath()); err != nil {
		return err
	}
	ok = true
	return nil
}

// Foreign reports whether this process has detected a takeover and
// disabled its own writes.
func (c *Cache) Foreign() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.foreign
}

func (c *Cache) foreignLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.foreign
}

// backgroundLoop flushes debounced status writes and watches
// creation-time for a foreign takeover, per §4.3's consistency rule.
func (c *Cache) backgroundLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(statusWriteDebounce)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.checkForeign()
			if err := c.Flush(); err != nil && c.log != nil {
				c.log.Error("cache: status write failed: " + err.Error())
			}
		}
	}
}

func (c *Cache) checkForeign() {
	data, err := os.ReadFile(filepath.Join(c.dir, creationTimeFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && c.log != nil {
			c.log.Warn("cache: creation-time file vanished")
		}
		return
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return
	}
	if v != c.creationTime {
		c.mu.Lock()
		already := c.foreign
		c.foreign = true
		c.mu.Unlock()
		if !already && c.log != nil {
			c.log.Warn("cache: creation-time changed under us, disabling writes")
		}
	}
}

// Close stops the background loop and performs a final synchronous
// flush of any pending status, per §4.3's "written ... on clean
// shutdown".
func (c *Cache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	c.wg.Wait()
	return c.Flush()
}
