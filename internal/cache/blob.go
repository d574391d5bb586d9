package cache

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/connorleisz/monitor/internal/domain"
)

const resultsDirName = "results"

// BlobKey derives the content-addressed digest for a result body, per
// §4.3: (codebase-relative path, tool name, content digest), so identical
// content under different filenames produces distinct blobs but the same
// file reused across runs collapses onto the same one.
func BlobKey(path domain.Path, toolName, contentDigest string) string {
	h := sha256.New()
	h.Write([]byte(path.String()))
	h.Write([]byte{0})
	h.Write([]byte(toolName))
	h.Write([]byte{0})
	h.Write([]byte(contentDigest))
	return hex.EncodeToString(h.Sum(nil))
}

// HashFile computes the SHA-256 content digest of a file on disk, the
// lazily-populated FileSnapshot.content_digest from §3.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Cache) blobDir(digest string) string {
	prefix := digest
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return filepath.Join(c.dir, resultsDirName, prefix)
}

func (c *Cache) blobPath(digest string) string {
	return filepath.Join(c.blobDir(digest), digest)
}

// WriteBlob gzip-compresses body at the configured compression level and
// writes it under digest, using the write protocol from §4.3.
func (c *Cache) WriteBlob(digest string, body []byte) error {
	if c.foreignLocked() {
		return ErrForeignCache
	}
	dir := c.blobDir(digest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, c.compressionLevel)
	if err != nil {
		return err
	}
	if _, err := gw.Write(body); err != nil {
		_ = gw.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}

	return atomicWrite(dir, c.blobPath(digest), buf.Bytes())
}

// ReadBlob reads and gzip-decompresses the blob stored under digest.
func (c *Cache) ReadBlob(digest string) ([]byte, error) {
	f, err := os.Open(c.blobPath(digest))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}

// gc removes every blob under results/ not present in referenced. Run
// once at startup against the loaded status aggregate, per §4.3.
func (c *Cache) gc(referenced map[string]bool) {
	root := filepath.Join(c.dir, resultsDirName)
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	var reclaimed int64
	var count int
	for _, prefixEntry := range entries {
		if !prefixEntry.IsDir() {
			continue
		}
		prefixDir := filepath.Join(root, prefixEntry.Name())
		blobs, err := os.ReadDir(prefixDir)
		if err != nil {
			continue
		}
		for _, b := range blobs {
			if b.IsDir() {
				continue
			}
			if !referenced[b.Name()] {
				if info, err := b.Info(); err == nil {
					reclaimed += info.Size()
				}
				_ = os.Remove(filepath.Join(prefixDir, b.Name()))
				count++
			}
		}
	}
	if count > 0 && c.log != nil {
		c.log.Info(fmt.Sprintf("cache: garbage collected %d unreferenced blob(s), reclaimed %s", count, humanize.Bytes(uint64(reclaimed))))
	}
}

// DiskUsage reports the total size of every blob currently stored under
// results/, for the --info matrix's human-readable footer.
func (c *Cache) DiskUsage() (string, error) {
	root := filepath.Join(c.dir, resultsDirName)
	var total int64
	err := filepath.WalkDir(root, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return "", err
	}
	return humanize.Bytes(uint64(total)), nil
}
