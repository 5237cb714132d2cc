package stockmedia

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"voxreel/internal/logging"
	"voxreel/internal/render"
)

const lockRetryDelay = 200 * time.Millisecond

// Fetcher streams a remote file into w.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// CacheEntry captures metadata about a cached media download.
type CacheEntry struct {
	Name      string                `json:"name"`
	SourceURL string                `json:"source_url"`
	Kind      render.BackgroundKind `json:"kind"`
	Keywords  []string              `json:"keywords,omitempty"`
	Bytes     int64                 `json:"bytes"`
	StoredAt  time.Time             `json:"stored_at"`
}

// Cache keeps downloaded backgrounds on disk, keyed by a hash of their URL.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// NewCache initialises a cache rooted at dir.
func NewCache(dir string, logger *slog.Logger) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{dir: dir, logger: logger}, nil
}

// Dir exposes the backing directory for inspection.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// FileName returns the cache file name for rawURL: "pexels_" plus the first
// 12 hex digits of its MD5, with .mp4 for video URLs and .jpg otherwise.
func FileName(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	ext := ".jpg"
	if strings.Contains(rawURL, "video") || strings.HasSuffix(rawURL, ".mp4") {
		ext = ".mp4"
	}
	return "pexels_" + hex.EncodeToString(sum[:])[:12] + ext
}

// Path returns where rawURL is or would be stored.
func (c *Cache) Path(rawURL string) string {
	return filepath.Join(c.dir, FileName(rawURL))
}

// Lookup reports whether rawURL is already cached.
func (c *Cache) Lookup(rawURL string) (string, bool) {
	if c == nil {
		return "", false
	}
	path := c.Path(rawURL)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// Fetch returns the local path for rawURL, downloading it through fetcher on
// a miss. Concurrent fetches of the same URL are serialised with a file lock.
func (c *Cache) Fetch(ctx context.Context, rawURL string, entry CacheEntry, fetcher Fetcher) (string, error) {
	if c == nil {
		return "", errors.New("cache unavailable")
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("empty media url")
	}
	if path, ok := c.Lookup(rawURL); ok {
		c.logger.Info("media cache hit", logging.String("path", path))
		return path, nil
	}
	if fetcher == nil {
		return "", errors.New("no fetcher configured")
	}

	path := c.Path(rawURL)
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return "", errors.New("acquire cache lock: not acquired")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Debug("release cache lock failed", logging.Error(err))
		}
		_ = os.Remove(lock.Path())
	}()

	// another process may have finished the download while we waited
	if cached, ok := c.Lookup(rawURL); ok {
		return cached, nil
	}

	c.logger.Info("downloading media", logging.String("url", truncateURL(rawURL)))
	tmp, err := os.CreateTemp(c.dir, "download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	n, err := fetcher.Fetch(ctx, rawURL, tmp)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename temp file: %w", err)
	}

	entry.Name = filepath.Base(path)
	entry.SourceURL = rawURL
	entry.Bytes = n
	entry.StoredAt = time.Now().UTC()
	if err := c.writeEntry(entry); err != nil {
		c.logger.Debug("write cache sidecar failed", logging.Error(err))
	}
	c.logger.Info("media downloaded",
		logging.String("path", path),
		logging.Int64("bytes", n),
	)
	return path, nil
}

// Entries lists cached media with their sidecar metadata, newest first.
// Files without a sidecar are reported with size and modification time only.
func (c *Cache) Entries() ([]CacheEntry, error) {
	if c == nil {
		return nil, errors.New("cache unavailable")
	}
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache dir: %w", err)
	}
	entries := make([]CacheEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, "pexels_") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".mp4" && ext != ".jpg" {
			continue
		}
		entry, err := c.readEntry(name)
		if err != nil {
			info, statErr := de.Info()
			if statErr != nil {
				continue
			}
			entry = CacheEntry{
				Name:     name,
				Kind:     kindForExt(ext),
				Bytes:    info.Size(),
				StoredAt: info.ModTime().UTC(),
			}
		}
		entries = append(entries, entry)
	}
	slices.SortFunc(entries, func(a, b CacheEntry) int {
		return b.StoredAt.Compare(a.StoredAt)
	})
	return entries, nil
}

// Clear removes every cached media file and its sidecar, returning how many
// media files were deleted.
func (c *Cache) Clear() (int, error) {
	entries, err := c.Entries()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(c.dir, entry.Name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", entry.Name, err)
		}
		_ = os.Remove(c.sidecarPath(entry.Name))
		removed++
	}
	return removed, nil
}

func (c *Cache) sidecarPath(name string) string {
	return filepath.Join(c.dir, strings.TrimSuffix(name, filepath.Ext(name))+".json")
}

func (c *Cache) writeEntry(entry CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return writeFileAtomic(c.sidecarPath(entry.Name), data, 0o644)
}

func (c *Cache) readEntry(name string) (CacheEntry, error) {
	data, err := os.ReadFile(c.sidecarPath(name))
	if err != nil {
		return CacheEntry{}, err
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return CacheEntry{}, fmt.Errorf("decode cache metadata: %w", err)
	}
	if entry.Name == "" {
		entry.Name = name
	}
	return entry, nil
}

func kindForExt(ext string) render.BackgroundKind {
	if ext == ".mp4" {
		return render.BackgroundVideo
	}
	return render.BackgroundImage
}

func truncateURL(rawURL string) string {
	if len(rawURL) <= 80 {
		return rawURL
	}
	return rawURL[:80] + "..."
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
