package stockmedia

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"voxreel/internal/render"
)

type countingFetcher struct {
	calls int
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, rawURL string, w io.Writer) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	n, err := io.WriteString(w, "payload:"+rawURL)
	return int64(n), err
}

func TestFileNameUsesURLHashAndKindExtension(t *testing.T) {
	pattern := regexp.MustCompile(`^pexels_[0-9a-f]{12}\.(mp4|jpg)$`)
	cases := map[string]string{
		"https://videos.pexels.com/video-files/1/1.mp4": ".mp4",
		"https://cdn.example/clip.mp4":                  ".mp4",
		"https://images.pexels.com/photos/1/1.jpeg":     ".jpg",
	}
	for url, ext := range cases {
		name := FileName(url)
		if !pattern.MatchString(name) {
			t.Fatalf("unexpected name %q for %s", name, url)
		}
		if filepath.Ext(name) != ext {
			t.Fatalf("expected %s extension for %s, got %s", ext, url, name)
		}
		if FileName(url) != name {
			t.Fatalf("file name not stable for %s", url)
		}
	}
	// md5("abc") = 900150983cd24fb0d6963f7d28e17f72
	if got := FileName("abc"); got != "pexels_900150983cd2.jpg" {
		t.Fatalf("unexpected name for abc: %s", got)
	}
}

func TestCacheFetchHitSkipsNetwork(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, nil)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	url := "https://videos.example/video/abc.mp4"
	fetcher := &countingFetcher{}

	first, err := cache.Fetch(context.Background(), url, CacheEntry{Kind: render.BackgroundVideo, Keywords: []string{"ocean"}}, fetcher)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := cache.Fetch(context.Background(), url, CacheEntry{}, fetcher)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if first != second {
		t.Fatalf("expected same path, got %s and %s", first, second)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected a single download, got %d", fetcher.calls)
	}
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read cached file: %v", err)
	}
	if string(data) != "payload:"+url {
		t.Fatalf("unexpected cached payload %q", data)
	}
	if _, err := os.Stat(first + ".lock"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected lock file to be removed, stat err=%v", err)
	}
}

func TestCacheFetchFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, nil)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	url := "https://images.example/photo.jpeg"
	_, err = cache.Fetch(context.Background(), url, CacheEntry{}, &countingFetcher{err: errors.New("boom")})
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if _, ok := cache.Lookup(url); ok {
		t.Fatal("failed download must not be cached")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestCacheEntriesReadsSidecars(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, nil)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	url := "https://videos.example/video/xyz.mp4"
	if _, err := cache.Fetch(context.Background(), url, CacheEntry{Kind: render.BackgroundVideo, Keywords: []string{"city"}}, &countingFetcher{}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	orphan := filepath.Join(dir, "pexels_000000000000.jpg")
	if err := os.WriteFile(orphan, []byte("jpg"), 0o644); err != nil {
		t.Fatalf("write orphan: %v", err)
	}

	entries, err := cache.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	var found bool
	for _, e := range entries {
		if e.SourceURL == url {
			found = true
			if e.Kind != render.BackgroundVideo || len(e.Keywords) != 1 || e.Keywords[0] != "city" {
				t.Fatalf("unexpected sidecar entry %+v", e)
			}
			if e.Bytes != int64(len("payload:"+url)) {
				t.Fatalf("unexpected byte count %d", e.Bytes)
			}
		}
		if e.Name == "pexels_000000000000.jpg" && e.Kind != render.BackgroundImage {
			t.Fatalf("expected orphan to be classified as image, got %v", e.Kind)
		}
	}
	if !found {
		t.Fatal("sidecar entry missing")
	}
}

func TestCacheClearRemovesMediaAndSidecars(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, nil)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	fetcher := &countingFetcher{}
	for _, url := range []string{"https://videos.example/video/a.mp4", "https://images.example/b.jpeg"} {
		if _, err := cache.Fetch(context.Background(), url, CacheEntry{Kind: render.BackgroundImage}, fetcher); err != nil {
			t.Fatalf("Fetch %s: %v", url, err)
		}
	}
	keep := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	removed, err := cache.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "notes.txt" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only notes.txt to remain, got %v", names)
	}
}
