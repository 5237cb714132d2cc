package stockmedia

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"slices"
	"testing"

	"voxreel/internal/config"
	"voxreel/internal/render"
)

type fakeSearcher struct {
	videos       []Candidate
	photos       map[string][]Candidate
	videoErr     error
	photoErr     error
	fetchErr     error
	videoQueries []string
	photoQueries []string
	fetched      []string
}

func (f *fakeSearcher) SearchVideos(_ context.Context, q VideoQuery) ([]Candidate, error) {
	f.videoQueries = append(f.videoQueries, q.Query)
	return f.videos, f.videoErr
}

func (f *fakeSearcher) SearchPhotos(_ context.Context, q PhotoQuery) ([]Candidate, error) {
	f.photoQueries = append(f.photoQueries, q.Query)
	return f.photos[q.Query], f.photoErr
}

func (f *fakeSearcher) Fetch(_ context.Context, rawURL string, w io.Writer) (int64, error) {
	f.fetched = append(f.fetched, rawURL)
	if f.fetchErr != nil {
		return 0, f.fetchErr
	}
	n, err := io.WriteString(w, rawURL)
	return int64(n), err
}

func newTestSelector(t *testing.T, searcher Searcher) *Selector {
	t.Helper()
	cache, err := NewCache(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return NewSelector(searcher, cache, rand.New(rand.NewPCG(1, 2)), Options{Orientation: "portrait"}, nil)
}

const script = "Les chats adorent dormir. Les chats jouent souvent avec des pelotes."

func TestAutoFetchUnconfiguredMakesNoCalls(t *testing.T) {
	sel := newTestSelector(t, nil)
	bg := sel.AutoFetchBackground(context.Background(), script, true, "portrait")
	if bg.Kind != render.BackgroundNone || bg.Path != "" || len(bg.Keywords) != 0 {
		t.Fatalf("unexpected background %+v", bg)
	}
	if bg.Keywords == nil {
		t.Fatal("expected empty, non-nil keyword list")
	}
}

func TestNewFromConfigShortKeyIsUnconfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.CacheDir = t.TempDir()
	cfg.Pexels.APIKey = "short"
	sel, err := NewFromConfig(&cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if sel.Available() {
		t.Fatal("expected selector to be unavailable with a short key")
	}
	cfg.Pexels.APIKey = "0123456789ab"
	sel, err = NewFromConfig(&cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if !sel.Available() {
		t.Fatal("expected selector to be available with a long key")
	}
}

func TestAutoFetchPrefersVideo(t *testing.T) {
	fs := &fakeSearcher{videos: []Candidate{{URL: "https://videos.example/video/a.mp4"}}}
	sel := newTestSelector(t, fs)
	bg := sel.AutoFetchBackground(context.Background(), script, true, "")
	if bg.Kind != render.BackgroundVideo || bg.Path == "" {
		t.Fatalf("expected video background, got %+v", bg)
	}
	if !slices.Equal(bg.Keywords, []string{"chats", "adorent", "souvent"}) {
		t.Fatalf("unexpected keywords %v", bg.Keywords)
	}
	if len(fs.photoQueries) != 0 {
		t.Fatalf("photo search should not run after a video hit: %v", fs.photoQueries)
	}
	if fs.videoQueries[0] != "chats adorent souvent" {
		t.Fatalf("unexpected query %q", fs.videoQueries[0])
	}
}

func TestAutoFetchFallsBackToPhoto(t *testing.T) {
	fs := &fakeSearcher{
		videoErr: errors.New("timeout"),
		photos: map[string][]Candidate{
			"chats adorent souvent": {{URL: "https://images.example/p1.jpeg"}},
		},
	}
	sel := newTestSelector(t, fs)
	bg := sel.AutoFetchBackground(context.Background(), script, true, "portrait")
	if bg.Kind != render.BackgroundImage || bg.Path == "" {
		t.Fatalf("expected image background, got %+v", bg)
	}
	if len(bg.Keywords) != 3 {
		t.Fatalf("expected full keyword list, got %v", bg.Keywords)
	}
}

func TestAutoFetchSkipsVideoWhenPhotoPreferred(t *testing.T) {
	fs := &fakeSearcher{
		videos: []Candidate{{URL: "https://videos.example/video/a.mp4"}},
		photos: map[string][]Candidate{
			"chats adorent souvent": {{URL: "https://images.example/p1.jpeg"}},
		},
	}
	sel := newTestSelector(t, fs)
	bg := sel.AutoFetchBackground(context.Background(), script, false, "portrait")
	if bg.Kind != render.BackgroundImage {
		t.Fatalf("expected image background, got %+v", bg)
	}
	if len(fs.videoQueries) != 0 {
		t.Fatalf("video search should be skipped, got %v", fs.videoQueries)
	}
}

func TestAutoFetchRetriesWithFirstKeyword(t *testing.T) {
	fs := &fakeSearcher{
		photos: map[string][]Candidate{
			"chats": {{URL: "https://images.example/cat.jpeg"}},
		},
	}
	sel := newTestSelector(t, fs)
	bg := sel.AutoFetchBackground(context.Background(), script, true, "portrait")
	if bg.Kind != render.BackgroundImage {
		t.Fatalf("expected image background, got %+v", bg)
	}
	if !slices.Equal(bg.Keywords, []string{"chats"}) {
		t.Fatalf("expected single keyword, got %v", bg.Keywords)
	}
	if !slices.Equal(fs.photoQueries, []string{"chats adorent souvent", "chats"}) {
		t.Fatalf("unexpected photo queries %v", fs.photoQueries)
	}
}

func TestAutoFetchNothingFoundReturnsKeywords(t *testing.T) {
	fs := &fakeSearcher{}
	sel := newTestSelector(t, fs)
	bg := sel.AutoFetchBackground(context.Background(), script, true, "portrait")
	if bg.Kind != render.BackgroundNone || bg.Path != "" {
		t.Fatalf("expected none background, got %+v", bg)
	}
	if !slices.Equal(bg.Keywords, []string{"chats", "adorent", "souvent"}) {
		t.Fatalf("unexpected keywords %v", bg.Keywords)
	}
}

func TestAutoFetchUsesFallbackKeywords(t *testing.T) {
	fs := &fakeSearcher{}
	sel := newTestSelector(t, fs)
	bg := sel.AutoFetchBackground(context.Background(), "le la de", true, "portrait")
	if !slices.Equal(bg.Keywords, []string{"abstract", "background"}) {
		t.Fatalf("unexpected keywords %v", bg.Keywords)
	}
	if fs.videoQueries[0] != "abstract background" {
		t.Fatalf("unexpected query %q", fs.videoQueries[0])
	}
}

func TestAutoFetchDownloadFailureFallsThrough(t *testing.T) {
	fs := &fakeSearcher{
		videos:   []Candidate{{URL: "https://videos.example/video/a.mp4"}},
		fetchErr: errors.New("connection reset"),
	}
	sel := newTestSelector(t, fs)
	bg := sel.AutoFetchBackground(context.Background(), script, true, "portrait")
	if bg.Kind != render.BackgroundNone {
		t.Fatalf("expected none background, got %+v", bg)
	}
}

func TestAutoFetchChoosesWithinTopThree(t *testing.T) {
	candidates := []Candidate{
		{URL: "https://videos.example/video/0.mp4"},
		{URL: "https://videos.example/video/1.mp4"},
		{URL: "https://videos.example/video/2.mp4"},
		{URL: "https://videos.example/video/3.mp4"},
		{URL: "https://videos.example/video/4.mp4"},
	}
	for i := 0; i < 20; i++ {
		fs := &fakeSearcher{videos: candidates}
		sel := newTestSelector(t, fs)
		sel.rng = rand.New(rand.NewPCG(uint64(i), 7))
		sel.AutoFetchBackground(context.Background(), script, true, "portrait")
		if len(fs.fetched) != 1 {
			t.Fatalf("expected one download, got %v", fs.fetched)
		}
		if idx := slices.IndexFunc(candidates, func(c Candidate) bool { return c.URL == fs.fetched[0] }); idx > 2 {
			t.Fatalf("chose candidate %d outside the first three", idx)
		}
	}
}
