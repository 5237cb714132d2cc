package stockmedia

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"voxreel/internal/config"
	"voxreel/internal/keywords"
	"voxreel/internal/logging"
	"voxreel/internal/render"
)

// choiceWindow bounds the random pick to the top results so backgrounds vary
// between runs while staying relevant.
const choiceWindow = 3

// Background is the outcome of a media selection.
// Kind is BackgroundNone exactly when Path is empty.
type Background struct {
	Path     string                `json:"path"`
	Kind     render.BackgroundKind `json:"kind"`
	Keywords []string              `json:"keywords"`
}

// Searcher is the provider surface the selector depends on.
type Searcher interface {
	Fetcher
	SearchVideos(ctx context.Context, q VideoQuery) ([]Candidate, error)
	SearchPhotos(ctx context.Context, q PhotoQuery) ([]Candidate, error)
}

// Options tunes search filters.
type Options struct {
	Orientation string
	PerPage     int
	MinDuration int
	MinHeight   int
}

// Selector picks a background for a script from stock media.
type Selector struct {
	searcher Searcher
	cache    *Cache
	rng      *rand.Rand
	opts     Options
	logger   *slog.Logger
}

// NewSelector builds a Selector. A nil searcher means the provider is not
// configured and every selection yields a plain-color background.
// A nil rng is replaced with a time-seeded source.
func NewSelector(searcher Searcher, cache *Cache, rng *rand.Rand, opts Options, logger *slog.Logger) *Selector {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{
		searcher: searcher,
		cache:    cache,
		rng:      rng,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "media"),
	}
}

// NewFromConfig wires a Pexels client and media cache from configuration.
// Keys that are too short leave the selector unconfigured.
func NewFromConfig(cfg *config.Config, rng *rand.Rand, logger *slog.Logger) (*Selector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("stockmedia: config is nil")
	}
	cache, err := NewCache(cfg.Paths.CacheDir, logger)
	if err != nil {
		return nil, err
	}
	opts := Options{
		Orientation: cfg.Pexels.Orientation,
		PerPage:     cfg.Pexels.PerPage,
		MinDuration: cfg.Pexels.MinVideoSeconds,
		MinHeight:   cfg.Pexels.MinVideoHeight,
	}
	if !cfg.PexelsConfigured() {
		return NewSelector(nil, cache, rng, opts, logger), nil
	}
	client, err := New(Config{
		APIKey:          cfg.Pexels.APIKey,
		BaseURL:         cfg.Pexels.BaseURL,
		SearchTimeout:   time.Duration(cfg.Pexels.SearchTimeoutSeconds) * time.Second,
		DownloadTimeout: time.Duration(cfg.Pexels.DownloadTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return NewSelector(client, cache, rng, opts, logger), nil
}

// Available reports whether a provider is configured.
func (s *Selector) Available() bool {
	return s != nil && s.searcher != nil
}

// AutoFetchBackground derives keywords from text and tries, in order: a video
// for the full query (when preferVideo), a photo for the full query, and a
// photo for the first keyword alone. Provider and download failures are
// logged and treated as empty results; the zero-media outcome is a
// BackgroundNone result carrying the keywords that were tried.
func (s *Selector) AutoFetchBackground(ctx context.Context, text string, preferVideo bool, orientation string) Background {
	if !s.Available() {
		if s != nil {
			s.logger.Info("stock media provider not configured; using plain color background")
		}
		return Background{Kind: render.BackgroundNone, Keywords: []string{}}
	}
	if strings.TrimSpace(orientation) == "" {
		orientation = s.opts.Orientation
	}

	kw := keywords.ExtractOrFallback(text, keywords.DefaultMax)
	query := strings.Join(kw, " ")
	s.logger.Info("searching stock media",
		logging.Strings("keywords", kw),
		logging.String("orientation", orientation),
	)

	if preferVideo {
		videos, err := s.searcher.SearchVideos(ctx, VideoQuery{
			Query:       query,
			Orientation: orientation,
			PerPage:     s.opts.PerPage,
			MinDuration: s.opts.MinDuration,
			MinHeight:   s.opts.MinHeight,
		})
		s.warnSearch(err, "video", query)
		if path := s.downloadOne(ctx, videos, render.BackgroundVideo, kw); path != "" {
			return Background{Path: path, Kind: render.BackgroundVideo, Keywords: kw}
		}
	}

	if path := s.photo(ctx, query, orientation, kw); path != "" {
		return Background{Path: path, Kind: render.BackgroundImage, Keywords: kw}
	}

	if len(kw) > 1 {
		narrow := []string{kw[0]}
		s.logger.Info("retrying photo search with single keyword", logging.String("query", kw[0]))
		if path := s.photo(ctx, kw[0], orientation, narrow); path != "" {
			return Background{Path: path, Kind: render.BackgroundImage, Keywords: narrow}
		}
	}

	s.logger.Info("no stock media found; using plain color background", logging.Strings("keywords", kw))
	return Background{Kind: render.BackgroundNone, Keywords: kw}
}

func (s *Selector) photo(ctx context.Context, query, orientation string, kw []string) string {
	photos, err := s.searcher.SearchPhotos(ctx, PhotoQuery{
		Query:       query,
		Orientation: orientation,
		PerPage:     s.opts.PerPage,
	})
	s.warnSearch(err, "photo", query)
	return s.downloadOne(ctx, photos, render.BackgroundImage, kw)
}

func (s *Selector) downloadOne(ctx context.Context, candidates []Candidate, kind render.BackgroundKind, kw []string) string {
	if len(candidates) == 0 {
		return ""
	}
	window := min(len(candidates), choiceWindow)
	chosen := candidates[s.rng.IntN(window)]
	path, err := s.cache.Fetch(ctx, chosen.URL, CacheEntry{Kind: kind, Keywords: kw}, s.searcher)
	if err != nil {
		logging.WarnWithContext(s.logger, "media download failed", "media_download_failed",
			logging.String("url", truncateURL(chosen.URL)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access to the media host"),
			logging.String(logging.FieldImpact, "falling back to the next background option"),
		)
		return ""
	}
	return path
}

func (s *Selector) warnSearch(err error, kind, query string) {
	if err == nil {
		return
	}
	logging.WarnWithContext(s.logger, "stock media search failed", "media_search_failed",
		logging.String("kind", kind),
		logging.String("query", query),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "verify the Pexels API key and network access"),
		logging.String(logging.FieldImpact, "search treated as returning no results"),
	)
}
