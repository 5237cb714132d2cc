package stockmedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL         = "https://api.pexels.com"
	defaultUserAgent       = "voxreel/dev"
	defaultSearchTimeout   = 10 * time.Second
	defaultDownloadTimeout = 60 * time.Second
	defaultPerPage         = 5
	defaultMinDuration     = 5
	defaultMinHeight       = 720
)

// Config describes the Pexels client configuration.
type Config struct {
	APIKey          string
	BaseURL         string
	UserAgent       string
	SearchTimeout   time.Duration
	DownloadTimeout time.Duration
	HTTPClient      *http.Client
}

// Client wraps the Pexels video and photo search endpoints.
type Client struct {
	apiKey          string
	userAgent       string
	baseURL         *url.URL
	searchTimeout   time.Duration
	downloadTimeout time.Duration
	http            *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("pexels: api key is required")
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("pexels: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	searchTimeout := cfg.SearchTimeout
	if searchTimeout <= 0 {
		searchTimeout = defaultSearchTimeout
	}
	downloadTimeout := cfg.DownloadTimeout
	if downloadTimeout <= 0 {
		downloadTimeout = defaultDownloadTimeout
	}
	return &Client{
		apiKey:          apiKey,
		userAgent:       userAgent,
		baseURL:         baseURL,
		searchTimeout:   searchTimeout,
		downloadTimeout: downloadTimeout,
		http:            client,
	}, nil
}

// VideoQuery describes a video search.
type VideoQuery struct {
	Query       string
	Orientation string
	PerPage     int
	MinDuration int
	MinHeight   int
}

// PhotoQuery describes a photo search.
type PhotoQuery struct {
	Query       string
	Orientation string
	PerPage     int
}

// Candidate is a downloadable media file returned by a search.
type Candidate struct {
	ID        int64
	URL       string
	Width     int
	Height    int
	Duration  int
	Thumbnail string
}

// SearchVideos returns one candidate per result video, choosing its tallest
// file that meets the minimum height. Videos shorter than MinDuration are skipped.
func (c *Client) SearchVideos(ctx context.Context, q VideoQuery) ([]Candidate, error) {
	if c == nil {
		return nil, errors.New("pexels: client is nil")
	}
	minDuration := q.MinDuration
	if minDuration <= 0 {
		minDuration = defaultMinDuration
	}
	minHeight := q.MinHeight
	if minHeight <= 0 {
		minHeight = defaultMinHeight
	}

	var payload videoSearchResponse
	endpoint := c.baseURL.JoinPath("videos", "search")
	if err := c.search(ctx, endpoint, searchParams(q.Query, q.Orientation, q.PerPage, "medium"), &payload); err != nil {
		return nil, fmt.Errorf("pexels: video search: %w", err)
	}

	results := make([]Candidate, 0, len(payload.Videos))
	for _, video := range payload.Videos {
		if video.Duration < minDuration {
			continue
		}
		var best *videoFile
		for i := range video.VideoFiles {
			file := &video.VideoFiles[i]
			if file.Height < minHeight || strings.TrimSpace(file.Link) == "" {
				continue
			}
			if best == nil || file.Height > best.Height {
				best = file
			}
		}
		if best == nil {
			continue
		}
		results = append(results, Candidate{
			ID:        video.ID,
			URL:       best.Link,
			Width:     best.Width,
			Height:    best.Height,
			Duration:  video.Duration,
			Thumbnail: video.Image,
		})
	}
	return results, nil
}

// SearchPhotos returns photo candidates, preferring the large2x rendition.
func (c *Client) SearchPhotos(ctx context.Context, q PhotoQuery) ([]Candidate, error) {
	if c == nil {
		return nil, errors.New("pexels: client is nil")
	}
	var payload photoSearchResponse
	endpoint := c.baseURL.JoinPath("v1", "search")
	if err := c.search(ctx, endpoint, searchParams(q.Query, q.Orientation, q.PerPage, "large"), &payload); err != nil {
		return nil, fmt.Errorf("pexels: photo search: %w", err)
	}

	results := make([]Candidate, 0, len(payload.Photos))
	for _, photo := range payload.Photos {
		link := firstNonEmpty(photo.Src.Large2x, photo.Src.Large, photo.Src.Original)
		if link == "" {
			continue
		}
		results = append(results, Candidate{
			ID:     photo.ID,
			URL:    link,
			Width:  photo.Width,
			Height: photo.Height,
		})
	}
	return results, nil
}

// Fetch streams the media at rawURL into w and returns the byte count.
func (c *Client) Fetch(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	if c == nil {
		return 0, errors.New("pexels: client is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("pexels: build download request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("pexels: download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("pexels: download failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("pexels: read media body: %w", err)
	}
	return n, nil
}

// Ping issues a minimal photo search to confirm the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.SearchPhotos(ctx, PhotoQuery{Query: "nature", PerPage: 1})
	return err
}

func (c *Client) search(ctx context.Context, endpoint *url.URL, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	endpoint.RawQuery = params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is returned when the API answers with an HTTP error.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "status " + e.Status
	}
	return fmt.Sprintf("status %s: %s", e.Status, e.Body)
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
}

func searchParams(query, orientation string, perPage int, size string) url.Values {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	params := url.Values{}
	params.Set("query", strings.TrimSpace(query))
	if orientation = strings.TrimSpace(orientation); orientation != "" {
		params.Set("orientation", orientation)
	}
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("size", size)
	return params
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type videoSearchResponse struct {
	Videos []struct {
		ID         int64       `json:"id"`
		Duration   int         `json:"duration"`
		Image      string      `json:"image"`
		VideoFiles []videoFile `json:"video_files"`
	} `json:"videos"`
}

type videoFile struct {
	Link   string `json:"link"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type photoSearchResponse struct {
	Photos []struct {
		ID     int64 `json:"id"`
		Width  int   `json:"width"`
		Height int   `json:"height"`
		Src    struct {
			Original string `json:"original"`
			Large2x  string `json:"large2x"`
			Large    string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}
