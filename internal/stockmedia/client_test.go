package stockmedia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearchVideosBuildsQueryAndPicksTallestFile(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		if r.URL.Path != "/videos/search" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		resp := map[string]any{
			"videos": []map[string]any{
				{
					"id":       1,
					"duration": 12,
					"image":    "https://images.example/1.jpg",
					"video_files": []map[string]any{
						{"link": "https://videos.example/1-sd.mp4", "width": 540, "height": 960},
						{"link": "https://videos.example/1-hd.mp4", "width": 720, "height": 1280},
						{"link": "https://videos.example/1-fhd.mp4", "width": 1080, "height": 1920},
						{"link": "", "width": 2160, "height": 3840},
					},
				},
				{
					"id":       2,
					"duration": 3,
					"video_files": []map[string]any{
						{"link": "https://videos.example/2.mp4", "width": 1080, "height": 1920},
					},
				},
				{
					"id":       3,
					"duration": 30,
					"video_files": []map[string]any{
						{"link": "https://videos.example/3.mp4", "width": 360, "height": 640},
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "abcdefghijkl", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New client failed: %v", err)
	}

	videos, err := client.SearchVideos(context.Background(), VideoQuery{Query: "ocean waves", Orientation: "portrait"})
	if err != nil {
		t.Fatalf("SearchVideos returned error: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(videos))
	}
	if videos[0].URL != "https://videos.example/1-fhd.mp4" || videos[0].Height != 1920 {
		t.Fatalf("unexpected candidate: %+v", videos[0])
	}
	if videos[0].Duration != 12 || videos[0].Thumbnail != "https://images.example/1.jpg" {
		t.Fatalf("unexpected metadata: %+v", videos[0])
	}

	if captured == nil {
		t.Fatal("expected request to be captured")
	}
	if got := captured.Header.Get("Authorization"); got != "abcdefghijkl" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	query := captured.URL.Query()
	checks := map[string]string{
		"query":       "ocean waves",
		"orientation": "portrait",
		"per_page":    "5",
		"size":        "medium",
	}
	for key, want := range checks {
		if got := query.Get(key); got != want {
			t.Fatalf("expected %s=%q, got %q", key, want, got)
		}
	}
}

func TestSearchPhotosPrefersLarge2x(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.URL.Query().Get("size"); got != "large" {
			t.Errorf("expected size=large, got %q", got)
		}
		resp := map[string]any{
			"photos": []map[string]any{
				{"id": 10, "width": 3000, "height": 4000, "src": map[string]any{
					"original": "https://images.example/10-orig.jpeg",
					"large2x":  "https://images.example/10-2x.jpeg",
					"large":    "https://images.example/10-l.jpeg",
				}},
				{"id": 11, "src": map[string]any{
					"original": "https://images.example/11-orig.jpeg",
					"large":    "https://images.example/11-l.jpeg",
				}},
				{"id": 12, "src": map[string]any{
					"original": "https://images.example/12-orig.jpeg",
				}},
				{"id": 13, "src": map[string]any{}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "abcdefghijkl", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New client failed: %v", err)
	}
	photos, err := client.SearchPhotos(context.Background(), PhotoQuery{Query: "forest"})
	if err != nil {
		t.Fatalf("SearchPhotos returned error: %v", err)
	}
	want := []string{
		"https://images.example/10-2x.jpeg",
		"https://images.example/11-l.jpeg",
		"https://images.example/12-orig.jpeg",
	}
	if len(photos) != len(want) {
		t.Fatalf("expected %d photos, got %d", len(want), len(photos))
	}
	for i, url := range want {
		if photos[i].URL != url {
			t.Fatalf("photo %d: expected %q, got %q", i, url, photos[i].URL)
		}
	}
}

func TestSearchReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid key"))
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "abcdefghijkl", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New client failed: %v", err)
	}
	_, err = client.SearchPhotos(context.Background(), PhotoQuery{Query: "forest"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "invalid key") {
		t.Fatalf("expected body in error, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected StatusError 401, got %v", err)
	}
}

func TestFetchStreamsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("mediabytes"))
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "abcdefghijkl", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New client failed: %v", err)
	}
	var buf bytes.Buffer
	n, err := client.Fetch(context.Background(), server.URL+"/video/1.mp4", &buf)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if n != int64(len("mediabytes")) || buf.String() != "mediabytes" {
		t.Fatalf("unexpected payload %q (%d bytes)", buf.String(), n)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{APIKey: "  "}); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
