package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"voxreel/internal/config"
	"voxreel/internal/deps"
	"voxreel/internal/stockmedia"
)

const pexelsCheckTimeout = 10 * time.Second

// CheckPexels verifies that the Pexels API is reachable and the key is
// accepted. It issues a single one-result photo search.
func CheckPexels(ctx context.Context, baseURL, apiKey string) Result {
	const name = "Pexels"

	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}
	client, err := stockmedia.New(stockmedia.Config{
		APIKey:        apiKey,
		BaseURL:       baseURL,
		SearchTimeout: pexelsCheckTimeout,
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, pexelsCheckTimeout)
	defer cancel()

	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizePexelsError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckPexelsFromConfig reports the provider state, treating a missing key as
// a passing check since backgrounds then fall back to a plain color.
func CheckPexelsFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "Pexels"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.PexelsConfigured() {
		return Result{Name: name, Passed: true, Detail: "Not configured (plain color backgrounds)"}
	}
	return CheckPexels(ctx, cfg.Pexels.BaseURL, cfg.Pexels.APIKey)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates every binary a full run shells out to.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

// CheckSubtitleFilter verifies ffmpeg was built with libass, which the
// subtitles filter needs to burn captions in.
func CheckSubtitleFilter(ctx context.Context, ffmpegBinary string) Result {
	const name = "FFmpeg subtitles filter"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ok, err := deps.FFmpegHasFilter(checkCtx, ffmpegBinary, "subtitles")
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if !ok {
		return Result{Name: name, Detail: "missing (ffmpeg built without libass)"}
	}
	return Result{Name: name, Passed: true, Detail: "available"}
}

func summarizePexelsError(err error) string {
	var statusErr *stockmedia.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "auth failed (invalid api key)"
		case http.StatusTooManyRequests:
			return "rate limited (try again later)"
		default:
			return fmt.Sprintf("search failed (%d)", statusErr.StatusCode)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (Pexels API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (Pexels API unreachable)"
	}
	return err.Error()
}
