package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FFmpegVersion returns the first line of `ffmpeg -version`.
func FFmpegVersion(ctx context.Context, binary string) (string, error) {
	out, err := exec.CommandContext(ctx, binary, "-hide_banner", "-version").Output() //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// FFmpegHasFilter reports whether the ffmpeg build lists the named filter.
// The subtitles filter, for example, is only present when built with libass.
func FFmpegHasFilter(ctx context.Context, binary, filter string) (bool, error) {
	out, err := exec.CommandContext(ctx, binary, "-hide_banner", "-filters").Output() //nolint:gosec
	if err != nil {
		return false, fmt.Errorf("%s -filters: %w", binary, err)
	}
	return listsFilter(out, filter), nil
}

// listsFilter scans `ffmpeg -filters` output, whose rows look like
// " T.. subtitles         V->V       Render text subtitles...".
func listsFilter(output []byte, filter string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == filter {
			return true
		}
	}
	return false
}
