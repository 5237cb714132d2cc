package ffprobe

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"voxreel/internal/testsupport"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio"},
			{CodecType: "video", Width: 1080, Height: 1920},
		},
		Format: Format{Duration: "12.300000", Size: "1000"},
	}
	if result.VideoStreamCount() != 1 || result.AudioStreamCount() != 1 {
		t.Fatalf("unexpected stream counts: %d video %d audio", result.VideoStreamCount(), result.AudioStreamCount())
	}
	video, ok := result.FirstVideo()
	if !ok || video.Width != 1080 || video.Height != 1920 {
		t.Fatalf("unexpected first video %+v", video)
	}
	if result.DurationSeconds() != 12.3 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestDurationUsesProbeOutput(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	testsupport.WriteScript(t, stub, `echo '{"streams":[{"codec_type":"audio"}],"format":{"duration":"12.300000"}}'`)

	got, err := Duration(context.Background(), stub, "speech.wav")
	if err != nil {
		t.Fatalf("Duration returned error: %v", err)
	}
	if got != 12300*time.Millisecond {
		t.Fatalf("Duration = %v, want 12.3s", got)
	}
}

func TestDurationRejectsMissingValue(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	testsupport.WriteScript(t, stub, `echo '{"format":{}}'`)
	if _, err := Duration(context.Background(), stub, "speech.wav"); err == nil {
		t.Fatal("expected error for missing duration")
	}
}

func TestInspectRequiresPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
