package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"voxreel/internal/config"
	"voxreel/internal/hardware"
	"voxreel/internal/services"
)

func TestToBGR(t *testing.T) {
	cases := map[string]string{
		"white":   "FFFFFF",
		"Red":     "0000FF",
		"blue":    "FF0000",
		"yellow":  "00FFFF",
		"#1a2b3c": "3c2b1a",
		"#1a1a2e": "2e1a1a",
		"AABBCC":  "CCBBAA",
		"#12345":  "FFFFFF",
		"magenta": "FFFFFF",
		"#zzzzzz": "FFFFFF",
	}
	for input, want := range cases {
		if got := ToBGR(input); got != want {
			t.Errorf("ToBGR(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestColorSource(t *testing.T) {
	cases := map[string]string{
		"#1A1A2E": "0x1a1a2e",
		"1a1a2e":  "0x1a1a2e",
		"Navy":    "navy",
		"#123":    "0x000000",
		"a:b":     "0x000000",
	}
	for input, want := range cases {
		if got := ColorSource(input); got != want {
			t.Errorf("ColorSource(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestPositionAlignment(t *testing.T) {
	cases := map[string]int{"bottom": 2, "center": 5, "top": 8, "": 5}
	for input, want := range cases {
		pos, err := ParsePosition(input)
		if err != nil {
			t.Fatalf("ParsePosition(%q): %v", input, err)
		}
		if pos.Alignment() != want {
			t.Errorf("%q alignment = %d, want %d", input, pos.Alignment(), want)
		}
	}
	if _, err := ParsePosition("left"); err == nil {
		t.Fatal("expected error for unknown position")
	}
}

func TestForceStyle(t *testing.T) {
	style := DefaultSubtitleStyle()
	style.FontColor = "yellow"
	style.Position = PositionBottom
	want := "FontSize=28,PrimaryColour=&H0000FFFF,OutlineColour=&H00000000,Outline=3,Alignment=2,MarginV=100,Bold=1"
	if got := style.ForceStyle(); got != want {
		t.Fatalf("ForceStyle() = %q, want %q", got, want)
	}
}

func TestDetectBackgroundKind(t *testing.T) {
	dir := t.TempDir()
	touch := func(name string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}
	cases := map[string]BackgroundKind{
		touch("clip.MOV"):              BackgroundVideo,
		touch("clip.webm"):             BackgroundVideo,
		touch("photo.jpeg"):            BackgroundImage,
		touch("photo.bmp"):             BackgroundImage,
		touch("notes.txt"):             BackgroundNone,
		filepath.Join(dir, "gone.mp4"): BackgroundNone,
		"":                             BackgroundNone,
	}
	for path, want := range cases {
		if got := DetectBackgroundKind(path); got != want {
			t.Errorf("DetectBackgroundKind(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestParseBackgroundKind(t *testing.T) {
	for input, want := range map[string]BackgroundKind{"video": BackgroundVideo, "IMAGE": BackgroundImage, "none": BackgroundNone} {
		got, err := ParseBackgroundKind(input)
		if err != nil || got != want {
			t.Fatalf("ParseBackgroundKind(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ParseBackgroundKind("gif"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSelectEncoder(t *testing.T) {
	cases := []struct {
		accel hardware.Accel
		name  string
	}{
		{hardware.AccelNone, "libx264"},
		{hardware.AccelVAAPI, "h264_vaapi"},
		{hardware.AccelNVENC, "h264_nvenc"},
	}
	for _, tc := range cases {
		enc := SelectEncoder(hardware.Fixed(16, tc.accel))
		if enc.Name() != tc.name {
			t.Errorf("accel %v: got %s, want %s", tc.accel, enc.Name(), tc.name)
		}
	}
	sw := SelectEncoder(hardware.Fixed(16, hardware.AccelNone))
	if got := sw.OutputArgs()["threads"]; got != "12" {
		t.Fatalf("expected 12 threads for 16 cpus, got %v", got)
	}
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func baseRequest(kind BackgroundKind) Request {
	req := Request{
		AudioPath:       "/work/speech.wav",
		SubtitlePath:    "/work/subtitles.srt",
		OutputPath:      "/out/video.mp4",
		BackgroundKind:  kind,
		BackgroundColor: "#1a1a2e",
		Style:           DefaultSubtitleStyle(),
	}
	switch kind {
	case BackgroundVideo:
		req.BackgroundPath = "/cache/bg.mp4"
	case BackgroundImage:
		req.BackgroundPath = "/cache/bg.jpg"
	}
	return req
}

func TestBuildArgsVideoBackground(t *testing.T) {
	args := BuildArgs(baseRequest(BackgroundVideo), 12500*time.Millisecond, softwareEncoder{threads: 6})
	if argAfter(args, "-stream_loop") != "-1" {
		t.Fatalf("expected looping input: %v", args)
	}
	graph := argAfter(args, "-filter_complex")
	for _, want := range []string{"scale=1080:1920", "force_original_aspect_ratio=increase", "crop=1080:1920", "subtitles", "force_style"} {
		if !strings.Contains(graph, want) {
			t.Fatalf("expected %q in filter graph %q", want, graph)
		}
	}
	if argAfter(args, "-t") != "12.500" {
		t.Fatalf("expected -t 12.500, got %v", args)
	}
	if argAfter(args, "-c:v") != "libx264" || argAfter(args, "-crf") != "23" || argAfter(args, "-threads") != "6" {
		t.Fatalf("unexpected software encoder args: %v", args)
	}
	if argAfter(args, "-c:a") != "aac" || argAfter(args, "-b:a") != "192k" {
		t.Fatalf("unexpected audio args: %v", args)
	}
	if !slices.Contains(args, "-shortest") || !slices.Contains(args, "-y") {
		t.Fatalf("expected -shortest and -y: %v", args)
	}
	if argAfter(args, "-movflags") != "+faststart" {
		t.Fatalf("expected faststart: %v", args)
	}
	maps := 0
	for _, a := range args {
		if a == "-map" {
			maps++
		}
	}
	if maps != 2 {
		t.Fatalf("expected two -map flags, got %d: %v", maps, args)
	}
	if !slices.Contains(args, "/out/video.mp4") {
		t.Fatalf("output path missing: %v", args)
	}
}

func TestBuildArgsImageBackground(t *testing.T) {
	args := BuildArgs(baseRequest(BackgroundImage), 10*time.Second, nvencEncoder{})
	if argAfter(args, "-loop") != "1" {
		t.Fatalf("expected looped still image: %v", args)
	}
	graph := argAfter(args, "-filter_complex")
	for _, want := range []string{"scale=2160:3840", "zoompan", "d=300", "s=1080x1920", "fps=30"} {
		if !strings.Contains(graph, want) {
			t.Fatalf("expected %q in filter graph %q", want, graph)
		}
	}
	if argAfter(args, "-c:v") != "h264_nvenc" || argAfter(args, "-preset") != "p4" || argAfter(args, "-cq") != "23" {
		t.Fatalf("unexpected nvenc args: %v", args)
	}
}

func TestBuildArgsColorBackgroundBoundsDuration(t *testing.T) {
	args := BuildArgs(baseRequest(BackgroundNone), 12500*time.Millisecond, vaapiEncoder{device: "/dev/dri/renderD129"})
	if argAfter(args, "-f") != "lavfi" {
		t.Fatalf("expected lavfi input: %v", args)
	}
	if !slices.Contains(args, "color=c=0x1a1a2e:s=1080x1920:d=12.500:r=30") {
		t.Fatalf("expected color source: %v", args)
	}
	if argAfter(args, "-t") != "12.500" {
		t.Fatalf("expected -t on the color path: %v", args)
	}
	if argAfter(args, "-vaapi_device") != "/dev/dri/renderD129" {
		t.Fatalf("expected vaapi device: %v", args)
	}
	graph := argAfter(args, "-filter_complex")
	if !strings.Contains(graph, "hwupload") || !strings.Contains(graph, "nv12") {
		t.Fatalf("expected hwupload in graph %q", graph)
	}
	if argAfter(args, "-c:v") != "h264_vaapi" || argAfter(args, "-qp") != "23" {
		t.Fatalf("unexpected vaapi args: %v", args)
	}
}

func TestBuildArgsEscapesSubtitlePath(t *testing.T) {
	req := baseRequest(BackgroundNone)
	req.SubtitlePath = "/w/it's:subs.srt"
	graph := argAfter(BuildArgs(req, 5*time.Second, softwareEncoder{threads: 2}), "-filter_complex")
	want := `subtitles=/w/it\\\'s\\:subs.srt:force_style=`
	if !strings.Contains(graph, want) {
		t.Fatalf("expected escaped subtitle path %q in filter graph %q", want, graph)
	}
}

func TestSubtitlePath(t *testing.T) {
	cases := map[string]string{
		"/work/subtitles.srt": "/work/subtitles.srt",
		`C:\work\subs.srt`:    `C\:/work/subs.srt`,
		"/w/it's.srt":         `/w/it\'s.srt`,
	}
	for input, want := range cases {
		if got := subtitlePath(input); got != want {
			t.Errorf("subtitlePath(%q) = %q, want %q", input, got, want)
		}
	}
}

type renderFixture struct {
	dir     string
	request Request
}

func newFixture(t *testing.T) renderFixture {
	t.Helper()
	dir := t.TempDir()
	audio := filepath.Join(dir, "speech.wav")
	srt := filepath.Join(dir, "subtitles.srt")
	for _, p := range []string{audio, srt} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return renderFixture{dir: dir, request: Request{
		AudioPath:       audio,
		SubtitlePath:    srt,
		OutputPath:      filepath.Join(dir, "out", "video.mp4"),
		BackgroundKind:  BackgroundNone,
		BackgroundColor: "#1a1a2e",
		Style:           DefaultSubtitleStyle(),
	}}
}

func fixedProbe(d time.Duration) DurationProbe {
	return func(context.Context, string) (time.Duration, error) { return d, nil }
}

func TestAssembleFallsBackToSoftwareOnce(t *testing.T) {
	fx := newFixture(t)
	profile := hardware.Fixed(8, hardware.AccelNVENC)
	var codecs []string
	runner := func(_ context.Context, _ string, args []string) ([]byte, error) {
		codec := argAfter(args, "-c:v")
		codecs = append(codecs, codec)
		if codec == "h264_nvenc" {
			return []byte("No NVENC capable devices found"), errors.New("exit status 1")
		}
		return nil, nil
	}
	asm, err := NewAssembler(nil, profile, nil, WithRunner(runner), WithDurationProbe(fixedProbe(5*time.Second)), WithoutDependencyCheck())
	if err != nil {
		t.Fatalf("NewAssembler: %v", err)
	}
	out, err := asm.Assemble(context.Background(), fx.request)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if out != fx.request.OutputPath {
		t.Fatalf("unexpected output %s", out)
	}
	if !slices.Equal(codecs, []string{"h264_nvenc", "libx264"}) {
		t.Fatalf("unexpected encoder sequence %v", codecs)
	}
	if profile.Accel() != hardware.AccelNone {
		t.Fatal("expected profile to be downgraded")
	}

	codecs = nil
	if _, err := asm.Assemble(context.Background(), fx.request); err != nil {
		t.Fatalf("second Assemble: %v", err)
	}
	if !slices.Equal(codecs, []string{"libx264"}) {
		t.Fatalf("downgrade should persist, got %v", codecs)
	}
}

func TestAssembleSoftwareFailureIsRenderError(t *testing.T) {
	fx := newFixture(t)
	long := strings.Repeat("x", 600) + "Invalid argument"
	calls := 0
	runner := func(context.Context, string, []string) ([]byte, error) {
		calls++
		return []byte(long), errors.New("exit status 1")
	}
	asm, err := NewAssembler(nil, hardware.Fixed(4, hardware.AccelNone), nil,
		WithRunner(runner), WithDurationProbe(fixedProbe(time.Second)), WithoutDependencyCheck())
	if err != nil {
		t.Fatalf("NewAssembler: %v", err)
	}
	_, err = asm.Assemble(context.Background(), fx.request)
	if calls != 1 {
		t.Fatalf("software failure must not retry, got %d calls", calls)
	}
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if !errors.Is(err, services.ErrRender) {
		t.Fatal("expected render marker")
	}
	if len(re.Stderr) != 500 || !strings.HasSuffix(re.Stderr, "Invalid argument") {
		t.Fatalf("expected last 500 bytes of stderr, got %d bytes", len(re.Stderr))
	}
	if msg := services.StatusMessage(err); !strings.HasPrefix(msg, "Error: ffmpeg (libx264) failed") {
		t.Fatalf("unexpected status message %q", msg)
	}
}

func TestAssembleRejectsMissingInputs(t *testing.T) {
	fx := newFixture(t)
	asm, err := NewAssembler(nil, nil, nil, WithoutDependencyCheck(),
		WithRunner(func(context.Context, string, []string) ([]byte, error) {
			t.Fatal("runner must not be called")
			return nil, nil
		}))
	if err != nil {
		t.Fatalf("NewAssembler: %v", err)
	}
	req := fx.request
	req.BackgroundKind = BackgroundVideo
	req.BackgroundPath = filepath.Join(fx.dir, "missing.mp4")
	if _, err := asm.Assemble(context.Background(), req); !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	req = fx.request
	req.AudioPath = ""
	if _, err := asm.Assemble(context.Background(), req); !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestNewAssemblerRequiresBinaries(t *testing.T) {
	cfg := config.Default()
	cfg.Render.FFmpegBinary = "voxreel-missing-ffmpeg"
	_, err := NewAssembler(&cfg, nil, nil)
	if !errors.Is(err, services.ErrEnvironment) {
		t.Fatalf("expected environment error, got %v", err)
	}
	if !strings.Contains(err.Error(), "voxreel-missing-ffmpeg") {
		t.Fatalf("expected missing binary named in %v", err)
	}
}
