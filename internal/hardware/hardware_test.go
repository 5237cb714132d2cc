package hardware

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type fakeHost struct {
	outputs map[string]string
	calls   []string
}

func (f *fakeHost) run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.calls = append(f.calls, key)
	for prefix, out := range f.outputs {
		if strings.HasPrefix(key, prefix) {
			return []byte(out), nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeHost) detector(deviceOK bool) Detector {
	return Detector{
		Run: f.run,
		ReadFile: func(string) ([]byte, error) {
			return []byte("MemTotal:       32768000 kB\nMemFree:  100 kB\n"), nil
		},
		DeviceAccessible: func(string) bool { return deviceOK },
		NumCPU:           func() int { return 16 },
	}
}

func TestDetectCPUOnlyHost(t *testing.T) {
	host := &fakeHost{outputs: map[string]string{"ffmpeg -hide_banner -hwaccels": "Hardware acceleration methods:\n"}}
	p := host.detector(false).Detect(context.Background(), Options{})

	if p.CPUThreads != 16 {
		t.Fatalf("CPUThreads = %d, want 16", p.CPUThreads)
	}
	if p.RAMTotalMB != 32000 {
		t.Fatalf("RAMTotalMB = %d, want 32000", p.RAMTotalMB)
	}
	if p.GPUAvailable || p.GPUBackend != BackendCPU {
		t.Fatalf("expected cpu backend, got %+v", p)
	}
	if p.ComputeType != "int8" || p.TorchDType != "float32" {
		t.Fatalf("unexpected precision %s/%s", p.ComputeType, p.TorchDType)
	}
	if p.Accel() != AccelNone {
		t.Fatalf("expected no accelerator, got %s", p.Accel())
	}
	if p.EncoderThreads() != 12 {
		t.Fatalf("EncoderThreads = %d, want 12", p.EncoderThreads())
	}
}

func TestDetectNvidiaHost(t *testing.T) {
	host := &fakeHost{outputs: map[string]string{
		"nvidia-smi":                   "NVIDIA GeForce RTX 4090, 24564\n",
		"ffmpeg -hide_banner -hwaccels": "Hardware acceleration methods:\ncuda\nvaapi\n",
	}}
	p := host.detector(false).Detect(context.Background(), Options{})

	if p.GPUBackend != BackendCUDA || p.GPUName != "NVIDIA GeForce RTX 4090" || p.GPUVRAMMB != 24564 {
		t.Fatalf("unexpected gpu fields %+v", p)
	}
	if p.ComputeType != "float16" || p.TorchDType != "float16" {
		t.Fatalf("unexpected precision %s/%s", p.ComputeType, p.TorchDType)
	}
	// vaapi is listed but the render node is not accessible.
	if p.Accel() != AccelNVENC {
		t.Fatalf("expected nvenc, got %s", p.Accel())
	}
	if !p.HalfPrecision() || p.WhisperDevice() != "cuda" {
		t.Fatal("expected half precision and cuda transcription on a 24GB card")
	}
}

func TestDetectAMDHostUsesVAAPIWhenDeviceAccessible(t *testing.T) {
	host := &fakeHost{outputs: map[string]string{
		"rocm-smi --showproductname": "===== Product Info =====\nGPU[0]\t\t: Card series: \t\tNavi 21 [Radeon RX 6950 XT]\nGPU[0]\t\t: Card model: \t\t0x73a5\n",
		"rocm-smi --showmeminfo":     "GPU[0]\t\t: VRAM Total Memory (B): 17163091968\nGPU[0]\t\t: VRAM Total Used Memory (B): 1024\n",
		"ffmpeg -hide_banner -hwaccels": "Hardware acceleration methods:\nvaapi\n",
	}}
	p := host.detector(true).Detect(context.Background(), Options{})

	if p.GPUBackend != BackendROCm || p.GPUName != "Navi 21 [Radeon RX 6950 XT]" {
		t.Fatalf("unexpected gpu fields %+v", p)
	}
	if p.GPUVRAMMB != 16368 {
		t.Fatalf("GPUVRAMMB = %d, want 16368", p.GPUVRAMMB)
	}
	if p.ComputeType != "int8" || p.TorchDType != "float16" {
		t.Fatalf("unexpected precision %s/%s", p.ComputeType, p.TorchDType)
	}
	if p.WhisperDevice() != "cpu" || p.TorchDevice() != "cuda" {
		t.Fatalf("unexpected devices whisper=%s torch=%s", p.WhisperDevice(), p.TorchDevice())
	}
	if p.Accel() != AccelVAAPI {
		t.Fatalf("expected vaapi, got %s", p.Accel())
	}
}

func TestDetectRespectsDisableHardware(t *testing.T) {
	host := &fakeHost{outputs: map[string]string{"ffmpeg": "cuda\n"}}
	p := host.detector(true).Detect(context.Background(), Options{DisableHardware: true})
	if p.Accel() != AccelNone {
		t.Fatalf("expected no accelerator, got %s", p.Accel())
	}
	for _, call := range host.calls {
		if strings.HasPrefix(call, "ffmpeg") {
			t.Fatalf("did not expect ffmpeg probe, got %q", call)
		}
	}
}

func TestDowngradeIsStickyAndReportsPrevious(t *testing.T) {
	p := Fixed(8, AccelVAAPI)
	if prev := p.Downgrade(); prev != AccelVAAPI {
		t.Fatalf("Downgrade returned %s, want vaapi", prev)
	}
	if p.Accel() != AccelNone {
		t.Fatalf("expected none after downgrade, got %s", p.Accel())
	}
	if prev := p.Downgrade(); prev != AccelNone {
		t.Fatalf("second Downgrade returned %s, want none", prev)
	}
}

func TestDowngradeConcurrentReaders(t *testing.T) {
	p := Fixed(4, AccelNVENC)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Accel()
			p.Downgrade()
		}()
	}
	wg.Wait()
	if p.Accel() != AccelNone {
		t.Fatalf("expected none, got %s", p.Accel())
	}
}

func TestEncoderThreadsMinimum(t *testing.T) {
	if got := Fixed(1, AccelNone).EncoderThreads(); got != 2 {
		t.Fatalf("EncoderThreads = %d, want 2", got)
	}
	if got := Fixed(6, AccelNone).EncoderThreads(); got != 4 {
		t.Fatalf("EncoderThreads = %d, want 4", got)
	}
}

func TestSummaryListsSoftwareEncoder(t *testing.T) {
	summary := Fixed(8, AccelNone).Summary()
	for _, fragment := range []string{"CPU", "8 threads", "FFmpeg HW", "software", "not detected (cpu)"} {
		if !strings.Contains(summary, fragment) {
			t.Fatalf("expected %q in summary:\n%s", fragment, summary)
		}
	}
}
