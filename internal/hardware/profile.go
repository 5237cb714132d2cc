package hardware

import (
	"fmt"
	"strings"
	"sync"
)

// Backend identifies the compute backend available to the Python models.
type Backend string

const (
	BackendCPU  Backend = "cpu"
	BackendCUDA Backend = "cuda"
	BackendROCm Backend = "rocm"
)

// Accel identifies the ffmpeg hardware encode path.
type Accel int

const (
	AccelNone Accel = iota
	AccelVAAPI
	AccelNVENC
)

func (a Accel) String() string {
	switch a {
	case AccelVAAPI:
		return "vaapi"
	case AccelNVENC:
		return "nvenc"
	default:
		return "none"
	}
}

// DefaultVAAPIDevice is the DRM render node used for VAAPI encodes.
const DefaultVAAPIDevice = "/dev/dri/renderD128"

// Profile is the hardware snapshot built once at startup and passed to every
// component that picks an execution strategy. All fields except the encoder
// accelerator are fixed after construction; the accelerator only ever moves
// to AccelNone through Downgrade.
type Profile struct {
	System       string
	CPUThreads   int
	RAMTotalMB   int
	GPUAvailable bool
	GPUBackend   Backend
	GPUName      string
	GPUVRAMMB    int
	VAAPIDevice  string
	// ComputeType is the CTranslate2 precision used by WhisperX.
	ComputeType string
	// TorchDType is the PyTorch precision used by Chatterbox.
	TorchDType string

	mu    sync.Mutex
	accel Accel
}

// Fixed returns a CPU-only profile with the given accelerator, for tests and
// for callers that want to bypass probing.
func Fixed(cpuThreads int, accel Accel) *Profile {
	p := &Profile{
		System:      "fixed",
		CPUThreads:  cpuThreads,
		GPUBackend:  BackendCPU,
		VAAPIDevice: DefaultVAAPIDevice,
		accel:       accel,
	}
	p.applyPrecision()
	return p
}

// Accel returns the encoder accelerator currently in effect.
func (p *Profile) Accel() Accel {
	if p == nil {
		return AccelNone
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accel
}

// Downgrade switches the profile to software encoding for the rest of the
// process and returns the accelerator that was active before.
func (p *Profile) Downgrade() Accel {
	if p == nil {
		return AccelNone
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.accel
	p.accel = AccelNone
	return prev
}

// EncoderThreads is the libx264 thread count: 75% of CPU threads, at least 2.
func (p *Profile) EncoderThreads() int {
	if p == nil {
		return 2
	}
	return max(2, int(float64(p.CPUThreads)*0.75))
}

// TorchDevice is the device string handed to PyTorch. ROCm builds of PyTorch
// expose HIP devices under the cuda name.
func (p *Profile) TorchDevice() string {
	if p != nil && p.GPUAvailable && (p.GPUBackend == BackendCUDA || p.GPUBackend == BackendROCm) {
		return "cuda"
	}
	return "cpu"
}

// WhisperDevice is the device used for transcription. CTranslate2 has no ROCm
// support, so AMD hosts transcribe on the CPU.
func (p *Profile) WhisperDevice() string {
	if p != nil && p.GPUAvailable && p.GPUBackend == BackendCUDA {
		return "cuda"
	}
	return "cpu"
}

// HalfPrecision reports whether the voice model should be cast to float16.
func (p *Profile) HalfPrecision() bool {
	return p != nil && p.TorchDevice() == "cuda" && p.GPUVRAMMB >= 12000
}

func (p *Profile) applyPrecision() {
	switch p.GPUBackend {
	case BackendCUDA:
		p.ComputeType = "float16"
		p.TorchDType = "float16"
	case BackendROCm:
		p.ComputeType = "int8"
		p.TorchDType = "float16"
	default:
		p.ComputeType = "int8"
		p.TorchDType = "float32"
	}
}

// Row is a label/value pair for tabular display.
type Row struct {
	Label string
	Value string
}

// Rows returns the profile as ordered display rows.
func (p *Profile) Rows() []Row {
	gpu := p.GPUName
	if gpu == "" {
		gpu = "not detected"
	}
	rows := []Row{
		{"OS", p.System},
		{"CPU", fmt.Sprintf("%d threads", p.CPUThreads)},
		{"RAM", fmt.Sprintf("%d MB", p.RAMTotalMB)},
		{"GPU", fmt.Sprintf("%s (%s)", gpu, p.GPUBackend)},
	}
	if p.GPUVRAMMB > 0 {
		rows = append(rows, Row{"VRAM", fmt.Sprintf("%d MB", p.GPUVRAMMB)})
	}
	encoder := p.Accel().String()
	if encoder == "none" {
		encoder = "software"
	}
	rows = append(rows,
		Row{"FFmpeg HW", encoder},
		Row{"FFmpeg CPU", fmt.Sprintf("%d threads", p.EncoderThreads())},
		Row{"Compute", p.ComputeType},
		Row{"Torch", p.TorchDType},
	)
	return rows
}

// Summary renders the profile as aligned "label : value" lines.
func (p *Profile) Summary() string {
	var b strings.Builder
	for i, row := range p.Rows() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %-10s : %s", row.Label, row.Value)
	}
	return b.String()
}
