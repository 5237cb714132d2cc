package hardware

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"voxreel/internal/logging"
)

const probeTimeout = 5 * time.Second

// Options controls hardware probing.
type Options struct {
	FFmpegBinary string
	// DisableHardware forces software encoding regardless of what ffmpeg advertises.
	DisableHardware bool
	Logger          *slog.Logger
}

// Detector probes the host. The zero value probes the real system; tests
// replace the function fields.
type Detector struct {
	Run              func(ctx context.Context, name string, args ...string) ([]byte, error)
	ReadFile         func(path string) ([]byte, error)
	DeviceAccessible func(path string) bool
	NumCPU           func() int
}

// Detect probes the host once with the default Detector.
func Detect(ctx context.Context, opts Options) *Profile {
	return Detector{}.Detect(ctx, opts)
}

// Detect builds a Profile. Probe failures are logged at debug level and leave
// the corresponding fields at their CPU-only defaults.
func (d Detector) Detect(ctx context.Context, opts Options) *Profile {
	d = d.withDefaults()
	logger := logging.NewComponentLogger(opts.Logger, "hardware")

	p := &Profile{
		System:      runtime.GOOS + "/" + runtime.GOARCH + kernelRelease(),
		CPUThreads:  d.NumCPU(),
		GPUBackend:  BackendCPU,
		VAAPIDevice: DefaultVAAPIDevice,
	}
	if p.CPUThreads <= 0 {
		p.CPUThreads = 8
	}

	if data, err := d.ReadFile("/proc/meminfo"); err == nil {
		p.RAMTotalMB = parseMemTotalMB(data)
	} else {
		logger.Debug("meminfo unavailable", logging.Error(err))
	}

	d.detectGPU(ctx, p, logger)
	p.applyPrecision()

	if opts.DisableHardware {
		logger.Debug("hardware encoding disabled by configuration")
		return p
	}
	p.accel = d.detectAccel(ctx, p, opts.FFmpegBinary, logger)
	return p
}

func (d Detector) withDefaults() Detector {
	if d.Run == nil {
		d.Run = runProbe
	}
	if d.ReadFile == nil {
		d.ReadFile = os.ReadFile
	}
	if d.DeviceAccessible == nil {
		d.DeviceAccessible = deviceAccessible
	}
	if d.NumCPU == nil {
		d.NumCPU = runtime.NumCPU
	}
	return d
}

func (d Detector) detectGPU(ctx context.Context, p *Profile, logger *slog.Logger) {
	out, err := d.Run(ctx, "nvidia-smi", "--query-gpu=name,memory.total", "--format=csv,noheader,nounits")
	if err == nil {
		if name, vram, ok := parseNvidiaSMI(out); ok {
			p.GPUAvailable = true
			p.GPUBackend = BackendCUDA
			p.GPUName = name
			p.GPUVRAMMB = vram
			return
		}
	} else {
		logger.Debug("nvidia-smi probe failed", logging.Error(err))
	}

	out, err = d.Run(ctx, "rocm-smi", "--showproductname")
	if err != nil {
		logger.Debug("rocm-smi probe failed", logging.Error(err))
		return
	}
	if name, ok := parseROCmProductName(out); ok {
		p.GPUAvailable = true
		p.GPUBackend = BackendROCm
		p.GPUName = name
		if mem, err := d.Run(ctx, "rocm-smi", "--showmeminfo", "vram"); err == nil {
			p.GPUVRAMMB = parseROCmVRAMMB(mem)
		}
	}
}

func (d Detector) detectAccel(ctx context.Context, p *Profile, ffmpeg string, logger *slog.Logger) Accel {
	if strings.TrimSpace(ffmpeg) == "" {
		ffmpeg = "ffmpeg"
	}
	out, err := d.Run(ctx, ffmpeg, "-hide_banner", "-hwaccels")
	if err != nil {
		logger.Debug("ffmpeg hwaccel probe failed", logging.Error(err))
		return AccelNone
	}
	listing := strings.ToLower(string(out))
	if strings.Contains(listing, "vaapi") && runtime.GOOS == "linux" && d.DeviceAccessible(p.VAAPIDevice) {
		return AccelVAAPI
	}
	if strings.Contains(listing, "nvenc") || strings.Contains(listing, "cuda") {
		return AccelNVENC
	}
	return AccelNone
}

func runProbe(ctx context.Context, name string, args ...string) ([]byte, error) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return exec.CommandContext(probeCtx, name, args...).Output() //nolint:gosec
}

func deviceAccessible(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return unix.Access(path, unix.R_OK|unix.W_OK) == nil
}

func kernelRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	release := unix.ByteSliceToString(uts.Release[:])
	if release == "" {
		return ""
	}
	return " " + release
}

func parseMemTotalMB(data []byte) int {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0
		}
		return kb / 1024
	}
	return 0
}

// parseNvidiaSMI reads the first "name, memory" CSV row.
func parseNvidiaSMI(out []byte) (string, int, bool) {
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	name, mem, ok := strings.Cut(line, ",")
	if !ok {
		return "", 0, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", 0, false
	}
	vram, _ := strconv.Atoi(strings.TrimSpace(mem))
	return name, vram, true
}

// parseROCmProductName prefers the "Card series" value and falls back to the
// first GPU row.
func parseROCmProductName(out []byte) (string, bool) {
	text := string(out)
	if !strings.Contains(text, "GPU") {
		return "", false
	}
	var first string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "GPU[") {
			continue
		}
		if first == "" {
			first = line
		}
		if _, rest, ok := strings.Cut(line, "Card series:"); ok {
			if value := strings.TrimSpace(rest); value != "" {
				return value, true
			}
		}
	}
	return first, true
}

// parseROCmVRAMMB reads "VRAM Total Memory (B): 17163091968" rows.
func parseROCmVRAMMB(out []byte) int {
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "Total Memory") || strings.Contains(line, "Used") {
			continue
		}
		idx := strings.LastIndex(line, ":")
		if idx < 0 {
			continue
		}
		bytesTotal, err := strconv.ParseInt(strings.TrimSpace(line[idx+1:]), 10, 64)
		if err != nil {
			continue
		}
		return int(bytesTotal / (1024 * 1024))
	}
	return 0
}
