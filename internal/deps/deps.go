package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"voxreel/internal/config"
	"voxreel/internal/services"
)

// Requirement defines an external dependency voxreel relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// Requirements lists the binaries a full pipeline run shells out to.
func Requirements(cfg *config.Config) []Requirement {
	ffmpeg, ffprobe := "ffmpeg", "ffprobe"
	if cfg != nil {
		ffmpeg, ffprobe = cfg.Render.FFmpegBinary, cfg.Render.FFprobeBinary
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Video assembly and subtitle burn-in"},
		{Name: "FFprobe", Command: ffprobe, Description: "Narration duration probe"},
		{Name: "uvx", Command: "uvx", Description: "Runs WhisperX and Chatterbox in isolated Python environments"},
		{Name: "nvidia-smi", Command: "nvidia-smi", Description: "NVIDIA GPU detection", Optional: true},
		{Name: "rocm-smi", Command: "rocm-smi", Description: "AMD GPU detection", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// Require checks the given requirements and returns an environment error
// naming every missing mandatory binary.
func Require(stage string, requirements ...Requirement) error {
	var missing []string
	for _, status := range CheckBinaries(requirements) {
		if status.Available || status.Optional {
			continue
		}
		missing = append(missing, status.Command)
	}
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(
		services.ErrEnvironment,
		stage,
		"check binaries",
		fmt.Sprintf("required binaries not found on PATH: %s", strings.Join(missing, ", ")),
		nil,
	)
}
