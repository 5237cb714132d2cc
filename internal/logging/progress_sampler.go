package logging

import (
	"math"
	"strings"
)

const defaultProgressStep = 0.05

// ProgressSampler thins progress reports to one per label change or per
// completed step of the run fraction.
type ProgressSampler struct {
	step      float64
	lastLabel string
	lastStep  int
}

// NewProgressSampler returns a sampler emitting at most once per step, where
// step is a fraction of the whole run (default 0.05).
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 || step > 1 {
		step = defaultProgressStep
	}
	return &ProgressSampler{step: step, lastStep: -1}
}

// ShouldLog reports whether a report at fraction (0 to 1) with the given label
// is worth emitting. A negative fraction means unknown and only label changes
// count.
func (s *ProgressSampler) ShouldLog(fraction float64, label string) bool {
	if s == nil {
		return true
	}
	emit := false
	if label = strings.TrimSpace(label); label != "" && label != s.lastLabel {
		s.lastLabel = label
		s.lastStep = -1
		emit = true
	}
	if fraction < 0 {
		return emit
	}
	step := int(math.Floor(min(fraction, 1)/s.step + 1e-9))
	if step > s.lastStep {
		s.lastStep = step
		emit = true
	}
	return emit
}

// Reset forgets previous reports before a new run.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastLabel = ""
	s.lastStep = -1
}
