package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInput         = errors.New("input error")
	ErrProvider      = errors.New("provider error")
	ErrModel         = errors.New("model error")
	ErrRender        = errors.New("render error")
	ErrEnvironment   = errors.New("environment error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrModel
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short lowercase label for the error class, suitable for
// log attributes and API payloads.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInput):
		return "input"
	case errors.Is(err, ErrProvider):
		return "provider"
	case errors.Is(err, ErrRender):
		return "render"
	case errors.Is(err, ErrEnvironment):
		return "environment"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "model"
	}
}

// StatusMessage converts a pipeline error into the single line shown to users.
// Marker prefixes are stripped; detail beyond the first line stays in logs.
func StatusMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{ErrInput, ErrProvider, ErrModel, ErrRender, ErrEnvironment, ErrConfiguration} {
		msg = strings.TrimPrefix(msg, marker.Error()+": ")
	}
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = "unknown failure"
	}
	return "Error: " + msg
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
