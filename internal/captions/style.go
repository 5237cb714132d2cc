package captions

import (
	"fmt"
	"strings"
)

// Style selects how many words share a cue.
type Style int

const (
	StyleDense Style = iota
	StyleClassic
)

// ParseStyle accepts "dense" (alias "tiktok") and "classic".
func ParseStyle(value string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "dense", "tiktok":
		return StyleDense, nil
	case "classic":
		return StyleClassic, nil
	default:
		return StyleDense, fmt.Errorf("unknown caption style %q (expected dense or classic)", value)
	}
}

func (s Style) String() string {
	switch s {
	case StyleClassic:
		return "classic"
	default:
		return "dense"
	}
}

// WordsPerCue is the group size for the style.
func (s Style) WordsPerCue() int {
	switch s {
	case StyleClassic:
		return 8
	default:
		return 2
	}
}
