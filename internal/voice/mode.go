package voice

import (
	"fmt"
	"strings"
)

// Mode selects the Chatterbox model variant.
type Mode int

const (
	// ModeTurbo is the smaller single-language model.
	ModeTurbo Mode = iota
	// ModeQuality is the multilingual model that takes a language id.
	ModeQuality
)

// ParseMode accepts "turbo" and "quality".
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "turbo":
		return ModeTurbo, nil
	case "quality", "multilingual":
		return ModeQuality, nil
	default:
		return ModeTurbo, fmt.Errorf("unknown tts mode %q (expected turbo or quality)", value)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeQuality:
		return "quality"
	default:
		return "turbo"
	}
}
