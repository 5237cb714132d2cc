package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BackgroundKind identifies the visual layer behind the captions.
type BackgroundKind int

const (
	BackgroundNone BackgroundKind = iota
	BackgroundVideo
	BackgroundImage
)

func (k BackgroundKind) String() string {
	switch k {
	case BackgroundVideo:
		return "video"
	case BackgroundImage:
		return "image"
	default:
		return "none"
	}
}

// MarshalText lets the kind appear as its label in JSON payloads and sidecars.
func (k BackgroundKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind label.
func (k *BackgroundKind) UnmarshalText(text []byte) error {
	parsed, err := ParseBackgroundKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseBackgroundKind converts a label into a BackgroundKind.
func ParseBackgroundKind(value string) (BackgroundKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none", "color":
		return BackgroundNone, nil
	case "video":
		return BackgroundVideo, nil
	case "image", "photo":
		return BackgroundImage, nil
	default:
		return BackgroundNone, fmt.Errorf("unknown background kind %q", value)
	}
}

var (
	videoExtensions = map[string]struct{}{".mp4": {}, ".mov": {}, ".avi": {}, ".webm": {}, ".mkv": {}}
	imageExtensions = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}, ".bmp": {}}
)

// DetectBackgroundKind classifies a user-supplied background file by extension.
// Missing files and unknown extensions yield BackgroundNone.
func DetectBackgroundKind(path string) BackgroundKind {
	path = strings.TrimSpace(path)
	if path == "" {
		return BackgroundNone
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return BackgroundNone
	}
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := videoExtensions[ext]; ok {
		return BackgroundVideo
	}
	if _, ok := imageExtensions[ext]; ok {
		return BackgroundImage
	}
	return BackgroundNone
}
