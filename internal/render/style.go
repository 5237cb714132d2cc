package render

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Position places captions on the canvas.
type Position int

const (
	PositionCenter Position = iota
	PositionBottom
	PositionTop
)

// ParsePosition accepts "center", "bottom" and "top".
func ParsePosition(value string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "center", "middle":
		return PositionCenter, nil
	case "bottom":
		return PositionBottom, nil
	case "top":
		return PositionTop, nil
	default:
		return PositionCenter, fmt.Errorf("unknown caption position %q (expected center, bottom or top)", value)
	}
}

func (p Position) String() string {
	switch p {
	case PositionBottom:
		return "bottom"
	case PositionTop:
		return "top"
	default:
		return "center"
	}
}

// Alignment is the ASS numpad alignment code.
func (p Position) Alignment() int {
	switch p {
	case PositionBottom:
		return 2
	case PositionTop:
		return 8
	default:
		return 5
	}
}

var namedColors = map[string]string{
	"white":  "FFFFFF",
	"black":  "000000",
	"red":    "0000FF",
	"green":  "00FF00",
	"blue":   "FF0000",
	"yellow": "00FFFF",
}

// ToBGR converts a color name or #RRGGBB value to the BBGGRR order ASS
// expects. Anything unrecognised renders white.
func ToBGR(color string) string {
	color = strings.TrimSpace(color)
	if bgr, ok := namedColors[strings.ToLower(color)]; ok {
		return bgr
	}
	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 || !isHex(hex) {
		return "FFFFFF"
	}
	return hex[4:6] + hex[2:4] + hex[0:2]
}

// ColorSource normalises a background color for the lavfi color source:
// #RRGGBB becomes 0xRRGGBB, plain color names pass through, and anything
// else falls back to black.
func ColorSource(color string) string {
	color = strings.TrimSpace(color)
	hex := strings.TrimPrefix(color, "#")
	if len(hex) == 6 && isHex(hex) {
		return "0x" + strings.ToLower(hex)
	}
	if color != "" && strings.IndexFunc(color, func(r rune) bool { return (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') }) < 0 {
		return strings.ToLower(color)
	}
	return "0x000000"
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// SubtitleStyle controls how cues are burned in.
type SubtitleStyle struct {
	FontSize     int
	FontColor    string
	OutlineColor string
	OutlineWidth int
	Position     Position
	MarginV      int
}

// DefaultSubtitleStyle matches the stock vertical-video look.
func DefaultSubtitleStyle() SubtitleStyle {
	return SubtitleStyle{
		FontSize:     28,
		FontColor:    "white",
		OutlineColor: "black",
		OutlineWidth: 3,
		Position:     PositionCenter,
		MarginV:      100,
	}
}

// ForceStyle renders the libass force_style override.
func (s SubtitleStyle) ForceStyle() string {
	fontSize := s.FontSize
	if fontSize <= 0 {
		fontSize = 28
	}
	marginV := s.MarginV
	if marginV <= 0 {
		marginV = 100
	}
	return fmt.Sprintf("FontSize=%d,PrimaryColour=&H00%s,OutlineColour=&H00%s,Outline=%d,Alignment=%d,MarginV=%d,Bold=1",
		fontSize, ToBGR(s.FontColor), ToBGR(s.OutlineColor), max(s.OutlineWidth, 0), s.Position.Alignment(), marginV)
}

// subtitlePath escapes a cue file path as a subtitles filter option value.
// ffmpeg-go only adds graph level escaping, so ':' and quotes must be
// escaped here or they split the filter options.
func subtitlePath(path string) string {
	return subtitleEscaper.Replace(strings.ReplaceAll(filepath.ToSlash(path), `\`, "/"))
}

var subtitleEscaper = strings.NewReplacer("'", `\'`, ":", `\:`)
