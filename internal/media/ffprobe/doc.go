// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns the parsed Result; Duration is the
// shortcut the assembler uses to size the canvas and trim the output to
// the narration length.
package ffprobe
