// Package render composites narration, burned-in captions and a background
// layer into a 1080x1920 H.264 MP4 using ffmpeg.
//
// The ffmpeg graph is built with ffmpeg-go. Encoders are pluggable: software
// libx264, VAAPI and NVENC. When a hardware encode fails the shared hardware
// profile is downgraded and the render is retried once in software; later
// renders in the same process start in software.
package render
