// Package captions turns narration audio into word-grouped subtitle cues.
//
// A Transcriber supplies word timings; Group packs timed words into cues of
// two (dense) or eight (classic) words; WriteSRT renders them for ffmpeg's
// subtitles filter.
package captions
