// Package whisperx runs WhisperX through uvx and reads its word-level JSON.
//
// The service writes <basename>.json next to the requested output directory
// and returns the parsed segments. Words WhisperX could not align carry no
// start or end time; callers decide how to treat them.
package whisperx
