// Package pipeline sequences one video generation run: background selection,
// voice cloning, caption generation and assembly.
//
// Stages run strictly in order and any stage error aborts the run. Progress is
// reported at each stage boundary through a ProgressFunc; it is observational
// only. Intermediates (speech.wav, subtitles.srt) live in the configured work
// directory and are overwritten by the next run, so callers must not start two
// runs against the same Orchestrator concurrently.
package pipeline
