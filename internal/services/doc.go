// Package services defines shared utilities consumed by the pipeline stages
// and the external tool integrations beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, so every failure can be
//     classified (input, provider, model, render, environment) and rendered
//     as a one-line status message.
//
// Tool wrappers live in subpackages (whisperx, chatterbox).
package services
