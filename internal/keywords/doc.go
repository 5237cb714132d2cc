// Package keywords derives stock-media search terms from a narration script.
//
// Extraction is deterministic: lowercase, split on punctuation and spaces,
// drop French/English stop words and tokens shorter than four runes, then
// rank by frequency and length.
package keywords
