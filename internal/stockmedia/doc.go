// Package stockmedia finds background footage for a script on Pexels.
//
// Client wraps the video and photo search endpoints, Cache keeps downloads on
// disk under URL-hash names guarded by a file lock, and Selector runs the
// video, photo, single-keyword photo fallback chain. Selection never fails:
// when nothing usable is found the caller receives a plain-color background.
package stockmedia
