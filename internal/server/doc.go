// Package server exposes the pipeline over HTTP with gin.
//
// One generation runs at a time; a second POST /api/generate while a run is
// in flight is answered with 409. Progress is polled from GET /api/progress
// and finished videos are served from the output directory.
package server
