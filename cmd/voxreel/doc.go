// Package main implements the voxreel command-line interface.
//
// The CLI generates narrated vertical videos from a script and a voice
// sample, runs the web form server, and exposes diagnostics for the
// configuration, hardware profile, external tools and media cache.
package main
