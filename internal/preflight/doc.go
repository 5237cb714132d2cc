// Package preflight provides readiness checks for the binaries, directories
// and stock media provider voxreel depends on.
//
// The CLI "voxreel doctor" command renders every check; "voxreel generate"
// and the web server run RunAll before accepting work and log failures.
// Checks for optional features are skipped when the feature is not configured.
package preflight
