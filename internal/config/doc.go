// Package config loads, normalizes, and validates voxreel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PEXELS_API_KEY and HF_TOKEN. Optional .env files are merged into the
// environment before the TOML file is read.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
