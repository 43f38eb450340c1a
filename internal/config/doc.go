// Package config loads, normalizes, and validates bisub configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BISUB_FFMPEG. The Config type centralizes the style profiles, encoder
// arguments and tool locations the CLI needs, so they are discovered in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
