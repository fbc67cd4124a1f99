// Package config loads, normalizes, and validates storygen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STORYGEN_API_KEY. The Config type centralizes every knob the batch runner
// and CLI need, so the content directory, provider credentials, and pacing
// delays are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
