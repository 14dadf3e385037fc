// Package config loads, normalizes, and validates ghplayer configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, overlays an optional .env file, and honours
// environment fallbacks such as GHPLAYER_BACKEND_URL. The Config type
// centralizes every knob the library bridge, artwork pipeline, and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
