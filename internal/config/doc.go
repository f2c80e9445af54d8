// Package config loads, normalizes, and validates SoundCraft configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and render pipeline need: artifact directories, audio engine
// defaults, notification settings, and the TTS wrapper.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
