// Package config loads, normalizes, and validates toolkit configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GITHUB_TOKEN, NOTION_TOKEN, and the per-season P0D_S<n>_DB_ID database
// variables. The Config type centralizes every knob the CLI needs so that
// components receive an explicit configuration object instead of reading the
// process environment themselves.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, resolved credentials, and clear validation errors.
package config
