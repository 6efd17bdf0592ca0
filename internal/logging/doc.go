// Package logging configures slog handlers for console and JSON output and
// provides shared field names so components log consistently.
package logging
