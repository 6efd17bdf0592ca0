// Package catalog persists a local SQLite record of every episode pulled
// from the workspace, so repeated pulls can skip files already on disk and
// concurrent runs cannot double-record an episode.
package catalog
