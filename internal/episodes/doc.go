// Package episodes pulls published episode audio from the workspace
// database into the local episodes directory, with stable filenames and
// JSON metadata sidecars, and records downloads in the catalog.
package episodes
