// Package docstore uploads meeting documents and episode artifacts to a
// Drive-compatible file store and drives the notebook audio-overview service
// that turns a document into generated episode audio.
package docstore
