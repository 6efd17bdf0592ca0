// Package services groups the HTTP clients for the external systems the
// toolkit talks to: the issue tracker, the workspace database, the document
// store, and the model API. Each client lives in its own subpackage and
// exposes a narrow, testable surface.
package services
