// Package tracker implements the GitHub issue API surface needed to publish
// meeting tasks as issues: title search, create, and update.
package tracker
