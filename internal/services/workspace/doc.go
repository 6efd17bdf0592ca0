// Package workspace implements the Notion database API surface used to track
// completed tasks and episode records: filtered queries, page creation, and
// property updates.
package workspace
