// Package issuesync publishes extracted meeting tasks to the issue tracker,
// routing each task to its agent's repository and converging on one issue
// per task identifier across repeated runs.
package issuesync
