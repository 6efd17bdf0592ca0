// Command p0d is the podcast production CLI: task extraction, issue and
// workspace sync, episode downloads, retrofitting, and season planning.
package main
