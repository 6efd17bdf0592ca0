package main

import (
	"fmt"
	"io"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// summaryLine renders a run summary, colored green or red for terminals.
func summaryLine(out io.Writer, failed int, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if isTerminal(out) {
		color := ansiGreen
		if failed > 0 {
			color = ansiRed
		}
		line = color + line + ansiReset
	}
	fmt.Fprintln(out, line)
}

// warnLine renders a warning, yellow for terminals.
func warnLine(out io.Writer, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if isTerminal(out) {
		line = ansiYellow + line + ansiReset
	}
	fmt.Fprintln(out, line)
}
