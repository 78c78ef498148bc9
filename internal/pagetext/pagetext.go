// Package pagetext normalizes raw per-page PDF text into the line form the
// classifier and termination detector operate on.
package pagetext

import "strings"

// Lines splits raw page text into trimmed, non-empty lines in reading order.
func Lines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Head returns up to the first n lines.
func Head(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}

// Tail returns up to the last n lines.
func Tail(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[len(lines)-n:]
}
