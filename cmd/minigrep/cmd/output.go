package cmd

import (
	"bufio"
	"io"
	"strings"

	"github.com/corey/minigrep/internal/search"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorMatch = "\033[1;31m"
)

// writeMatches prints each match on its own line, in order.
func writeMatches(out io.Writer, matches []string, query string, mode search.CaseMode, useColor bool) error {
	w := bufio.NewWriter(out)
	for _, line := range matches {
		if useColor {
			line = highlight(line, query, mode)
		}
		w.WriteString(line)
		w.WriteByte('\n')
	}
	return w.Flush()
}

// highlight wraps each occurrence of query in line with color codes.
func highlight(line, query string, mode search.CaseMode) string {
	if query == "" {
		return line
	}
	if mode == search.Insensitive {
		return highlightFolded(line, query)
	}

	var sb strings.Builder
	pos := 0
	for {
		i := strings.Index(line[pos:], query)
		if i < 0 {
			break
		}
		start := pos + i
		end := start + len(query)
		sb.WriteString(line[pos:start])
		writeColored(&sb, line[start:end])
		pos = end
	}
	sb.WriteString(line[pos:])
	return sb.String()
}

// highlightFolded locates occurrences in the lowercased line and maps them
// back rune by rune, since lowercasing can change a rune's byte length in
// either direction. Occurrences that start or end inside the lowercase form
// of a single rune are left plain. If per-rune lowercasing disagrees with
// lowercasing the whole line (context rules, invalid UTF-8) the line is
// returned plain.
func highlightFolded(line, query string) string {
	lower := cases.Lower(language.Und)
	needle := lower.String(query)
	if needle == "" {
		return line
	}

	// origAt maps rune boundaries in the folded line to offsets in line.
	origAt := make(map[int]int, len(line)+1)
	var folded strings.Builder
	for i, r := range line {
		origAt[folded.Len()] = i
		folded.WriteString(lower.String(string(r)))
	}
	origAt[folded.Len()] = len(line)
	hay := folded.String()
	if hay != lower.String(line) {
		return line
	}

	var sb strings.Builder
	pos, prev := 0, 0
	for pos < len(hay) {
		i := strings.Index(hay[pos:], needle)
		if i < 0 {
			break
		}
		start := pos + i
		end := start + len(needle)
		from, okStart := origAt[start]
		to, okEnd := origAt[end]
		if !okStart || !okEnd {
			pos = start + 1
			continue
		}
		sb.WriteString(line[prev:from])
		writeColored(&sb, line[from:to])
		prev, pos = to, end
	}
	sb.WriteString(line[prev:])
	return sb.String()
}

func writeColored(sb *strings.Builder, s string) {
	sb.WriteString(colorMatch)
	sb.WriteString(s)
	sb.WriteString(colorReset)
}
