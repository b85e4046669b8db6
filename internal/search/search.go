// Package search finds the lines of a text body that contain a query.
// Matching is a plain substring test, either exact or after a full Unicode
// lowercase transformation of both sides. Results are substrings of the
// body (no copies), in the order they appear.
package search

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CaseMode selects the comparison used when testing containment.
type CaseMode int

const (
	Sensitive CaseMode = iota
	Insensitive
)

func (m CaseMode) String() string {
	switch m {
	case Sensitive:
		return "sensitive"
	case Insensitive:
		return "insensitive"
	default:
		return fmt.Sprintf("CaseMode(%d)", int(m))
	}
}

// ParseCaseMode is the inverse of CaseMode.String.
func ParseCaseMode(s string) (CaseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sensitive", "":
		return Sensitive, nil
	case "insensitive":
		return Insensitive, nil
	}
	return Sensitive, fmt.Errorf("unknown case mode %q", s)
}

// Search dispatches to SearchSensitive or SearchInsensitive.
func Search(mode CaseMode, query, body string) []string {
	if mode == Insensitive {
		return SearchInsensitive(query, body)
	}
	return SearchSensitive(query, body)
}

// SearchSensitive returns every line of body that contains query exactly.
// An empty query matches every line.
func SearchSensitive(query, body string) []string {
	var results []string
	eachLine(body, func(line string) {
		if strings.Contains(line, query) {
			results = append(results, line)
		}
	})
	return results
}

// SearchInsensitive returns every line of body whose lowercase form contains
// the lowercase form of query. The returned lines are the original text.
//
// Lowercasing may change byte length (e.g. "İ"), so containment is tested on
// the transformed strings only; no offsets are mapped back into the line.
func SearchInsensitive(query, body string) []string {
	// cases.Caser is stateful and not safe for concurrent use.
	lower := cases.Lower(language.Und)
	q := lower.String(query)

	var results []string
	eachLine(body, func(line string) {
		if strings.Contains(lower.String(line), q) {
			results = append(results, line)
		}
	})
	return results
}

// Lines splits body into its logical lines.
func Lines(body string) []string {
	var lines []string
	eachLine(body, func(line string) {
		lines = append(lines, line)
	})
	return lines
}

// eachLine calls fn for each logical line of body, in order.
// Lines end at "\n" or "\r\n"; a bare "\r" is ordinary text. A terminator
// at the very end of body does not start another (empty) line.
func eachLine(body string, fn func(line string)) {
	for len(body) > 0 {
		i := strings.IndexByte(body, '\n')
		if i < 0 {
			fn(body)
			return
		}
		line := body[:i]
		body = body[i+1:]
		fn(strings.TrimSuffix(line, "\r"))
	}
}
