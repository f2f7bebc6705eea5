package signature

import (
	"regexp"
	"strings"
)

var (
	lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)
	multiSpace = regexp.MustCompile(`\s{2,}`)
)

// SplitLines splits a raw multi-line paste into its non-blank lines.
func SplitLines(raw string) []string {
	var out []string
	for _, line := range lineBreaks.Split(raw, -1) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// SplitFields splits one pasted row into trimmed non-empty fields. Tab
// delimiting wins when a tab is present; otherwise runs of two or more
// spaces delimit fields. There is no error path: a malformed row simply
// yields a field count downstream parsers reject.
func SplitFields(line string) []string {
	var parts []string
	if strings.Contains(line, "\t") {
		parts = strings.Split(line, "\t")
	} else {
		parts = multiSpace.Split(line, -1)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
