package report

import (
	"regexp"
	"strings"
)

var reQuotedField = regexp.MustCompile(`"([^"]*)"`)

// BalancedLines reassembles logical report lines: physical lines are merged
// until the accumulated double-quote count is even, which recovers quoted
// fields containing embedded newlines. A field with an odd number of literal
// quotes fools the heuristic; that limitation is accepted.
func BalancedLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	out := []string{}
	buf := ""
	for _, line := range strings.Split(text, "\n") {
		if buf == "" {
			buf = line
		} else {
			buf += "\n" + line
		}
		if strings.Count(buf, `"`)%2 == 0 {
			out = append(out, buf)
			buf = ""
		}
	}
	if buf != "" {
		out = append(out, buf)
	}
	return out
}

// QuotedFields extracts every maximal double-quoted run, left to right.
// Unquoted text between runs is ignored.
func QuotedFields(line string) []string {
	matches := reQuotedField.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// LineFields returns the field sequence of one logical line. Quoted fields
// win; when a line carries no quotes at all the first delimiter among
// comma/semicolon/tab splits it instead (already-clean CSV-like input).
func LineFields(line string) []string {
	if fields := QuotedFields(line); len(fields) > 0 {
		return fields
	}

	for _, sep := range []string{",", ";", "\t"} {
		if !strings.Contains(line, sep) {
			continue
		}
		parts := strings.Split(line, sep)
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.Trim(strings.TrimSpace(p), `"`))
		}
		return out
	}
	return nil
}
