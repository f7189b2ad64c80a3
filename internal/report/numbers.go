package report

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reNumShape     = regexp.MustCompile(`^[0-9][0-9.,]*$`)
	reThousandsDot = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
)

// ParseNumToken parses one report field as a number. Empty fields and the
// bare percent marker are not numbers. Dots are collapsed as thousands
// separators when every dot group is three digits wide and no comma is
// present ("1.234.567"); a comma is the decimal separator ("12,50").
func ParseNumToken(token string) *float64 {
	s := strings.TrimSpace(token)
	if s == "" || s == "%" {
		return nil
	}

	sign := 1.0
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		if s[0] == '-' {
			sign = -1.0
		}
		s = s[1:]
	}
	if !reNumShape.MatchString(s) {
		return nil
	}

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		// Italian style: dot thousands, comma decimal ("1.234,50").
		s = strings.ReplaceAll(s, ".", "")
	case reThousandsDot.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v *= sign
	return &v
}
