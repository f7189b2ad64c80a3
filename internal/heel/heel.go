// Package heel derives a heel-height measurement in millimeters from
// free-text article descriptions.
package heel

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// size-style annotation: "T30", "T 6,5". Wins over generic numbers.
	reSizeToken = regexp.MustCompile(`\bT\s*(\d+(?:[.,]\d{1,2})?)\b`)
	reFirstNum  = regexp.MustCompile(`\d+(?:[.,]\d{1,2})?`)
	reDecSep    = regexp.MustCompile(`[.,]`)
)

// ExtractMM parses a description to millimeters, nil when no usable number
// exists. Conventions, applied only to the description, never to the code:
//
//	"6,5"  -> 6 cm and 5 mm -> 65 (the fraction is a count of millimeters,
//	          not a decimal fraction of a centimeter)
//	"7"    -> centimeters   -> 70
//	"80"   -> already mm    -> 80 (whole numbers divisible by 10)
func ExtractMM(descr string) *float64 {
	if strings.TrimSpace(descr) == "" {
		return nil
	}
	s := strings.ToUpper(descr)

	token := ""
	if m := reSizeToken.FindStringSubmatch(s); m != nil {
		token = m[1]
	} else if m := reFirstNum.FindString(s); m != "" {
		token = m
	} else {
		return nil
	}

	if strings.ContainsAny(token, ".,") {
		parts := reDecSep.Split(token, 2)
		cm, err1 := strconv.Atoi(parts[0])
		mm, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return nil
		}
		v := float64(cm*10 + mm)
		return &v
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return nil
	}
	v := float64(n)
	if n%10 != 0 {
		v = float64(n * 10)
	}
	return &v
}
