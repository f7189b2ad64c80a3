package report

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeBestEffort turns raw export bytes into text without ever failing.
// The cascade is UTF-8, UTF-8 with BOM, Windows-1252, then ISO-8859-1 as the
// lossy catch-all (every byte sequence is valid Latin-1).
func DecodeBestEffort(data []byte) string {
	if bytes.HasPrefix(data, utf8BOM) {
		data = bytes.TrimPrefix(data, utf8BOM)
	}
	if utf8.Valid(data) {
		return string(data)
	}

	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		s := string(decoded)
		if !strings.ContainsRune(s, utf8.RuneError) {
			return s
		}
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err == nil {
		return string(decoded)
	}

	// charmap decoders do not fail, but keep the lossy path explicit.
	out := make([]rune, 0, len(data))
	for _, b := range data {
		out = append(out, rune(b))
	}
	return string(out)
}
