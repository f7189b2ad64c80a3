package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"barca/internal"
)

// ErrNoRecords is returned in strict mode when nothing could be extracted.
var ErrNoRecords = errors.New("no article records extracted from report")

const missingSampleCap = 15

// MissingCodesError reports article codes present in the raw text but absent
// from the parsed output. It is the gate against silent data loss from a
// misclassified line.
type MissingCodesError struct {
	Total  int
	Sample []string
}

func (e *MissingCodesError) Error() string {
	return fmt.Sprintf("parse incomplete: %d article codes missing from output (sample: %s)",
		e.Total, strings.Join(e.Sample, ", "))
}

// Dedupe removes exact duplicates on (code, fornitore, reparto, categoria,
// consegnate, vendute, giacenza), keeping the first occurrence. Records are
// never mutated, only filtered.
func Dedupe(records []internal.ArticleRecord) []internal.ArticleRecord {
	seen := map[string]struct{}{}
	out := make([]internal.ArticleRecord, 0, len(records))
	for _, r := range records {
		key := fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d",
			r.Code, r.Fornitore, r.Reparto, r.Categoria, r.Consegnate, r.Vendute, r.Giacenza)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// ExpectedCodes scans raw decoded text for every code-shaped substring,
// normalized to trimmed uppercase. The scan is independent of the line
// parser on purpose.
func ExpectedCodes(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, m := range reCodeScan.FindAllString(text, -1) {
		out[strings.ToUpper(strings.TrimSpace(m))] = struct{}{}
	}
	return out
}

func validate(text string, records []internal.ArticleRecord, opts Options) error {
	if !opts.Strict {
		return nil
	}
	if len(records) == 0 {
		return ErrNoRecords
	}

	got := map[string]struct{}{}
	for _, r := range records {
		got[strings.ToUpper(strings.TrimSpace(r.Code))] = struct{}{}
	}

	missing := []string{}
	for code := range ExpectedCodes(text) {
		if _, ok := got[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)
	sample := missing
	if len(sample) > missingSampleCap {
		sample = sample[:missingSampleCap]
	}
	return &MissingCodesError{Total: len(missing), Sample: sample}
}
