package report

import (
	"math"
	"regexp"
	"strings"

	"barca/internal"
	"barca/internal/util"
)

const (
	articleLabel     = "ARTICOLO"
	contextScanLimit = 30
	postBlockMax     = 6
	numBlockMax      = 12
)

// Pattern constants for the report grammar. The heuristics are intentionally
// approximate and order-dependent (first match picks the article field, last
// match wins for the supplier); keep them as-is rather than formalizing.
var (
	// article code: 1-3 digits, slash, >=2 alphanumerics ("302/AB12").
	reCode     = regexp.MustCompile(`(?i)^\d{1,3}/[A-Z0-9]{2,}`)
	reCodeScan = regexp.MustCompile(`(?i)\b\d{1,3}/[A-Z0-9]{2,}`)

	// department/category: short letter prefix, whitespace, then text
	// ("CAL DONNA"). Digit-led fields are supplier codes, never these.
	reDeptCat = regexp.MustCompile(`^[A-Za-z]{1,3}\s+\S`)

	// supplier markers: legal-entity suffix or leading numeric code
	// ("302 IMMA S.R.L.").
	reLegalSuffix = regexp.MustCompile(`(?i)\bS[.\s]?R[.\s]?L\b|\bS[.\s]?P[.\s]?A\b|\bS[.\s]?A[.\s]?S\b|\bS[.\s]?N[.\s]?C\b`)
	reDigitLead   = regexp.MustCompile(`^\d+\s+`)
	reAllDigits   = regexp.MustCompile(`^\d+$`)
)

// Options control document-level validation.
type Options struct {
	// Strict fails the parse when the result is empty or any code-shaped
	// token found in the raw text is missing from the output. Lenient mode
	// returns the best-effort table and never errors.
	Strict bool
}

// parseContext carries the last seen department/category/supplier across
// rows that omit them. Values persist until overwritten, never cleared.
type parseContext struct {
	reparto   string
	categoria string
	fornitore string
}

// Parse recovers the flat article table from a raw ANART export. Clean
// already-flat CSV input (detected by header inspection) is passed through
// with numeric coercion only.
func Parse(data []byte, opts Options) ([]internal.ArticleRecord, error) {
	text := DecodeBestEffort(data)

	if records, ok := ParseCleanCSV(text); ok {
		if len(records) == 0 && opts.Strict {
			return nil, ErrNoRecords
		}
		return records, nil
	}

	lines := BalancedLines(text)
	labelIdx := findArticleLabel(lines)

	ctx := parseContext{}
	records := []internal.ArticleRecord{}
	for _, line := range lines {
		fields := LineFields(line)
		if len(fields) == 0 {
			continue
		}
		if rec, ok := extractArticle(fields, labelIdx, &ctx); ok {
			records = append(records, rec)
		}
	}

	records = Dedupe(records)
	if err := validate(text, records, opts); err != nil {
		return nil, err
	}
	return records, nil
}

// findArticleLabel locates the header field identifying the article column
// family. The index is an anchor, not a requirement: -1 switches every line
// to full-field scanning.
func findArticleLabel(lines []string) int {
	for _, line := range lines {
		for i, f := range LineFields(line) {
			if strings.Contains(strings.ToUpper(strings.TrimSpace(f)), articleLabel) {
				return i
			}
		}
	}
	return -1
}

func extractArticle(fields []string, labelIdx int, ctx *parseContext) (internal.ArticleRecord, bool) {
	window := fields
	if labelIdx >= 0 && labelIdx < len(fields) &&
		strings.Contains(strings.ToUpper(strings.TrimSpace(fields[labelIdx])), articleLabel) {
		window = fields[labelIdx+1:]
	}

	artIdx := -1
	limit := len(window)
	if limit > contextScanLimit {
		limit = contextScanLimit
	}
	for i := 0; i < limit; i++ {
		s := strings.TrimSpace(window[i])
		if reCode.MatchString(s) && !strings.HasPrefix(strings.ToUpper(s), "TOTALI") {
			artIdx = i
			break
		}
	}
	if artIdx < 0 {
		return internal.ArticleRecord{}, false
	}

	applyContext(window[:artIdx], ctx)

	art := strings.TrimSpace(window[artIdx])
	code := reCode.FindString(art)
	descr := strings.TrimSpace(art[len(code):])
	if descr == "" {
		descr = code
	}

	qty, post, ok := partitionNumbers(window[artIdx+1:])
	if !ok {
		return internal.ArticleRecord{}, false
	}

	rec := internal.ArticleRecord{
		Reparto:    ctx.reparto,
		Categoria:  ctx.categoria,
		Fornitore:  ctx.fornitore,
		Code:       code,
		Product:    descr,
		Ordinato:   int(qty[0]),
		Consegnate: int(qty[1]),
		Vendute:    int(qty[2]),
		Giacenza:   int(qty[3]),
	}
	if len(qty) == 5 {
		rec.PercVenduto = util.FloatPtr(qty[4])
	}
	if rec.Consegnate > 0 {
		rec.PercVendutoCalc = util.FloatPtr(round2(float64(rec.Vendute) / float64(rec.Consegnate) * 100))
	}
	if len(post) > 0 {
		rec.PrzAcq = util.FloatPtr(post[0])
	}
	if len(post) > 1 {
		rec.PrzVend = util.FloatPtr(post[1])
	}
	if len(post) > 3 {
		rec.ValoreNetto = util.FloatPtr(post[3])
	}
	return rec, true
}

// applyContext classifies the fields preceding the article token and folds
// them into the running context. Misclassification must err toward leaving
// the inherited context alone, never toward corrupting it.
func applyContext(window []string, ctx *parseContext) {
	deptCat := []string{}
	supplier := ""
	for _, f := range window {
		s := strings.TrimSpace(f)
		if s == "" {
			continue
		}
		if len(deptCat) < 2 && looksLikeDeptCat(s) {
			deptCat = append(deptCat, s)
			continue
		}
		if looksLikeSupplier(s) {
			supplier = s
		}
	}
	if len(deptCat) > 0 {
		ctx.reparto = deptCat[0]
	}
	if len(deptCat) > 1 {
		ctx.categoria = deptCat[1]
	}
	if supplier != "" {
		ctx.fornitore = supplier
	}
}

func looksLikeDeptCat(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	return reDeptCat.MatchString(s)
}

func looksLikeSupplier(s string) bool {
	if reLegalSuffix.MatchString(s) || reDigitLead.MatchString(s) {
		return true
	}
	return len([]rune(s)) >= 6 && !reAllDigits.MatchString(s)
}

// partitionNumbers splits the trailing numeric fields into the canonical
// quantity block (ordinato, consegnate, vendute, giacenza, percent) and the
// pricing post-block. With a percent marker present the LAST five numbers
// before it are taken, since stray leading counters are more common than
// trailing noise. Four quantity values are accepted (percent absent); fewer
// drop the line.
func partitionNumbers(fields []string) (qty, post []float64, ok bool) {
	var before, after []float64
	seenMarker := false
	for _, f := range fields {
		s := strings.TrimSpace(f)
		if s == "%" {
			seenMarker = true
			continue
		}
		if v := ParseNumToken(s); v != nil {
			if seenMarker {
				after = append(after, *v)
			} else {
				before = append(before, *v)
			}
		}
	}

	if seenMarker {
		switch {
		case len(before) >= 5:
			qty = before[len(before)-5:]
		case len(before) == 4:
			qty = before
		default:
			return nil, nil, false
		}
		if len(after) > postBlockMax {
			after = after[:postBlockMax]
		}
		return qty, after, true
	}

	all := before
	if len(all) > numBlockMax {
		all = all[:numBlockMax]
	}
	switch {
	case len(all) >= 5:
		return all[:5], all[5:], true
	case len(all) == 4:
		return all, nil, true
	default:
		return nil, nil, false
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
