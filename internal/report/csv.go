package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"barca/internal"
)

// CSVColumns is the canonical clean-table column order.
var CSVColumns = []string{
	"reparto", "categoria", "fornitore", "code", "product",
	"ordinato", "consegnate", "vendute", "giacenza",
	"perc_venduto", "perc_venduto_calc",
	"prz_acq", "prz_vend", "valore_netto", "tacco_mm",
}

var headerAliases = map[string][]string{
	"reparto":           {"reparto", "department"},
	"categoria":         {"categoria", "category"},
	"fornitore":         {"fornitore", "supplier"},
	"code":              {"code", "codice"},
	"product":           {"product", "descrizione"},
	"ordinato":          {"ordinato", "ordered", "ord"},
	"consegnate":        {"consegnate", "delivered", "con"},
	"vendute":           {"vendute", "sold", "vend"},
	"giacenza":          {"giacenza", "on_hand", "gia"},
	"perc_venduto":      {"perc_venduto", "perc_vendita"},
	"perc_venduto_calc": {"perc_venduto_calc"},
	"prz_acq":           {"prz_acq", "purchase_price"},
	"prz_vend":          {"prz_vend", "sale_price"},
	"valore_netto":      {"valore_netto", "net_value"},
	"tacco_mm":          {"tacco_mm", "heel_mm"},
}

// ParseCleanCSV detects an already-flat export by header inspection (code,
// product and the three stock columns at minimum) and passes it through with
// numeric coercion only, bypassing the heuristic parser. ok is false when
// the text is not a clean table.
func ParseCleanCSV(text string) ([]internal.ArticleRecord, bool) {
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil || len(rows) == 0 {
		return nil, false
	}

	idx := headerIndex(rows[0])
	for _, col := range []string{"code", "product", "consegnate", "vendute", "giacenza"} {
		if _, ok := idx[col]; !ok {
			return nil, false
		}
	}

	records := []internal.ArticleRecord{}
	for _, row := range rows[1:] {
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		code := cell("code")
		if code == "" {
			continue
		}
		rec := internal.ArticleRecord{
			Reparto:         cell("reparto"),
			Categoria:       cell("categoria"),
			Fornitore:       cell("fornitore"),
			Code:            code,
			Product:         cell("product"),
			Ordinato:        coerceInt(cell("ordinato")),
			Consegnate:      coerceInt(cell("consegnate")),
			Vendute:         coerceInt(cell("vendute")),
			Giacenza:        coerceInt(cell("giacenza")),
			PercVenduto:     coerceFloat(cell("perc_venduto")),
			PercVendutoCalc: coerceFloat(cell("perc_venduto_calc")),
			PrzAcq:          coerceFloat(cell("prz_acq")),
			PrzVend:         coerceFloat(cell("prz_vend")),
			ValoreNetto:     coerceFloat(cell("valore_netto")),
			TaccoMM:         coerceFloat(cell("tacco_mm")),
		}
		if rec.Product == "" {
			rec.Product = code
		}
		records = append(records, rec)
	}
	return records, true
}

// WriteCSV writes the clean table. Re-parsing the output through Parse
// yields the identical table.
func WriteCSV(w io.Writer, records []internal.ArticleRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Reparto, r.Categoria, r.Fornitore, r.Code, r.Product,
			strconv.Itoa(r.Ordinato), strconv.Itoa(r.Consegnate),
			strconv.Itoa(r.Vendute), strconv.Itoa(r.Giacenza),
			formatFloat(r.PercVenduto), formatFloat(r.PercVendutoCalc),
			formatFloat(r.PrzAcq), formatFloat(r.PrzVend), formatFloat(r.ValoreNetto),
			formatFloat(r.TaccoMM),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func headerIndex(row []string) map[string]int {
	idx := map[string]int{}
	for i, h := range row {
		norm := strings.ToLower(strings.TrimSpace(h))
		for canonical, aliases := range headerAliases {
			if _, taken := idx[canonical]; taken {
				continue
			}
			for _, a := range aliases {
				if norm == a {
					idx[canonical] = i
					break
				}
			}
		}
	}
	return idx
}

func coerceInt(s string) int {
	if v := coerceFloat(s); v != nil {
		return int(*v)
	}
	return 0
}

func coerceFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
