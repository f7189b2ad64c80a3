package catalog

import (
	"sort"
	"strings"

	"barca/internal"
)

// Filter narrows the clean table before packaging, mirroring the selection
// the buyers apply: minimum stock, minimum sell-through, optional
// department/category/supplier equality.
type Filter struct {
	GiacenzaMin    int
	PercVenditaMin float64
	Reparto        string
	Categoria      string
	Fornitore      string
}

func (f Filter) Apply(records []internal.ArticleRecord) []internal.ArticleRecord {
	out := make([]internal.ArticleRecord, 0, len(records))
	for _, r := range records {
		if r.Giacenza <= f.GiacenzaMin {
			continue
		}
		if percVendita(r) <= f.PercVenditaMin {
			continue
		}
		if f.Reparto != "" && !strings.EqualFold(r.Reparto, f.Reparto) {
			continue
		}
		if f.Categoria != "" && !strings.EqualFold(r.Categoria, f.Categoria) {
			continue
		}
		if f.Fornitore != "" && !strings.EqualFold(r.Fornitore, f.Fornitore) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Sort orders records by the named field; unknown fields leave the order
// untouched. The sort is stable so equal keys keep source order.
func Sort(records []internal.ArticleRecord, field string, desc bool) {
	key := sortKey(field)
	if key == nil {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return key(records[i]) > key(records[j])
		}
		return key(records[i]) < key(records[j])
	})
}

func sortKey(field string) func(internal.ArticleRecord) float64 {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "perc_venduto", "perc_venduto_calc", "perc_vendita":
		return func(r internal.ArticleRecord) float64 { return percVendita(r) }
	case "giacenza":
		return func(r internal.ArticleRecord) float64 { return float64(r.Giacenza) }
	case "consegnate":
		return func(r internal.ArticleRecord) float64 { return float64(r.Consegnate) }
	case "vendute":
		return func(r internal.ArticleRecord) float64 { return float64(r.Vendute) }
	case "ordinato":
		return func(r internal.ArticleRecord) float64 { return float64(r.Ordinato) }
	case "tacco_mm":
		return func(r internal.ArticleRecord) float64 { return optOrMin(r.TaccoMM) }
	case "valore_netto":
		return func(r internal.ArticleRecord) float64 { return optOrMin(r.ValoreNetto) }
	default:
		return nil
	}
}

func percVendita(r internal.ArticleRecord) float64 {
	if r.PercVendutoCalc != nil {
		return *r.PercVendutoCalc
	}
	if r.PercVenduto != nil {
		return *r.PercVenduto
	}
	return 0
}

// Records without the field sort to the bottom of a descending list.
func optOrMin(v *float64) float64 {
	if v == nil {
		return -1e18
	}
	return *v
}
