package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"barca/internal"
	"barca/internal/report"
)

func ExportArticlesToXLSX(records []internal.ArticleRecord, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range report.CSVColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, rec.Reparto)
		set(2, rec.Categoria)
		set(3, rec.Fornitore)
		set(4, rec.Code)
		set(5, rec.Product)
		set(6, rec.Ordinato)
		set(7, rec.Consegnate)
		set(8, rec.Vendute)
		set(9, rec.Giacenza)
		set(10, derefFloat(rec.PercVenduto))
		set(11, derefFloat(rec.PercVendutoCalc))
		set(12, derefFloat(rec.PrzAcq))
		set(13, derefFloat(rec.PrzVend))
		set(14, derefFloat(rec.ValoreNetto))
		set(15, derefFloat(rec.TaccoMM))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// WriteCleanCSV writes the canonical clean CSV to outputPath, creating parent
// directories as needed.
func WriteCleanCSV(records []internal.ArticleRecord, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
