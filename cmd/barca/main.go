package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"barca/internal"
	"barca/internal/catalog"
	"barca/internal/config"
	"barca/internal/images"
	"barca/internal/listener"
	"barca/internal/mail"
	"barca/internal/pipeline"
	"barca/internal/report"
	"barca/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "report:clean":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "raw report path (txt/csv/xlsx/pdf)")
		out := fs.String("out", "", "output clean csv path")
		xlsxOut := fs.String("xlsx", "", "optional output xlsx path")
		lenient := fs.Bool("lenient", false, "skip completeness validation")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--input and --out are required"))
		}

		records, err := cleanFile(*input, cfg.StrictParse && !*lenient)
		must(err)
		must(pipeline.WriteCleanCSV(records, *out))
		if strings.TrimSpace(*xlsxOut) != "" {
			must(pipeline.ExportArticlesToXLSX(records, *xlsxOut))
		}
		fmt.Printf("clean done articles=%d output=%s\n", len(records), *out)
	case "report:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		reportID := fs.Int("reportId", 0, "specific report id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		db := openDB(cfg)
		defer db.Close()
		processor := pipeline.NewProcessingService(db, cfg)
		if *reportID != 0 {
			res, err := processor.ProcessByID(*reportID)
			must(err)
			fmt.Printf("processed report id=%d articles=%d\n", res.ReportID, res.Articles)
			return
		}
		reports, articles, err := processor.ProcessPending(*batch)
		must(err)
		fmt.Printf("processed pending reports=%d articles=%d\n", reports, articles)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		label := fs.String("label", cfg.MailLabel, "mailbox/label")
		max := fs.Int("max", cfg.MailFetchMax, "max messages")
		_ = fs.Parse(os.Args[2:])
		db := openDB(cfg)
		defer db.Close()
		conn, err := mail.NewIMAPConnector(cfg)
		must(err)
		fetch := mail.NewFetchService(db, cfg.RawReportDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done fetched=%d stored=%d\n", result.Fetched, result.Stored)
	case "mail:listen":
		db := openDB(cfg)
		defer db.Close()
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	case "catalog:build":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "clean csv path")
		out := fs.String("out", "", "output zip path")
		giacenzaMin := fs.Int("giacenza-min", cfg.GiacenzaMin, "minimum on-hand stock (exclusive)")
		percMin := fs.Float64("perc-min", cfg.PercVenditaMin, "minimum sell-through percent (exclusive)")
		reparto := fs.String("reparto", "", "department filter")
		categoria := fs.String("categoria", "", "category filter")
		fornitore := fs.String("fornitore", "", "supplier filter")
		sortBy := fs.String("sort", cfg.SortBy, "sort field")
		asc := fs.Bool("asc", false, "sort ascending")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--input and --out are required"))
		}

		blob, err := os.ReadFile(*input)
		must(err)
		records, ok := report.ParseCleanCSV(string(blob))
		if !ok {
			must(fmt.Errorf("%s is not a clean csv", *input))
		}
		filter := catalog.Filter{
			GiacenzaMin:    *giacenzaMin,
			PercVenditaMin: *percMin,
			Reparto:        *reparto,
			Categoria:      *categoria,
			Fornitore:      *fornitore,
		}
		must(buildCatalog(cfg, records, filter, *sortBy, !*asc, *out))
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "raw report path (txt/csv/xlsx/pdf)")
		out := fs.String("out", "", "output zip path")
		cleanOut := fs.String("clean", "", "optional clean csv path")
		lenient := fs.Bool("lenient", false, "skip completeness validation")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--input and --out are required"))
		}

		records, err := cleanFile(*input, cfg.StrictParse && !*lenient)
		must(err)
		if strings.TrimSpace(*cleanOut) != "" {
			must(pipeline.WriteCleanCSV(records, *cleanOut))
		}
		filter := catalog.Filter{GiacenzaMin: cfg.GiacenzaMin, PercVenditaMin: cfg.PercVenditaMin}
		must(buildCatalog(cfg, records, filter, cfg.SortBy, cfg.SortDesc, *out))
	default:
		usage()
		os.Exit(1)
	}
}

func cleanFile(path string, strict bool) ([]internal.ArticleRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := pipeline.NormalizeInput(raw)
	if err != nil {
		return nil, err
	}
	records, err := report.Parse(text, report.Options{Strict: strict})
	if err != nil {
		return nil, err
	}
	pipeline.EnrichHeel(records)
	return records, nil
}

func buildCatalog(cfg config.Config, records []internal.ArticleRecord, filter catalog.Filter, sortBy string, desc bool, outPath string) error {
	selected := filter.Apply(records)
	catalog.Sort(selected, sortBy, desc)
	if len(selected) == 0 {
		return fmt.Errorf("no articles left after filtering")
	}

	gen := catalog.NewGenerator(images.NewClient(cfg), cfg.CatalogFolderName, cfg.CatalogWorkers)
	blob, err := gen.GenerateZip(context.Background(), selected)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, blob, 0o644); err != nil {
		return err
	}
	fmt.Printf("catalog done articles=%d output=%s\n", len(selected), outPath)
	return nil
}

func openDB(cfg config.Config) *storage.DB {
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

func usage() {
	fmt.Println("usage: barca <command>")
	fmt.Println("commands:")
	fmt.Println("  report:clean --input=report.txt --out=clean.csv [--xlsx=clean.xlsx] [--lenient]")
	fmt.Println("  report:process [--reportId=1] [--batch=20]")
	fmt.Println("  mail:fetch [--label=INBOX] [--max=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  catalog:build --input=clean.csv --out=catalog.zip [filters]")
	fmt.Println("  run --input=report.txt --out=catalog.zip [--clean=clean.csv] [--lenient]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
