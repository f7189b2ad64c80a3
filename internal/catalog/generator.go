// Package catalog packages the enriched article table into the printable
// photo catalog: one card per article plus raw images and a missing report,
// zipped for download.
package catalog

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"barca/internal"
	"barca/internal/images"
	"barca/internal/render"
)

type Generator struct {
	fetcher images.Fetcher
	folder  string
	workers int
}

func NewGenerator(fetcher images.Fetcher, folder string, workers int) *Generator {
	if strings.TrimSpace(folder) == "" {
		folder = "BARCA"
	}
	if workers <= 0 {
		workers = 1
	}
	return &Generator{fetcher: fetcher, folder: folder, workers: workers}
}

type fetchResult struct {
	blob   []byte
	reason string
}

// GenerateZip fetches images on a small worker pool (each fetch independent,
// keyed by code), renders every card in rank order and assembles the
// archive. A missing image never aborts the batch; it ends up in
// _missing_report.txt instead.
func (g *Generator) GenerateZip(ctx context.Context, records []internal.ArticleRecord) ([]byte, error) {
	results := make([]fetchResult, len(records))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				_, blob, reason := g.fetcher.FetchBest(ctx, records[i].Code)
				results[i] = fetchResult{blob: blob, reason: reason}
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	missing := []string{}
	for i, rec := range records {
		rank := i + 1
		res := results[i]
		if len(res.blob) == 0 {
			reason := res.reason
			if reason == "" {
				reason = "missing"
			}
			missing = append(missing, rec.Code+"\t"+reason)
		}

		card, err := render.Card(rec, rank, res.blob, res.reason)
		if err != nil {
			return nil, fmt.Errorf("render card %s: %w", rec.Code, err)
		}

		name := fmt.Sprintf("%03d_%s.jpg", rank, strings.ReplaceAll(rec.Code, "/", "_"))
		if err := writeEntry(zw, g.folder+"/cards/"+name, card); err != nil {
			return nil, err
		}
		if len(res.blob) > 0 {
			if err := writeEntry(zw, g.folder+"/_raw/"+name, res.blob); err != nil {
				return nil, err
			}
		}
	}

	if len(missing) > 0 {
		if err := writeEntry(zw, g.folder+"/_missing_report.txt", []byte(strings.Join(missing, "\n"))); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, blob []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}
	if _, err := w.Write(blob); err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}
	return nil
}
