package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"barca/internal/config"
	"barca/internal/mail"
	"barca/internal/pipeline"
	"barca/internal/storage"
)

// Service polls the mailbox for new inventory reports, parses them and,
// when auto export is on, drops a clean CSV per processed report under
// OUTPUT_DIR/listener/.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	connector, err := mail.NewIMAPConnector(s.cfg)
	if err != nil {
		return err
	}

	fetchService := mail.NewFetchService(s.db, s.cfg.RawReportDir, connector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailLabel, s.cfg.MailFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	processedReports, processedArticles, err := processor.ProcessPending(s.cfg.MailProcessBatch)
	if err != nil {
		return err
	}

	if s.cfg.MailAutoExport {
		if err := s.exportProcessed(); err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done fetched=%d stored=%d reports=%d articles=%d\n", fetchResult.Fetched, fetchResult.Stored, processedReports, processedArticles)
	_ = ctx
	return nil
}

func (s *Service) exportProcessed() error {
	reports, err := s.db.ListReportsByStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, row := range reports {
		records, err := s.db.ListArticles(row.ID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			continue
		}
		filename := fmt.Sprintf("%d_%s.csv", row.ID, sanitizeFilename(row.Filename))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
		if err := pipeline.WriteCleanCSV(records, outputPath); err != nil {
			return err
		}
		_ = s.db.UpdateReportStatus(row.ID, "exported")
	}
	return nil
}

func sanitizeFilename(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
