package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"barca/internal"
	"barca/internal/config"
	"barca/internal/heel"
	"barca/internal/report"
	"barca/internal/storage"
)

type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg}
}

type ProcessResult struct {
	ReportID int
	Articles int
}

func (s *ProcessingService) ProcessByID(reportID int) (ProcessResult, error) {
	row, err := s.db.MustReportByID(reportID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessReport(row)
}

func (s *ProcessingService) ProcessPending(limit int) (int, int, error) {
	pending, err := s.db.ListReportsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedReports := 0
	processedArticles := 0
	for _, row := range pending {
		res, err := s.ProcessReport(row)
		if err != nil {
			return processedReports, processedArticles, err
		}
		processedReports++
		processedArticles += res.Articles
	}
	return processedReports, processedArticles, nil
}

func (s *ProcessingService) ProcessReport(row internal.ReportRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(row.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	text, err := NormalizeInput(raw)
	if err != nil {
		_ = s.db.UpdateReportStatus(row.ID, "failed")
		return ProcessResult{}, err
	}

	records, err := report.Parse(text, report.Options{Strict: s.cfg.StrictParse})
	if err != nil {
		_ = s.db.UpdateReportStatus(row.ID, "failed")
		return ProcessResult{}, err
	}

	withHeel := EnrichHeel(records)

	if err := s.db.ReplaceArticles(row.ID, records); err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.UpdateReportStatus(row.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(traceID(), row.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"articles": len(records), "withHeel": withHeel})

	return ProcessResult{ReportID: row.ID, Articles: len(records)}, nil
}

// EnrichHeel fills TaccoMM from the product description for records that do
// not carry it yet. Returns how many records ended up with a heel height.
func EnrichHeel(records []internal.ArticleRecord) int {
	withHeel := 0
	for i := range records {
		if records[i].TaccoMM == nil {
			records[i].TaccoMM = heel.ExtractMM(records[i].Product)
		}
		if records[i].TaccoMM != nil {
			withHeel++
		}
	}
	return withHeel
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
