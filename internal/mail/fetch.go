package mail

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"barca/internal"
	"barca/internal/storage"
)

// FetchService pulls unseen messages, extracts report attachments and stores
// each one content-addressed on disk plus a row in the reports table.
type FetchService struct {
	db        *storage.DB
	connector Connector
	rawDir    string
}

type FetchResult struct {
	Fetched int
	Stored  int
}

func NewFetchService(db *storage.DB, rawReportDir string, connector Connector) *FetchService {
	return &FetchService{db: db, connector: connector, rawDir: rawReportDir}
}

func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	stored := 0
	for _, msg := range messages {
		files, err := ExtractReportFiles(msg)
		if err != nil {
			return FetchResult{}, err
		}
		for _, f := range files {
			if _, err := s.StoreReport(f); err != nil {
				return FetchResult{}, err
			}
			stored++
		}
	}

	return FetchResult{Fetched: len(messages), Stored: stored}, nil
}

// StoreReport writes the report bytes under the raw dir named by their sha256
// and upserts the matching reports row. Re-fetching the same attachment is a
// no-op on both disk and database.
func (s *FetchService) StoreReport(f internal.FetchedReportFile) (internal.ReportRow, error) {
	hashBytes := sha256.Sum256(f.Content)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawDir, 0o755); err != nil {
		return internal.ReportRow{}, err
	}

	rawPath := filepath.Join(s.rawDir, hash+filepath.Ext(f.Filename))
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, f.Content, 0o644); err != nil {
			return internal.ReportRow{}, err
		}
	}

	return s.db.UpsertReport(string(f.Origin), f.Filename, f.Sender, f.ReceivedAt, hash, rawPath, "fetched")
}
