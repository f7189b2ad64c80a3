package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"barca/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS reports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  origin TEXT NOT NULL,
  filename TEXT NOT NULL,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(origin, hash)
);

CREATE TABLE IF NOT EXISTS articles (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  reportId INTEGER NOT NULL,
  reparto TEXT,
  categoria TEXT,
  fornitore TEXT,
  code TEXT NOT NULL,
  product TEXT NOT NULL,
  ordinato INTEGER NOT NULL,
  consegnate INTEGER NOT NULL,
  vendute INTEGER NOT NULL,
  giacenza INTEGER NOT NULL,
  percVenduto REAL,
  percVendutoCalc REAL,
  przAcq REAL,
  przVend REAL,
  valoreNetto REAL,
  taccoMm REAL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(reportId) REFERENCES reports(id)
);
CREATE INDEX IF NOT EXISTS idx_articles_report ON articles(reportId);
CREATE INDEX IF NOT EXISTS idx_articles_code ON articles(code);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  reportId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(reportId) REFERENCES reports(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertReport(origin, filename, sender, receivedAt, hash, rawRef, status string) (internal.ReportRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO reports (origin, filename, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(origin, hash) DO UPDATE SET
  filename=excluded.filename,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, origin, filename, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.ReportRow{}, err
	}

	row, err := d.GetReportByHash(origin, hash)
	if err != nil {
		return internal.ReportRow{}, err
	}
	if row == nil {
		return internal.ReportRow{}, errors.New("failed to upsert report")
	}
	return *row, nil
}

func (d *DB) GetReportByHash(origin, hash string) (*internal.ReportRow, error) {
	var row internal.ReportRow
	err := d.conn.QueryRow(`
SELECT id, origin, filename, sender, receivedAt, hash, status, rawRef
FROM reports WHERE origin = ? AND hash = ?
`, origin, hash).Scan(
		&row.ID, &row.Origin, &row.Filename, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetReportByID(id int) (*internal.ReportRow, error) {
	var row internal.ReportRow
	err := d.conn.QueryRow(`
SELECT id, origin, filename, sender, receivedAt, hash, status, rawRef
FROM reports WHERE id = ?
`, id).Scan(
		&row.ID, &row.Origin, &row.Filename, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustReportByID(id int) (internal.ReportRow, error) {
	row, err := d.GetReportByID(id)
	if err != nil {
		return internal.ReportRow{}, err
	}
	if row == nil {
		return internal.ReportRow{}, fmt.Errorf("report not found: id=%d", id)
	}
	return *row, nil
}

func (d *DB) ListReportsByStatus(status string, limit int) ([]internal.ReportRow, error) {
	rows, err := d.conn.Query(`
SELECT id, origin, filename, sender, receivedAt, hash, status, rawRef
FROM reports WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReportRow
	for rows.Next() {
		var row internal.ReportRow
		if err := rows.Scan(&row.ID, &row.Origin, &row.Filename, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateReportStatus(reportID int, status string) error {
	_, err := d.conn.Exec(`UPDATE reports SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, reportID)
	return err
}

// ReplaceArticles clears and re-inserts the parsed table for one report in a
// single transaction, so a re-process never leaves a half-written table.
func (d *DB) ReplaceArticles(reportID int, records []internal.ArticleRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM articles WHERE reportId = ?`, reportID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO articles (
  reportId, reparto, categoria, fornitore, code, product,
  ordinato, consegnate, vendute, giacenza,
  percVenduto, percVendutoCalc, przAcq, przVend, valoreNetto, taccoMm
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			reportID, r.Reparto, r.Categoria, r.Fornitore, r.Code, r.Product,
			r.Ordinato, r.Consegnate, r.Vendute, r.Giacenza,
			r.PercVenduto, r.PercVendutoCalc, r.PrzAcq, r.PrzVend, r.ValoreNetto, r.TaccoMM,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListArticles(reportID int) ([]internal.ArticleRecord, error) {
	rows, err := d.conn.Query(`
SELECT reparto, categoria, fornitore, code, product,
       ordinato, consegnate, vendute, giacenza,
       percVenduto, percVendutoCalc, przAcq, przVend, valoreNetto, taccoMm
FROM articles WHERE reportId = ? ORDER BY id ASC
`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ArticleRecord
	for rows.Next() {
		var r internal.ArticleRecord
		if err := rows.Scan(
			&r.Reparto, &r.Categoria, &r.Fornitore, &r.Code, &r.Product,
			&r.Ordinato, &r.Consegnate, &r.Vendute, &r.Giacenza,
			&r.PercVenduto, &r.PercVendutoCalc, &r.PrzAcq, &r.PrzVend, &r.ValoreNetto, &r.TaccoMM,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, reportID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, reportId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`,
		traceID, reportID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
