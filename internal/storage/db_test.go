package storage

import (
	"path/filepath"
	"testing"

	"barca/internal"
	"barca/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReplaceArticlesIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	row, err := db.UpsertReport("upload", "anart.txt", "cli", "2026-08-30T10:00:00Z", "h1", "/tmp/anart.txt", "fetched")
	if err != nil {
		t.Fatal(err)
	}

	records := []internal.ArticleRecord{
		{Code: "302/AB12", Product: "SANDALO", Consegnate: 8, Vendute: 5, Giacenza: 3, PrzAcq: util.FloatPtr(12.5)},
		{Code: "15/ZZ99", Product: "DECOLLETE", Consegnate: 4, Vendute: 2, Giacenza: 2},
	}
	if err := db.ReplaceArticles(row.ID, records); err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceArticles(row.ID, records); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListArticles(row.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("articles=%d want 2", len(got))
	}
	if got[0].Code != "302/AB12" || got[0].PrzAcq == nil || *got[0].PrzAcq != 12.5 {
		t.Fatalf("first article: %+v", got[0])
	}
	if got[1].PrzAcq != nil {
		t.Fatalf("nil price survived round trip: %+v", got[1])
	}
}

func TestUpsertReportDedupesOnOriginAndHash(t *testing.T) {
	db := openTestDB(t)

	first, err := db.UpsertReport("imap", "a.csv", "shop@example.com", "2026-08-30T10:00:00Z", "h1", "/raw/h1.csv", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.UpsertReport("imap", "a_rinominato.csv", "shop@example.com", "2026-08-31T10:00:00Z", "h1", "/raw/h1.csv", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %d %d", first.ID, second.ID)
	}
	if second.Filename != "a_rinominato.csv" {
		t.Fatalf("filename not refreshed: %q", second.Filename)
	}

	other, err := db.UpsertReport("upload", "a.csv", "", "", "h1", "/raw/h1.csv", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == first.ID {
		t.Fatal("different origin collapsed into same row")
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	if v, err := db.GetMetadata("lastExport"); err != nil || v != nil {
		t.Fatalf("empty read: v=%v err=%v", v, err)
	}
	if err := db.SetMetadata("lastExport", "2026-08-30"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("lastExport", "2026-08-31"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMetadata("lastExport")
	if err != nil || v == nil || *v != "2026-08-31" {
		t.Fatalf("read back: v=%v err=%v", v, err)
	}
}
