package analytics

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"upiqr/internal/platform/config"
	"upiqr/internal/platform/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := database.NewDB(config.DatabaseConfig{URL: ":memory:", MaxConnections: 1})
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	if _, err := database.Migrate(db, "../../../migrations"); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestService_RecordAndRollup(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))

	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	at := func(h int) int64 { return day.Add(time.Duration(h) * time.Hour).UnixMilli() }

	scans := []Scan{
		{LinkID: "l1", ShortCode: "abc", Timestamp: at(1), IPAddress: "1.1.1.1", DeviceType: "mobile", OS: "Android", ReferrerDomain: "wa.me"},
		{LinkID: "l1", ShortCode: "abc", Timestamp: at(2), IPAddress: "1.1.1.1", DeviceType: "mobile", OS: "iOS"},
		{LinkID: "l1", ShortCode: "abc", Timestamp: at(3), IPAddress: "2.2.2.2", DeviceType: "desktop", OS: "Android"},
		{LinkID: "l2", ShortCode: "xyz", Timestamp: at(4), IPAddress: "3.3.3.3", DeviceType: "mobile", OS: "iOS"},
		{LinkID: "l1", ShortCode: "abc", Timestamp: at(30), IPAddress: "4.4.4.4", DeviceType: "tablet", OS: "iOS"},
	}
	for i := range scans {
		if err := svc.RecordScan(&scans[i]); err != nil {
			t.Fatalf("RecordScan: %v", err)
		}
		if scans[i].ID == "" {
			t.Error("scan id not assigned")
		}
	}

	history, err := svc.GetScanHistory("l1", at(0), at(24), 10, 0)
	if err != nil {
		t.Fatalf("GetScanHistory: %v", err)
	}
	if len(history) != 3 || history[0].Timestamp != at(3) {
		t.Errorf("Expected 3 scans newest first, got %+v", history)
	}

	n, err := svc.RollupDay("2024-03-09")
	if err != nil {
		t.Fatalf("RollupDay: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 links rolled up, got %d", n)
	}

	// rerun must overwrite, not duplicate
	if _, err := svc.RollupDay("2024-03-09"); err != nil {
		t.Fatalf("second RollupDay: %v", err)
	}

	stats, err := svc.GetStatsOverview("l1", "2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("GetStatsOverview: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("Expected 1 daily stat, got %d", len(stats))
	}
	want := DailyStat{Date: "2024-03-09", Scans: 3, UniqueIPs: 2, TopDevice: "mobile", TopOS: "Android", TopReferrer: "wa.me"}
	if stats[0] != want {
		t.Errorf("stat = %+v, want %+v", stats[0], want)
	}

	if _, err := svc.RollupDay("09/03/2024"); err == nil {
		t.Error("Expected error for malformed date")
	}
}

func TestRepository_GetScansError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, link_id").
		WithArgs("l1", int64(0), int64(10), 5, 0).
		WillReturnError(errors.New("database is locked"))

	if _, err := NewRepository(db).GetScans("l1", 0, 10, 5, 0); err == nil {
		t.Error("Expected error from GetScans")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
