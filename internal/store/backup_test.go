package store

import (
	"testing"
	"time"

	"github.com/dukerupert/hestia/internal/database"
	"github.com/dukerupert/hestia/internal/model"
)

func setupBackupTestDB(t *testing.T) *BackupStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBackupStore(db)
}

func TestBackupCreate(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, err := bs.Create("backup-2026.db.enc", "hestia/backup-2026.db.enc")
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if b.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if b.Filename != "backup-2026.db.enc" {
		t.Errorf("filename = %q, want %q", b.Filename, "backup-2026.db.enc")
	}
	if b.Status != model.BackupStatusPending {
		t.Errorf("status = %q, want %q", b.Status, model.BackupStatusPending)
	}
	if b.StartedAt == nil {
		t.Error("expected started_at to be set")
	}
	if b.CompletedAt != nil {
		t.Error("expected no completed_at")
	}
}

func TestBackupGetByIDNotFound(t *testing.T) {
	bs := setupBackupTestDB(t)

	got, err := bs.GetByID(42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestBackupUpdateStatus(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, _ := bs.Create("test.db.enc", "hestia/test.db.enc")

	if err := bs.UpdateStatus(b.ID, model.BackupStatusUploading, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, _ := bs.GetByID(b.ID)
	if got.Status != model.BackupStatusUploading {
		t.Errorf("status = %q, want %q", got.Status, model.BackupStatusUploading)
	}
	if got.ErrorMessage != "" {
		t.Errorf("error_message = %q, want empty", got.ErrorMessage)
	}

	if err := bs.UpdateStatus(b.ID, model.BackupStatusFailed, "upload failed"); err != nil {
		t.Fatalf("update status with error: %v", err)
	}
	got, _ = bs.GetByID(b.ID)
	if got.Status != model.BackupStatusFailed {
		t.Errorf("status = %q, want %q", got.Status, model.BackupStatusFailed)
	}
	if got.ErrorMessage != "upload failed" {
		t.Errorf("error_message = %q, want %q", got.ErrorMessage, "upload failed")
	}
}

func TestBackupUpdateCompleted(t *testing.T) {
	bs := setupBackupTestDB(t)

	b, _ := bs.Create("test.db.enc", "hestia/test.db.enc")
	if err := bs.UpdateCompleted(b.ID, 4096); err != nil {
		t.Fatalf("update completed: %v", err)
	}

	got, _ := bs.GetByID(b.ID)
	if got.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want %q", got.Status, model.BackupStatusCompleted)
	}
	if got.SizeBytes != 4096 {
		t.Errorf("size_bytes = %d, want 4096", got.SizeBytes)
	}
	if got.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}

func TestBackupListOrderAndLimit(t *testing.T) {
	bs := setupBackupTestDB(t)

	for _, name := range []string{"a", "b", "c"} {
		if _, err := bs.Create(name+".db.enc", "hestia/"+name+".db.enc"); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	all, err := bs.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Filename != "c.db.enc" {
		t.Errorf("first = %q, want newest c.db.enc", all[0].Filename)
	}

	limited, _ := bs.List(2)
	if len(limited) != 2 {
		t.Errorf("limited len = %d, want 2", len(limited))
	}
}

func TestBackupListEmpty(t *testing.T) {
	bs := setupBackupTestDB(t)

	got, err := bs.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestBackupDeleteOlderThan(t *testing.T) {
	bs := setupBackupTestDB(t)

	bs.Create("old.db.enc", "hestia/old.db.enc")
	bs.Create("older.db.enc", "hestia/older.db.enc")

	keys, err := bs.DeleteOlderThan(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("delete none: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("deleted %d, want 0", len(keys))
	}

	keys, err = bs.DeleteOlderThan(time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("deleted %d keys, want 2", len(keys))
	}

	remaining, _ := bs.List(10)
	if len(remaining) != 0 {
		t.Errorf("remaining = %d, want 0", len(remaining))
	}
}

func TestBackupLatestCompleted(t *testing.T) {
	bs := setupBackupTestDB(t)

	got, err := bs.LatestCompleted()
	if err != nil {
		t.Fatalf("latest on empty: %v", err)
	}
	if got != nil {
		t.Error("expected nil with no backups")
	}

	first, _ := bs.Create("first.db.enc", "hestia/first.db.enc")
	bs.UpdateCompleted(first.ID, 100)
	second, _ := bs.Create("second.db.enc", "hestia/second.db.enc")
	bs.UpdateStatus(second.ID, model.BackupStatusFailed, "boom")

	got, err = bs.LatestCompleted()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Errorf("latest = %+v, want backup %d", got, first.ID)
	}
}
