package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"

	"github.com/dukerupert/hestia/internal/model"
	"github.com/dukerupert/hestia/internal/store"
)

var (
	ErrNotConfigured = errors.New("backup not configured")
	ErrInProgress    = errors.New("backup already in progress")
	ErrNotFound      = errors.New("backup not found")
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds backup manager configuration.
type Config struct {
	S3         S3Config
	Prefix     string // object key prefix
	Passphrase string
	Interval   time.Duration
	Retention  time.Duration
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// Manager takes encrypted snapshots of the database and keeps them in
// S3-compatible storage for the configured retention period.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	status Status

	db     *sql.DB
	store  *store.BackupStore
	client s3Client
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a backup manager. It stays disabled unless the bucket,
// credentials and passphrase are all set.
func NewManager(cfg Config, db *sql.DB, bs *store.BackupStore, logger *slog.Logger) *Manager {
	if cfg.Prefix == "" {
		cfg.Prefix = "hestia"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}

	m := &Manager{
		cfg:    cfg,
		db:     db,
		store:  bs,
		logger: logger.With("component", "backup"),
		status: Status{State: StateDisabled},
	}
	if cfg.S3.complete() && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether backups can run.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start begins the scheduled backup loop. It is a no-op when disabled.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.client == nil || m.done != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	done := m.done
	m.mu.Unlock()

	m.logger.Info("scheduled backups started", "interval", interval)

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.runScheduled(ctx)
			}
		}
	}()
}

// Stop ends the backup loop and waits for a running backup to finish.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	if s.LastBackup == nil {
		s.LastBackup = m.status.LastBackup
	}
	m.status = s
	m.mu.Unlock()
}

func (m *Manager) runScheduled(ctx context.Context) {
	if _, err := m.RunNow(ctx); err != nil {
		m.logger.Error("scheduled backup failed", "error", err)
	}
	if err := m.Cleanup(ctx); err != nil {
		m.logger.Error("backup cleanup failed", "error", err)
	}
}

// List returns the most recent backup records.
func (m *Manager) List(limit int) ([]model.Backup, error) {
	return m.store.List(limit)
}

// RunNow snapshots the database, encrypts the snapshot and uploads it.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	m.mu.Lock()
	client := m.client
	if client == nil {
		m.mu.Unlock()
		return nil, ErrNotConfigured
	}
	if m.status.InProgress {
		m.mu.Unlock()
		return nil, ErrInProgress
	}
	m.status.State = StateRunning
	m.status.InProgress = true
	cfg := m.cfg
	m.mu.Unlock()

	b, err := m.runBackup(ctx, client, cfg)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, err
	}

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now})
	m.logger.Info("backup completed", "id", b.ID, "key", b.S3Key, "size_bytes", b.SizeBytes)
	return b, nil
}

func (m *Manager) runBackup(ctx context.Context, client s3Client, cfg Config) (*model.Backup, error) {
	timestamp := time.Now().UTC().Format("2006-01-02T150405.000Z")
	filename := fmt.Sprintf("backup-%s.db.enc", timestamp)
	key := cfg.Prefix + "/" + filename

	record, err := m.store.Create(filename, key)
	if err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	fail := func(err error) (*model.Backup, error) {
		m.markRecord(record.ID, model.BackupStatusFailed, err.Error())
		return nil, err
	}

	snapshot, err := m.snapshot(ctx)
	if err != nil {
		return fail(err)
	}

	enc, err := Encrypt(snapshot, cfg.Passphrase)
	if err != nil {
		return fail(fmt.Errorf("encrypt: %w", err))
	}

	m.markRecord(record.ID, model.BackupStatusUploading, "")
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(enc),
		ContentLength: aws.Int64(int64(len(enc))),
	})
	if err != nil {
		return fail(fmt.Errorf("upload to s3: %w", err))
	}

	if err := m.store.UpdateCompleted(record.ID, int64(len(enc))); err != nil {
		return fail(fmt.Errorf("record completed backup: %w", err))
	}
	return m.store.GetByID(record.ID)
}

// markRecord updates a record's status. A failure only costs bookkeeping, so
// it is logged and the backup carries on.
func (m *Manager) markRecord(id int64, status model.BackupStatus, errMsg string) {
	if err := m.store.UpdateStatus(id, status, errMsg); err != nil {
		m.logger.Warn("update backup record failed", "id", id, "status", status, "error", err)
	}
}

// snapshot writes a consistent copy of the live database with VACUUM INTO
// and returns its bytes.
func (m *Manager) snapshot(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "hestia-backup-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return nil, fmt.Errorf("vacuum into: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Restore downloads backup id, decrypts it, checks its integrity and writes
// it to dest. The running database is not touched; the service must be
// restarted on dest to use it.
func (m *Manager) Restore(ctx context.Context, id int64, dest string) error {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil {
		return ErrNotConfigured
	}

	record, err := m.store.GetByID(id)
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.Status != model.BackupStatusCompleted {
		return ErrNotFound
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.S3.Bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	enc, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("read download: %w", err)
	}
	plain, err := Decrypt(enc, cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("decrypt backup: %w", err)
	}

	tmp := dest + ".restore"
	if err := os.WriteFile(tmp, plain, 0600); err != nil {
		return fmt.Errorf("write restored file: %w", err)
	}
	defer os.Remove(tmp)

	if err := checkIntegrity(tmp); err != nil {
		return err
	}

	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}
	os.Remove(dest + "-wal")
	os.Remove(dest + "-shm")

	m.logger.Info("backup restored", "id", id, "dest", dest)
	return nil
}

func checkIntegrity(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var integrity string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&integrity); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if integrity != "ok" {
		return fmt.Errorf("integrity check failed: %s", integrity)
	}
	return nil
}

// Cleanup deletes backups older than the retention period.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil {
		return nil
	}

	keys, err := m.store.DeleteOlderThan(time.Now().Add(-cfg.Retention))
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(cfg.S3.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete s3 object failed", "key", key, "error", err)
		}
	}
	if len(keys) > 0 {
		m.logger.Info("expired backups removed", "count", len(keys))
	}
	return nil
}
