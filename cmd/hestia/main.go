package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/hestia/internal/ai"
	"github.com/dukerupert/hestia/internal/backup"
	"github.com/dukerupert/hestia/internal/config"
	"github.com/dukerupert/hestia/internal/database"
	"github.com/dukerupert/hestia/internal/logging"
	"github.com/dukerupert/hestia/internal/server"
	"github.com/dukerupert/hestia/internal/store"
)

const usage = `usage: hestia [command]

commands:
  serve                 run the API server (default)
  backup                take one encrypted backup and exit
  backups               list recent backups
  restore <id> <dest>   download backup <id> and write it to <dest>`

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	backups := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.Backup.S3.Endpoint,
			Bucket:    cfg.Backup.S3.Bucket,
			Region:    cfg.Backup.S3.Region,
			AccessKey: cfg.Backup.S3.AccessKey,
			SecretKey: cfg.Backup.S3.SecretKey,
		},
		Prefix:     cfg.Backup.Prefix,
		Passphrase: cfg.Backup.Passphrase,
		Interval:   cfg.Backup.Interval,
		Retention:  cfg.Backup.Retention,
	}, db, store.NewBackupStore(db), logger)

	args := os.Args[1:]
	if len(args) > 0 && args[0] != "serve" {
		if err := runCommand(context.Background(), backups, args); err != nil {
			logger.Error("command failed", "command", args[0], "error", err)
			os.Exit(1)
		}
		return
	}

	var gen ai.Generator
	if cfg.Ollama.Enabled {
		gen = ai.NewClient(ai.Config{
			BaseURL: cfg.Ollama.URL,
			Model:   cfg.Ollama.Model,
			Timeout: cfg.Ollama.Timeout,
			Rate:    cfg.Ollama.Rate,
			Burst:   cfg.Ollama.Burst,
		}, logger)
		logger.Info("ai backend enabled", "url", cfg.Ollama.URL, "model", cfg.Ollama.Model)
	} else {
		logger.Info("ai backend disabled, using keyword classification and built-in lists")
	}
	aiSvc := ai.NewService(gen, nil, logger)

	srv := server.New(db, cfg, aiSvc, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Ollama.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Expired rate limit windows
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	go func() {
		logger.Info("hestia running", "addr", "http://localhost:"+cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	if cfg.Backup.Enabled {
		backups.Start(ctx)
	}

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	backups.Stop()
}

func runCommand(ctx context.Context, backups *backup.Manager, args []string) error {
	switch args[0] {
	case "backup":
		b, err := backups.RunNow(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("backup %d uploaded to %s (%d bytes)\n", b.ID, b.S3Key, b.SizeBytes)
		return nil
	case "backups":
		list, err := backups.List(20)
		if err != nil {
			return err
		}
		for _, b := range list {
			fmt.Printf("%d\t%s\t%s\t%d\n", b.ID, b.CreatedAt.Format(time.RFC3339), b.Status, b.SizeBytes)
		}
		return nil
	case "restore":
		if len(args) != 3 {
			return errors.New(usage)
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid backup id %q", args[1])
		}
		return backups.Restore(ctx, id, args[2])
	default:
		return errors.New(usage)
	}
}
