// ABOUTME: Migration utility for moving warmpath data between storage backends.
// ABOUTME: Copies every warmpath key from SQLite to Charm KV or back, with dry-run and backup.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/warmpath/charm"
	"github.com/harperreed/warmpath/config"
	"github.com/harperreed/warmpath/db"
	"github.com/harperreed/warmpath/logging"
	"github.com/harperreed/warmpath/storage"
)

func main() {
	from := flag.String("from", config.BackendSQLite, "Source backend: sqlite or charm")
	to := flag.String("to", config.BackendCharm, "Destination backend: sqlite or charm")
	dbPath := flag.String("db", db.DefaultPath(), "Path to SQLite database file")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Back up the SQLite file before writing to it")
	flag.Parse()

	logger, err := logging.New(os.Stderr, "info")
	if err != nil {
		log.Fatal(err)
	}
	logger = logger.WithPrefix("migrate")

	if *from == *to {
		logger.Fatal("source and destination are the same backend", "backend", *from)
	}

	if *backup && !*dryRun && *to == config.BackendSQLite {
		if err := backupFile(*dbPath, logger); err != nil {
			logger.Fatal("backup failed", "err", err)
		}
	}

	src, err := open(*from, *dbPath)
	if err != nil {
		logger.Fatal("failed to open source", "backend", *from, "err", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := open(*to, *dbPath)
	if err != nil {
		logger.Fatal("failed to open destination", "backend", *to, "err", err)
	}
	defer func() { _ = dst.Close() }()

	n, err := copyKeys(src, dst, *dryRun, logger)
	if err != nil {
		logger.Fatal("migration failed", "err", err)
	}

	if *dryRun {
		logger.Info("dry run complete", "keys", n)
		return
	}
	logger.Info("migration completed successfully", "keys", n)
}

func open(backend, dbPath string) (storage.Backend, error) {
	switch backend {
	case config.BackendSQLite:
		kv, err := db.Open(dbPath)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.BackendCharm:
		client, err := charm.NewClient(config.Default().Charm())
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, backend)
	}
}

// copyKeys copies every known warmpath key present in src into dst. Keys
// missing from src are left untouched in dst.
func copyKeys(src, dst storage.Backend, dryRun bool, logger *log.Logger) (int, error) {
	copied := 0
	for _, key := range storage.AllKeys {
		value, err := src.Get(key)
		if errors.Is(err, storage.ErrNotFound) {
			logger.Debug("skipping missing key", "key", key)
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("failed to read %s: %w", key, err)
		}

		if dryRun {
			logger.Info("would copy", "key", key, "bytes", len(value))
			copied++
			continue
		}

		if err := dst.Set(key, value); err != nil {
			return copied, fmt.Errorf("failed to write %s: %w", key, err)
		}
		logger.Info("copied", "key", key, "bytes", len(value))
		copied++
	}
	return copied, nil
}

func backupFile(path string, logger *log.Logger) error {
	input, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, input, 0644); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	logger.Info("backup created", "path", backupPath)
	return nil
}
