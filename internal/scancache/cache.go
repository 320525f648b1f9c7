package scancache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"bdpl/internal/logging"
)

// Entry describes one cached analysis.
type Entry struct {
	Fingerprint string
	DiscPath    string
	Size        int
	CreatedAt   time.Time
}

// Store is a SQLite-backed cache of serialized analyses.
type Store struct {
	db     *sql.DB
	lock   *flock.Flock
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the cache database under dir, acquiring a
// cross-process file lock first.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("scancache: cache directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, "scans.lock"))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}

	dbPath := filepath.Join(dir, "scans.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		lock:   lock,
		path:   dbPath,
		logger: logging.NewComponentLogger(logger, "scancache"),
	}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS scans (
    fingerprint TEXT PRIMARY KEY,
    disc_path   TEXT NOT NULL,
    document    BLOB NOT NULL,
    created_at  TEXT NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the database and the file lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}

// Lookup returns the cached document for a fingerprint, if present.
func (s *Store) Lookup(ctx context.Context, fingerprint string) ([]byte, bool, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM scans WHERE fingerprint = ?`, fingerprint).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup scan: %w", err)
	}
	s.logger.Debug("cache hit", logging.String("fingerprint", fingerprint))
	return doc, true, nil
}

// Put stores or replaces the cached document for a fingerprint.
func (s *Store) Put(ctx context.Context, fingerprint, discPath string, document []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (fingerprint, disc_path, document, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET
		   disc_path = excluded.disc_path,
		   document = excluded.document,
		   created_at = excluded.created_at`,
		fingerprint, discPath, document, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store scan: %w", err)
	}
	s.logger.Debug("cached analysis",
		logging.String("fingerprint", fingerprint),
		logging.String("disc", discPath),
		logging.Int("bytes", len(document)))
	return nil
}

// Entries lists cached scans ordered by creation time, newest first.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fingerprint, disc_path, length(document), created_at
		 FROM scans ORDER BY created_at DESC, fingerprint`)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.Fingerprint, &e.DiscPath, &e.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every cached scan.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scans`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
