package staleness

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ManifestFile is the manifest database name inside the cache root.
const ManifestFile = "manifest.db"

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when schema.sql changes. Older manifests are
// rejected; deleting the file is safe since it only mirrors the cache.
const schemaVersion = 1

// ErrSchemaMismatch indicates a manifest written by a different version.
var ErrSchemaMismatch = errors.New("manifest schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Manifest records completed downloads in SQLite. A name counts as present
// only when it was recorded and the file still exists.
type Manifest struct {
	db   *sql.DB
	path string
}

var _ Checker = (*Manifest)(nil)

// OpenManifest opens or creates the manifest in cacheRoot.
func OpenManifest(ctx context.Context, cacheRoot string) (*Manifest, error) {
	if err := os.MkdirAll(cacheRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}
	dbPath := filepath.Join(cacheRoot, ManifestFile)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	m := &Manifest{db: db, path: dbPath}
	if err := m.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

// Path is the database file location.
func (m *Manifest) Path() string { return m.path }

// Close closes the database.
func (m *Manifest) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Missing returns the expected names that were never recorded for dir or
// whose file has since disappeared.
func (m *Manifest) Missing(ctx context.Context, dir string, expected []string) ([]string, error) {
	recorded := make(map[string]struct{})
	err := retryOnBusy(ctx, func() error {
		clear(recorded)
		rows, err := m.db.QueryContext(ctx, "SELECT name FROM downloads WHERE dir = ?", filepath.Clean(dir))
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			recorded[name] = struct{}{}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query manifest: %w", err)
	}

	onDisk, err := listNames(dir)
	if err != nil {
		return nil, err
	}
	for name := range recorded {
		if _, ok := onDisk[name]; !ok {
			delete(recorded, name)
		}
	}
	return subtract(expected, recorded), nil
}

// Record marks name in dir as completely downloaded.
func (m *Manifest) Record(ctx context.Context, dir, name string) error {
	err := retryOnBusy(ctx, func() error {
		_, err := m.db.ExecContext(ctx,
			`INSERT INTO downloads (dir, name, recorded_at) VALUES (?, ?, ?)
			 ON CONFLICT(dir, name) DO UPDATE SET recorded_at = excluded.recorded_at`,
			filepath.Clean(dir), name, time.Now().UTC().Format(time.RFC3339Nano))
		return err
	})
	if err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	return nil
}

// Forget drops every record under dir, used when a directory is cleared.
func (m *Manifest) Forget(ctx context.Context, dir string) error {
	clean := filepath.Clean(dir)
	return retryOnBusy(ctx, func() error {
		_, err := m.db.ExecContext(ctx,
			"DELETE FROM downloads WHERE dir = ? OR dir LIKE ? ESCAPE '\\'",
			clean, escapeLike(clean+string(filepath.Separator))+"%")
		return err
	})
}

func (m *Manifest) initSchema(ctx context.Context) error {
	var tableExists int
	err := m.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return m.createSchema(ctx)
	}

	var version int
	if err := m.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: manifest has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, m.path)
	}
	return nil
}

func (m *Manifest) createSchema(ctx context.Context) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
