// Package storage keeps visitor preferences in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/scubides/homepage/state"
)

// Prefs is the durable key-value store behind each visitor's State Store.
type Prefs struct {
	db     *sql.DB
	now    func() time.Time
	logger *zap.Logger
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string, logger *zap.Logger) (*Prefs, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure prefs db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	p := &Prefs{db: db, now: time.Now, logger: logger}
	if err := p.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return p, nil
}

// Close closes the database.
func (p *Prefs) Close() error {
	return p.db.Close()
}

func (p *Prefs) ensureSchema() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS preferences (
			visitor_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (visitor_id, key)
		);

		CREATE INDEX IF NOT EXISTS idx_preferences_updated ON preferences(updated_at);
	`)
	return err
}

// Get returns the value stored for visitorID and key, or "" if none.
func (p *Prefs) Get(ctx context.Context, visitorID, key string) (string, error) {
	var value string
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE visitor_id = ? AND key = ?`,
		visitorID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for visitorID and key.
func (p *Prefs) Set(ctx context.Context, visitorID, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO preferences (visitor_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(visitor_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		visitorID, key, value, p.now().UTC())
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// Prune deletes preferences not updated within maxAge.
func (p *Prefs) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := p.now().UTC().Add(-maxAge)
	res, err := p.db.ExecContext(ctx, `DELETE FROM preferences WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune preferences: %w", err)
	}
	return res.RowsAffected()
}

// StartCleanup prunes stale preferences every interval. Returns a stop
// function.
func (p *Prefs) StartCleanup(maxAge, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				n, err := p.Prune(context.Background(), maxAge)
				if err != nil {
					p.logger.Warn("preference cleanup failed", zap.Error(err))
					continue
				}
				if n > 0 {
					p.logger.Info("pruned stale preferences", zap.Int64("rows", n))
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}

// Scope binds the store to one visitor.
func (p *Prefs) Scope(visitorID string) state.Persister {
	return scoped{prefs: p, visitor: visitorID}
}

type scoped struct {
	prefs   *Prefs
	visitor string
}

func (s scoped) Load(ctx context.Context, key string) (string, error) {
	return s.prefs.Get(ctx, s.visitor, key)
}

func (s scoped) Save(ctx context.Context, key, value string) error {
	return s.prefs.Set(ctx, s.visitor, key, value)
}
