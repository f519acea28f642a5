package shard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dshills/cindex-mcp/pkg/types"
)

const shardsSchema = `
CREATE TABLE IF NOT EXISTS shards (
	id         TEXT PRIMARY KEY,
	digest     BLOB NOT NULL,
	payload    BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps one row per shard in a SQLite database stored inside the
// reserved subdirectory of the initialization root. Safe for concurrent use;
// SQLite serializes writers through the single connection.
type SQLiteStore struct {
	mu    sync.Mutex
	db    *sql.DB
	state initState
}

// NewSQLiteStore creates an unbound SQLite store. Initialize must succeed
// before Store/Retrieve do anything useful.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// openDatabase opens the shard database with appropriate settings.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(shardsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create shards table: %w", err)
	}
	return db, nil
}

// Initialize binds the store to a database at root/.cindex/shards.db. The
// first successful call wins; later calls are no-ops returning nil. A failed
// first call disables the store permanently.
func (s *SQLiteStore) Initialize(root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case initDone:
		return nil
	case initFailed:
		return ErrNotInitialized
	}

	dir := filepath.Join(root, indexSubdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.state = initFailed
		return fmt.Errorf("failed to create shard directory: %w", err)
	}
	db, err := openDatabase(filepath.Join(dir, "shards.db"))
	if err != nil {
		s.state = initFailed
		return fmt.Errorf("failed to open shard database: %w", err)
	}
	s.db = db
	s.state = initDone
	return nil
}

// handle returns the bound database or ErrNotInitialized.
func (s *SQLiteStore) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != initDone {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

// Store upserts the shard row for file. The row replace is atomic, so a
// concurrent Retrieve sees either the old shard or the new one.
func (s *SQLiteStore) Store(ctx context.Context, file string, shard *Shard) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	payload, err := encode(shard)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO shards (id, digest, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			digest = excluded.digest,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, identifierFor(file), shard.Digest[:], payload, time.Now()); err != nil {
		return fmt.Errorf("failed to store shard: %w", err)
	}
	return nil
}

// Retrieve reads back the shard for file and verifies it was written under
// the expected digest.
func (s *SQLiteStore) Retrieve(ctx context.Context, file string, expected types.Digest) (*Shard, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var payload []byte
	query := `SELECT payload FROM shards WHERE id = ?`
	err = db.QueryRowContext(ctx, query, identifierFor(file)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query shard: %w", err)
	}

	shard, err := decode(payload)
	if err != nil {
		return nil, err
	}
	if shard.Digest != expected {
		return nil, ErrStale
	}
	return shard, nil
}

// Close releases the underlying database. The store is unusable afterwards.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.state = initFailed
	return err
}
