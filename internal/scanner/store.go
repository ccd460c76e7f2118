package scanner

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// cacheEntry is one fetched ciphertext, keyed by its leaf index.
type cacheEntry struct {
	Index      uint32
	Ciphertext string
}

// ScannerStore persists the note scanner's range cache across process
// restarts. Spec.md treats the cache as process-lifetime; this interface
// is an additive persistence layer, not a change to scanning semantics.
// The in-memory default satisfies the spec exactly; PostgresStore is an
// opt-in for long-running relayer-adjacent hosts.
type ScannerStore interface {
	// Load returns the cached entries and the last fetched index (0 if
	// nothing has been cached yet).
	Load(ctx context.Context) ([]cacheEntry, uint32, error)
	// Append adds newly fetched entries and advances the last fetched
	// index.
	Append(ctx context.Context, entries []cacheEntry, lastFetchedIndex uint32) error
	// Clear wipes the cache, used on force-refresh or explicit
	// invalidation.
	Clear(ctx context.Context) error
}

// InMemoryStore is the default ScannerStore: a process-lifetime cache
// guarded by a mutex, matching spec.md's cache model exactly.
type InMemoryStore struct {
	mu               sync.Mutex
	entries          []cacheEntry
	lastFetchedIndex uint32
}

// NewInMemoryStore builds an empty in-memory cache.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load(ctx context.Context) ([]cacheEntry, uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cacheEntry, len(s.entries))
	copy(out, s.entries)
	return out, s.lastFetchedIndex, nil
}

func (s *InMemoryStore) Append(ctx context.Context, entries []cacheEntry, lastFetchedIndex uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	if lastFetchedIndex > s.lastFetchedIndex {
		s.lastFetchedIndex = lastFetchedIndex
	}
	return nil
}

func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.lastFetchedIndex = 0
	return nil
}

// PostgresStore persists the scanner cache in Postgres, grounded on the
// teacher's PostgresStore connection and table conventions (internal
// storage.PostgresStore), repurposed here for ciphertext-range caching
// instead of block/transaction storage.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an already-connected pool and ensures the two
// cache tables exist.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	const schema = `
		CREATE TABLE IF NOT EXISTS scanner_cache (
			leaf_index BIGINT PRIMARY KEY,
			ciphertext TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS scanner_cache_meta (
			id SMALLINT PRIMARY KEY DEFAULT 1,
			last_fetched_index BIGINT NOT NULL,
			CHECK (id = 1)
		);
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("scanner: ensure cache schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]cacheEntry, uint32, error) {
	rows, err := s.pool.Query(ctx, `SELECT leaf_index, ciphertext FROM scanner_cache ORDER BY leaf_index`)
	if err != nil {
		return nil, 0, fmt.Errorf("scanner: load cache entries: %w", err)
	}
	defer rows.Close()

	var entries []cacheEntry
	for rows.Next() {
		var idx int64
		var ct string
		if err := rows.Scan(&idx, &ct); err != nil {
			return nil, 0, fmt.Errorf("scanner: scan cache entry: %w", err)
		}
		entries = append(entries, cacheEntry{Index: uint32(idx), Ciphertext: ct})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var lastFetched int64
	err = s.pool.QueryRow(ctx, `SELECT last_fetched_index FROM scanner_cache_meta WHERE id = 1`).Scan(&lastFetched)
	if err != nil {
		// No meta row yet: cache is empty.
		return entries, 0, nil
	}

	return entries, uint32(lastFetched), nil
}

func (s *PostgresStore) Append(ctx context.Context, entries []cacheEntry, lastFetchedIndex uint32) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("scanner: begin cache append: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO scanner_cache (leaf_index, ciphertext) VALUES ($1, $2) ON CONFLICT (leaf_index) DO NOTHING`,
			e.Index, e.Ciphertext)
		if err != nil {
			return fmt.Errorf("scanner: insert cache entry: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO scanner_cache_meta (id, last_fetched_index) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET last_fetched_index = GREATEST(scanner_cache_meta.last_fetched_index, $1)
	`, lastFetchedIndex)
	if err != nil {
		return fmt.Errorf("scanner: update cache meta: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE scanner_cache; DELETE FROM scanner_cache_meta;`)
	if err != nil {
		return fmt.Errorf("scanner: clear cache: %w", err)
	}
	return nil
}
