package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteVectorCache implements VectorCache using SQLite.
type SQLiteVectorCache struct {
	db   *sql.DB
	path string
}

// NewSQLiteVectorCache opens or creates the cache database at dbPath.
// Parent directories are created if they do not exist.
func NewSQLiteVectorCache(dbPath string) (*SQLiteVectorCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector cache: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteVectorCache{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS surface_vectors (
		model_id TEXT NOT NULL,
		surface TEXT NOT NULL,
		dimensions INTEGER NOT NULL,
		vector BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (model_id, surface)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Get looks up each text. Rows whose blob length disagrees with the stored dimension
// are treated as misses.
func (c *SQLiteVectorCache) Get(ctx context.Context, modelID string, texts []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	stmt, err := c.db.PrepareContext(ctx,
		`SELECT dimensions, vector FROM surface_vectors WHERE model_id = ? AND surface = ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare lookup: %w", err)
	}
	defer stmt.Close()

	for _, text := range texts {
		var dims int
		var blob []byte
		err := stmt.QueryRowContext(ctx, modelID, text).Scan(&dims, &blob)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %q: %w", text, err)
		}
		if len(blob) != dims*4 {
			continue
		}
		out[text] = bytesToFloat32Slice(blob)
	}
	return out, nil
}

// Put upserts vectors in a single transaction.
func (c *SQLiteVectorCache) Put(ctx context.Context, modelID string, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO surface_vectors (model_id, surface, dimensions, vector, created_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for text, vec := range vectors {
		if _, err := stmt.ExecContext(ctx, modelID, text, len(vec), float32SliceToBytes(vec), now); err != nil {
			return fmt.Errorf("insert %q: %w", text, err)
		}
	}
	return tx.Commit()
}

// Stats counts cached rows and distinct models and sums the database files on disk.
func (c *SQLiteVectorCache) Stats(ctx context.Context) (CacheStats, error) {
	var s CacheStats
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT model_id) FROM surface_vectors`,
	).Scan(&s.Entries, &s.Models)
	if err != nil {
		return CacheStats{}, err
	}
	for _, p := range []string{c.path, c.path + "-wal", c.path + "-shm"} {
		if info, err := os.Stat(p); err == nil {
			s.DiskBytes += info.Size()
		}
	}
	return s, nil
}

// Close closes the database.
func (c *SQLiteVectorCache) Close() error {
	return c.db.Close()
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
