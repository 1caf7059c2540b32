package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/berrylands/noflo/ip"
)

// SQLiteStore is a single-file IPStore backed by modernc.org/sqlite
// (pure Go, no cgo). Suitable for example networks and local
// development; archived data survives process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at path
// and ensures its schema exists. Use ":memory:" for a throwaway store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS archived_ips (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			process_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			data TEXT NOT NULL,
			metadata TEXT NOT NULL,
			archived_at TIMESTAMP NOT NULL
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archived_ips: %w", err)
	}
	if _, err := db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_archived_ips_process ON archived_ips(process_id)"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveIP(ctx context.Context, processID string, packet ip.IP) error {
	data, err := json.Marshal(packet.Data())
	if err != nil {
		return fmt.Errorf("marshal ip data: %w", err)
	}
	metadata, err := json.Marshal(packet.Metadata())
	if err != nil {
		return fmt.Errorf("marshal ip metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO archived_ips (process_id, kind, data, metadata, archived_at) VALUES (?, ?, ?, ?, ?)`,
		processID, string(packet.Kind()), string(data), string(metadata), time.Now(),
	)
	return err
}

func (s *SQLiteStore) LoadRecent(ctx context.Context, processID string, limit int) ([]Record, error) {
	query := `SELECT kind, data, metadata, archived_at FROM archived_ips WHERE process_id = ? ORDER BY id DESC`
	args := []interface{}{processID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query archived_ips: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var kind, data, metadata string
		var archivedAt time.Time
		if err := rows.Scan(&kind, &data, &metadata, &archivedAt); err != nil {
			return nil, fmt.Errorf("scan archived_ips row: %w", err)
		}

		var decodedData interface{}
		_ = json.Unmarshal([]byte(data), &decodedData)
		var decodedMeta map[string]interface{}
		_ = json.Unmarshal([]byte(metadata), &decodedMeta)

		out = append(out, Record{
			ProcessID:  processID,
			Kind:       ip.Kind(kind),
			Data:       decodedData,
			Metadata:   decodedMeta,
			ArchivedAt: archivedAt,
		})
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
