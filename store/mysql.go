package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/berrylands/noflo/ip"
)

// MySQLStore is a MySQL-backed IPStore, for Archiver deployments that
// share archived IPs across processes or need durability beyond a
// single machine. dsn follows go-sql-driver/mysql's DSN format, e.g.
// "user:pass@tcp(127.0.0.1:3306)/dbname?parseTime=true".
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens a connection pool and ensures the schema exists.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS archived_ips (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			process_id VARCHAR(255) NOT NULL,
			kind VARCHAR(32) NOT NULL,
			data JSON NOT NULL,
			metadata JSON NOT NULL,
			archived_at TIMESTAMP NOT NULL,
			INDEX idx_archived_ips_process (process_id)
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archived_ips: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) SaveIP(ctx context.Context, processID string, packet ip.IP) error {
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

func (s *MySQLStore) LoadRecent(ctx context.Context, processID string, limit int) ([]Record, error) {
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

func (s *MySQLStore) Close() error { return s.db.Close() }
