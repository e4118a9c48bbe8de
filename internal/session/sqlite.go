package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the ban list in a SQLite table, one row per entry.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS banned_ips (
		position INTEGER PRIMARY KEY,
		ip TEXT NOT NULL
	);`
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create banned_ips table: %w", err)
	}
	slog.Debug("sqlite ban list table ready")
	return nil
}

func (s *SQLiteStore) BannedIPs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ip FROM banned_ips ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query banned ips: %w", err)
	}
	defer rows.Close()

	ips := make([]string, 0)
	for rows.Next() {
		var ip string
		if err := rows.Scan(&ip); err != nil {
			return nil, fmt.Errorf("scan banned ip: %w", err)
		}
		ips = append(ips, ip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banned ips: %w", err)
	}
	return ips, nil
}

// SetBannedIPs replaces every row inside one transaction.
func (s *SQLiteStore) SetBannedIPs(ctx context.Context, ips []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM banned_ips`); err != nil {
		return fmt.Errorf("clear banned ips: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO banned_ips(position, ip) VALUES(?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, ip := range ips {
		if _, err := stmt.ExecContext(ctx, i, ip); err != nil {
			return fmt.Errorf("insert %s: %w", ip, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit banned ips: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
