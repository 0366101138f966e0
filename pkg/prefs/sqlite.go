package prefs

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const nameKey = "name"

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %v", err)
	}

	return &SQLiteStore{
		db: db,
	}, nil
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *SQLiteStore) GetName(ctx context.Context) (string, error) {
	q := `
	SELECT value FROM prefs WHERE key = ?;
	`
	var name string
	if err := s.db.QueryRowContext(ctx, q, nameKey).Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to read name: %v", err)
	}
	return name, nil
}

func (s *SQLiteStore) SetName(ctx context.Context, name string) error {
	q := `
	INSERT OR REPLACE INTO prefs (key, value)
	VALUES (?, ?);
	`
	if _, err := s.db.ExecContext(ctx, q, nameKey, name); err != nil {
		return fmt.Errorf("failed to save name: %v", err)
	}
	return nil
}
