package asset

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage keeps payloads as blobs in a single table.
type SQLiteStorage struct {
	db *sql.DB
}

func OpenSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA journal_mode=WAL;")

	s := &SQLiteStorage{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStorage) Close() error { return s.db.Close() }

func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS storage (
  name TEXT PRIMARY KEY,
  data BLOB NOT NULL
);`)
	return err
}

func (s *SQLiteStorage) ReadArrayBuffer(name string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM storage WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset: %s: %w", name, os.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *SQLiteStorage) Write(name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO storage(name, data) VALUES(?, ?)
ON CONFLICT(name) DO UPDATE SET data = excluded.data`, name, data)
	return err
}
