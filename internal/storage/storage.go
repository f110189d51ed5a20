package storage

import (
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"
)

// ErrNotFound wird geliefert, wenn unter einem Schlüssel nichts gespeichert ist
var ErrNotFound = errors.New("kein Eintrag unter diesem Schlüssel")

// Storage definiert das Interface für Datenpersistenz.
// Der Inhalt ist aus Sicht des Stores ein opaker Byte-Blob pro Schlüssel.
type Storage interface {
	GetBlob(key string) ([]byte, error)
	SetBlob(key string, value []byte) error
	DeleteBlob(key string) error

	Close() error
}

// SQLiteStorage implementiert Storage mit SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage erstellt eine neue SQLite-Storage-Instanz
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) GetBlob(key string) ([]byte, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (s *SQLiteStorage) SetBlob(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO blobs (key, value)
		VALUES (?, ?)
	`, key, string(value))
	return err
}

func (s *SQLiteStorage) DeleteBlob(key string) error {
	_, err := s.db.Exec(`DELETE FROM blobs WHERE key = ?`, key)
	return err
}
