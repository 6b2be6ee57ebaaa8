package session

import (
	"database/sql"
	"errors"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	_ "modernc.org/sqlite"
)

// Storage keys, fixed identifiers shared with every past client of this API.
const (
	keyToken = "auth_token"
	keyUser  = "user_data"
)

// Store is the durable session store: a small sqlite key/value table holding
// the bearer token and the principal snapshot, nothing else.
type Store struct {
	sql *sql.DB
}

// DefaultStorePath places the session database next to the user's config.
func DefaultStorePath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".leadhub.sqlite"), nil
}

// OpenStore opens (and if needed creates) the session database.
func OpenStore(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS session_data (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
	`); err != nil {
		return nil, err
	}
	return &Store{sql: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sql == nil {
		return nil
	}
	return s.sql.Close()
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.sql.QueryRow("SELECT value FROM session_data WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.sql.Exec(`INSERT INTO session_data(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	return err
}

// clear removes every persisted session key in one transaction so a partial
// credential can never survive a logout.
func (s *Store) clear() error {
	tx, err := s.sql.Begin()
	if err != nil {
		return err
	}
	for _, key := range []string{keyToken, keyUser} {
		if _, err := tx.Exec("DELETE FROM session_data WHERE key = ?", key); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
