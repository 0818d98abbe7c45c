package sitecfg

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Config is the small per-host record that keeps extraction working as a
// source's front-end changes: bundler build IDs, short-lived bearer tokens,
// anti-bot cookies. Fields default to empty; handlers only read what they use.
type Config struct {
	Host      string
	BuildID   string
	Token     string
	Cookie    string
	UpdatedAt time.Time
}

// Store is a keyed persisted map from hostname to Config. Writes are
// single-statement upserts; concurrent updates are last-writer-wins, which is
// acceptable because staleness only costs one extra refresh.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open site config database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping site config database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate site config database: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the stored config for a host, or nil when none exists.
func (s *Store) Get(host string) (*Config, error) {
	row := s.db.QueryRow(`
		SELECT host, build_id, token, cookie, updated_at
		FROM site_configs
		WHERE host = ?`, host)

	var config Config
	err := row.Scan(&config.Host, &config.BuildID, &config.Token, &config.Cookie, &config.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site config for %s: %w", host, err)
	}

	return &config, nil
}

// Put stores or replaces the config for a host.
func (s *Store) Put(host string, config Config) error {
	_, err := s.db.Exec(`
		INSERT INTO site_configs (host, build_id, token, cookie, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (host) DO UPDATE SET
			build_id = excluded.build_id,
			token = excluded.token,
			cookie = excluded.cookie,
			updated_at = excluded.updated_at`,
		host, config.BuildID, config.Token, config.Cookie, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("failed to store site config for %s: %w", host, err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
