package importers

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a staging token is unknown or expired.
var ErrSessionNotFound = errors.New("import session not found")

// DefaultStagingLifetime is how long a staged file waits for confirmation.
const DefaultStagingLifetime = time.Hour

// StagedImport is the parsed content of an import file awaiting execution.
type StagedImport struct {
	Source    string
	Encoding  string
	Delimiter Delimiter
	Headers   []string
	Rows      [][]string
	StagedAt  time.Time
}

// Staging keeps staged imports in an scs store under opaque tokens.
type Staging struct {
	store    scs.Store
	lifetime time.Duration
}

// NewStaging creates a staging area. A non-positive lifetime selects
// DefaultStagingLifetime.
func NewStaging(store scs.Store, lifetime time.Duration) *Staging {
	if lifetime <= 0 {
		lifetime = DefaultStagingLifetime
	}
	return &Staging{store: store, lifetime: lifetime}
}

// NewSQLiteStore creates the sessions table if needed and returns a store
// backed by it. The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSQLiteStore(sqlDB *sql.DB) (scs.Store, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return sqlite3store.New(sqlDB), nil
}

// Save stores staged and returns its new token.
func (s *Staging) Save(staged *StagedImport) (string, error) {
	if staged.StagedAt.IsZero() {
		staged.StagedAt = time.Now()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(staged); err != nil {
		return "", fmt.Errorf("encode staged import: %w", err)
	}

	token := uuid.New().String()
	if err := s.store.Commit(token, buf.Bytes(), time.Now().Add(s.lifetime)); err != nil {
		return "", fmt.Errorf("store staged import: %w", err)
	}
	return token, nil
}

// Load returns the staged import saved under token.
func (s *Staging) Load(token string) (*StagedImport, error) {
	data, found, err := s.store.Find(token)
	if err != nil {
		return nil, fmt.Errorf("load staged import: %w", err)
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	var staged StagedImport
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&staged); err != nil {
		return nil, fmt.Errorf("decode staged import: %w", err)
	}
	return &staged, nil
}

// Delete discards the staged import saved under token.
func (s *Staging) Delete(token string) error {
	return s.store.Delete(token)
}
