package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/liliang-cn/chatspark/internal/domain"
)

// Storage keys. Kept byte-compatible with the original widget so an existing
// database keeps its history across upgrades.
const (
	keyRecentSessions = "chatAI_recentChats"
	keySnapshot       = "chatAI_analytics"
)

// StateRepository persists widget state through the key-value table.
type StateRepository struct {
	db *DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get retrieves a raw value. The second return reports presence.
func (r *StateRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts a raw value.
func (r *StateRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	return err
}

// LoadSessions hydrates the persisted session collection. Absent or
// malformed stored data degrades to an empty collection, never an error.
func (r *StateRepository) LoadSessions() ([]domain.Session, error) {
	raw, ok, err := r.Get(keyRecentSessions)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var sessions []domain.Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		return nil, nil
	}
	return sessions, nil
}

// SaveSessions writes the session collection through to storage.
func (r *StateRepository) SaveSessions(sessions []domain.Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return r.Set(keyRecentSessions, string(data))
}

// SaveSnapshot writes the active session's analytics snapshot.
func (r *StateRepository) SaveSnapshot(snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.Set(keySnapshot, string(data))
}
