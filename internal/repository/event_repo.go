package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/liliang-cn/chatspark/internal/domain"
)

// EventRepository stores fire-and-forget telemetry events.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert appends one tracked event.
func (r *EventRepository) Insert(event *domain.TrackedEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	dataJSON, _ := json.Marshal(event.Data)

	_, err := r.db.Exec(`
		INSERT INTO events (id, name, data, created_at)
		VALUES (?, ?, ?, ?)
	`, event.ID, event.Name, string(dataJSON), event.CreatedAt)

	return err
}

// Count returns the total number of tracked events.
func (r *EventRepository) Count() (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count)
	return count, err
}
