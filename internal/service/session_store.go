package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liliang-cn/chatspark/internal/domain"
	"github.com/liliang-cn/chatspark/internal/repository"
	"go.uber.org/zap"
)

// maxRecentSessions bounds the persisted session collection.
const maxRecentSessions = 10

// SessionStore owns the active conversation session and the bounded
// collection of recent sessions. All state changes write through to the
// durable key-value store; persistence failures are logged and swallowed,
// so in-memory state stays the source of truth for the running process.
type SessionStore struct {
	mu     sync.Mutex
	repo   *repository.StateRepository
	logger *zap.Logger

	active domain.Session
	recent []domain.Session
	agg    *Aggregator

	subscribers []func([]domain.Session)
}

// NewSessionStore hydrates the recent collection from storage and starts a
// fresh active session. Malformed stored data degrades to an empty
// collection.
func NewSessionStore(repo *repository.StateRepository, logger *zap.Logger) *SessionStore {
	s := &SessionStore{
		repo:   repo,
		logger: logger,
	}

	if repo != nil {
		sessions, err := repo.LoadSessions()
		if err != nil {
			logger.Warn("Failed to hydrate recent sessions", zap.Error(err))
		}
		s.recent = sessions
	}

	s.active = newWelcomeSession()
	s.agg = NewAggregator(s.active.CreatedAt)
	return s
}

func newWelcomeSession() domain.Session {
	now := time.Now()
	return domain.Session{
		ID:        uuid.New().String(),
		Title:     "New Chat",
		CreatedAt: now,
		Messages: []domain.Message{{
			ID:        uuid.New().String(),
			Text:      welcomeText,
			Sender:    domain.SenderAssistant,
			Timestamp: now,
		}},
	}
}

// Subscribe registers a callback invoked with the recent collection after
// every change. Callbacks run synchronously and must not call back into the
// store.
func (s *SessionStore) Subscribe(fn func([]domain.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// StartNew persists the active session if it has any user messages, then
// replaces it with a fresh welcome session and a zeroed snapshot.
func (s *SessionStore) StartNew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveActiveLocked()
	s.resetActiveLocked()
}

// AppendMessage appends a message to the active session, folds it into the
// analytics snapshot, and saves.
func (s *SessionStore) AppendMessage(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.Messages = append(s.active.Messages, msg)
	s.agg.Record(msg.Text, msg.Sender)
	s.saveActiveLocked()
}

// SaveActive persists the active session. A session with zero user messages
// is never persisted.
func (s *SessionStore) SaveActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveActiveLocked()
}

// Load saves the active session, then switches to the stored session with
// the given id and rebuilds analytics from its message list. Returns
// domain.ErrNotFound, with the active session untouched, when no such
// session exists.
func (s *SessionStore) Load(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.recent {
		if s.recent[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("load session %s: %w", id, domain.ErrNotFound)
	}

	s.saveActiveLocked()

	// saveActiveLocked may have reordered the collection; find it again.
	for i := range s.recent {
		if s.recent[i].ID == id {
			s.active = cloneSession(s.recent[i])
			break
		}
	}
	s.agg.Recompute(s.active.Messages, s.active.CreatedAt)
	return nil
}

// Delete removes the session with the given id from the collection. Deleting
// the active session immediately activates a fresh one; the deleted session
// is not re-saved.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.recent[:0]
	for _, sess := range s.recent {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	s.recent = kept
	s.persistLocked()
	s.notifyLocked()

	if s.active.ID == id {
		s.resetActiveLocked()
	}
}

// Recent returns a copy of the recent session collection, most recently
// saved first.
func (s *SessionStore) Recent() []domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyRecentLocked()
}

// Active returns a copy of the active session.
func (s *SessionStore) Active() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSession(s.active)
}

// ActiveID returns the active session identifier.
func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.ID
}

// Snapshot returns the analytics snapshot for the active session.
func (s *SessionStore) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Snapshot()
}

// Transcript renders the active session as plain text.
func (s *SessionStore) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for _, m := range s.active.Messages {
		who := "You"
		if m.Sender == domain.SenderAssistant {
			who = "AI Assistant"
		}
		fmt.Fprintf(&b, "[%s] %s:\n%s\n\n", m.Timestamp.Format("2006-01-02 15:04:05"), who, m.Text)
	}
	return b.String()
}

func (s *SessionStore) resetActiveLocked() {
	s.active = newWelcomeSession()
	s.agg.Reset(s.active.CreatedAt)
	s.persistSnapshotLocked()
}

// saveActiveLocked upserts the active session into the collection: an
// existing entry is replaced and moved to the front, a new one is inserted
// at the front and the collection trimmed to the retention limit.
func (s *SessionStore) saveActiveLocked() {
	if !s.active.HasUserMessages() {
		return
	}

	s.active.Title = s.active.DeriveTitle()
	s.active.LastModified = time.Now()
	entry := cloneSession(s.active)

	kept := make([]domain.Session, 0, len(s.recent)+1)
	kept = append(kept, entry)
	for _, sess := range s.recent {
		if sess.ID != entry.ID {
			kept = append(kept, sess)
		}
	}
	if len(kept) > maxRecentSessions {
		kept = kept[:maxRecentSessions]
	}
	s.recent = kept

	s.persistLocked()
	s.persistSnapshotLocked()
	s.notifyLocked()
}

func (s *SessionStore) persistLocked() {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveSessions(s.recent); err != nil {
		s.logger.Warn("Failed to persist sessions", zap.Error(err))
	}
}

func (s *SessionStore) persistSnapshotLocked() {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveSnapshot(s.agg.Snapshot()); err != nil {
		s.logger.Warn("Failed to persist analytics snapshot", zap.Error(err))
	}
}

func (s *SessionStore) notifyLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	recent := s.copyRecentLocked()
	for _, fn := range s.subscribers {
		fn(recent)
	}
}

func (s *SessionStore) copyRecentLocked() []domain.Session {
	out := make([]domain.Session, len(s.recent))
	for i, sess := range s.recent {
		out[i] = cloneSession(sess)
	}
	return out
}

func cloneSession(sess domain.Session) domain.Session {
	out := sess
	out.Messages = make([]domain.Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return out
}
