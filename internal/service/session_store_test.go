package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/liliang-cn/chatspark/internal/domain"
	"github.com/liliang-cn/chatspark/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepo(t *testing.T) *repository.StateRepository {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewStateRepository(db)
}

func userMessage(text string) domain.Message {
	return domain.Message{
		ID:        uuid.New().String(),
		Text:      text,
		Sender:    domain.SenderUser,
		Timestamp: time.Now(),
	}
}

func TestPlaceholderSessionNeverPersisted(t *testing.T) {
	repo := newTestRepo(t)
	store := NewSessionStore(repo, zap.NewNop())

	store.SaveActive()
	assert.Empty(t, store.Recent())

	store.StartNew()
	assert.Empty(t, store.Recent())

	persisted, err := repo.LoadSessions()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestSaveUpsertsAndMovesToFront(t *testing.T) {
	store := NewSessionStore(newTestRepo(t), zap.NewNop())

	store.AppendMessage(userMessage("first question"))
	id := store.ActiveID()

	store.AppendMessage(userMessage("second question"))

	recent := store.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, id, recent[0].ID)
	assert.Equal(t, "first question", recent[0].Title)
}

func TestRetentionLimitEvictsOldest(t *testing.T) {
	store := NewSessionStore(newTestRepo(t), zap.NewNop())

	for i := 0; i < 11; i++ {
		store.AppendMessage(userMessage(fmt.Sprintf("question number %d", i)))
		store.StartNew()
	}

	recent := store.Recent()
	require.Len(t, recent, 10)
	assert.Equal(t, "question number 10", recent[0].Title)
	for _, sess := range recent {
		assert.NotEqual(t, "question number 0", sess.Title)
	}
}

func TestStartNewResetsActiveSession(t *testing.T) {
	store := NewSessionStore(newTestRepo(t), zap.NewNop())

	store.AppendMessage(userMessage("solve this equation"))
	oldID := store.ActiveID()

	store.StartNew()

	active := store.Active()
	assert.NotEqual(t, oldID, active.ID)
	require.Len(t, active.Messages, 1)
	assert.Equal(t, domain.SenderAssistant, active.Messages[0].Sender)

	snap := store.Snapshot()
	assert.Zero(t, snap.TotalMessages)
	assert.Zero(t, snap.UserMessages)
	assert.Zero(t, snap.AssistantMessages)
	assert.Empty(t, snap.PopularTopics)
}

func TestDeleteActiveSessionStartsFresh(t *testing.T) {
	store := NewSessionStore(newTestRepo(t), zap.NewNop())

	store.AppendMessage(userMessage("remember me"))
	id := store.ActiveID()
	require.Len(t, store.Recent(), 1)

	store.Delete(id)

	assert.NotEqual(t, id, store.ActiveID())
	assert.Empty(t, store.Recent(), "deleted session must not be re-saved")
	require.Len(t, store.Active().Messages, 1)
}

func TestDeleteInactiveSessionKeepsActive(t *testing.T) {
	store := NewSessionStore(newTestRepo(t), zap.NewNop())

	store.AppendMessage(userMessage("old chat"))
	oldID := store.ActiveID()
	store.StartNew()
	store.AppendMessage(userMessage("current chat"))
	activeID := store.ActiveID()

	store.Delete(oldID)

	assert.Equal(t, activeID, store.ActiveID())
	recent := store.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, activeID, recent[0].ID)
}

func TestLoadUnknownIDLeavesStateUnchanged(t *testing.T) {
	store := NewSessionStore(newTestRepo(t), zap.NewNop())

	store.AppendMessage(userMessage("hello"))
	before := store.Active()

	err := store.Load("no-such-session")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, before.ID, store.ActiveID())
	assert.Len(t, store.Active().Messages, len(before.Messages))
}

func TestLoadRecomputesAnalytics(t *testing.T) {
	store := NewSessionStore(newTestRepo(t), zap.NewNop())

	store.AppendMessage(userMessage("help me debug this code"))
	id := store.ActiveID()
	created := store.Active().CreatedAt

	store.StartNew()
	assert.Zero(t, store.Snapshot().TotalMessages)

	require.NoError(t, store.Load(id))

	assert.Equal(t, id, store.ActiveID())
	snap := store.Snapshot()
	assert.Equal(t, 2, snap.TotalMessages) // welcome + user message
	assert.Equal(t, 1, snap.UserMessages)
	assert.Equal(t, 1, snap.PopularTopics["debug"])
	assert.Equal(t, 1, snap.PopularTopics["code"])
	assert.Equal(t, created.Unix(), snap.SessionStart.Unix())
}

func TestTitleDerivation(t *testing.T) {
	store := NewSessionStore(newTestRepo(t), zap.NewNop())

	short := "Help me write a Python function to sort a list"
	store.AppendMessage(userMessage(short))
	recent := store.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, short, recent[0].Title)

	store.StartNew()
	long := strings.Repeat("a", 60)
	store.AppendMessage(userMessage(long))
	recent = store.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, strings.Repeat("a", 50)+"...", recent[0].Title)
}

func TestHydrateAcrossRestart(t *testing.T) {
	repo := newTestRepo(t)

	store := NewSessionStore(repo, zap.NewNop())
	store.AppendMessage(userMessage("persist me"))
	id := store.ActiveID()

	reopened := NewSessionStore(repo, zap.NewNop())
	recent := reopened.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, id, recent[0].ID)
	assert.Equal(t, "persist me", recent[0].Title)
}

func TestHydrateMalformedStateDegradesToEmpty(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Set("chatAI_recentChats", "{definitely not json"))

	store := NewSessionStore(repo, zap.NewNop())
	assert.Empty(t, store.Recent())
}

func TestSubscriberNotifiedOnChange(t *testing.T) {
	store := NewSessionStore(newTestRepo(t), zap.NewNop())

	var got []domain.Session
	store.Subscribe(func(sessions []domain.Session) { got = sessions })

	store.AppendMessage(userMessage("notify me"))
	require.Len(t, got, 1)
	assert.Equal(t, "notify me", got[0].Title)
}
