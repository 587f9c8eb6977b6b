package service

import (
	"context"
	"errors"
	"testing"

	"github.com/liliang-cn/chatspark/internal/domain"
	"github.com/liliang-cn/chatspark/internal/llm"
	"github.com/liliang-cn/chatspark/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestChat(t *testing.T, mock *llm.Mock) (*ChatService, *SessionStore) {
	t.Helper()
	logger := zap.NewNop()
	store := NewSessionStore(newTestRepo(t), logger)
	metrics := NewMetricsService(nil, logger)
	svc := NewChatService(store, mock, metrics, speech.NoopSynthesizer{}, speech.Capabilities{}, ChatSettings{
		Personality: domain.ToneFriendly,
		ModelID:     "gpt-4o-mini",
	}, logger)
	return svc, store
}

const plainReply = `{"answer":"Hi, happy to help!","defense":"","hallucination_risk":"low","defense_quality":"medium","tone":"friendly","task_type":"general"}`

func TestSendPlainTurn(t *testing.T) {
	mock := llm.NewMock(plainReply)
	svc, store := newTestChat(t, mock)

	resp, err := svc.Send(context.Background(), &domain.ChatRequest{Message: "hello there"})
	require.NoError(t, err)

	assert.Equal(t, "Hi, happy to help!", resp.Reply)
	assert.Equal(t, domain.LevelLow, resp.Meta.HallucinationRisk)
	assert.Equal(t, "general", resp.Meta.TaskType)
	assert.Zero(t, resp.RetryCount)

	// No challenge, not coding/analysis: exactly one completion call.
	assert.Len(t, mock.Calls(), 1)

	// welcome + user + assistant
	msgs := store.Active().Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, domain.SenderUser, msgs[1].Sender)
	assert.Equal(t, domain.SenderAssistant, msgs[2].Sender)
	require.NotNil(t, msgs[2].Meta)

	// The canned welcome message predates the aggregator and is not counted
	// until the session is reloaded and recomputed.
	snap := resp.Snapshot
	assert.Equal(t, 2, snap.TotalMessages)
	assert.Equal(t, snap.TotalMessages, snap.UserMessages+snap.AssistantMessages)
}

func TestSendEmptyMessageRejected(t *testing.T) {
	svc, _ := newTestChat(t, llm.NewMock())

	_, err := svc.Send(context.Background(), &domain.ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSendCodingTaskRunsCritiquePass(t *testing.T) {
	draft := `{"answer":"draft code","defense":"","hallucination_risk":"medium","defense_quality":"medium","tone":"logical","task_type":"coding"}`
	improved := `{"answer":"final code","defense":"tested against examples","hallucination_risk":"low","defense_quality":"high","tone":"logical","task_type":"coding"}`
	mock := llm.NewMock(draft, improved)
	svc, _ := newTestChat(t, mock)

	resp, err := svc.Send(context.Background(), &domain.ChatRequest{
		Message: "Help me write a Python function to sort a list",
	})
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].UserPrompt, "Task Type Detected: coding")
	assert.Contains(t, calls[1].UserPrompt, "You wrote this response:")

	assert.Contains(t, resp.Reply, "final code")
	assert.Contains(t, resp.Reply, "🛡️ Methodology:\ntested against examples")
	assert.Equal(t, domain.LevelHigh, resp.Meta.DefenseQuality)
	assert.Equal(t, "coding", resp.Meta.TaskType)
}

func TestSendChallengeTriggersCritique(t *testing.T) {
	mock := llm.NewMock(plainReply, plainReply)
	svc, _ := newTestChat(t, mock)

	_, err := svc.Send(context.Background(), &domain.ChatRequest{Message: "prove it to me"})
	require.NoError(t, err)
	assert.Len(t, mock.Calls(), 2)
}

func TestSendMalformedCritiqueKeepsDraft(t *testing.T) {
	draft := `{"answer":"keep me","defense":"","hallucination_risk":"low","defense_quality":"medium","tone":"logical","task_type":"analysis"}`
	mock := llm.NewMock(draft, "this is not the JSON you asked for")
	svc, _ := newTestChat(t, mock)

	resp, err := svc.Send(context.Background(), &domain.ChatRequest{Message: "analyze remote work"})
	require.NoError(t, err)
	assert.Len(t, mock.Calls(), 2)
	assert.Equal(t, "keep me", resp.Reply)
}

func TestSendMalformedReplyFallsBack(t *testing.T) {
	mock := llm.NewMock("oops, plain text")
	svc, _ := newTestChat(t, mock)

	resp, err := svc.Send(context.Background(), &domain.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, fallbackAnswer, resp.Reply)
	assert.Equal(t, domain.LevelLow, resp.Meta.HallucinationRisk)
	assert.Equal(t, domain.LevelLow, resp.Meta.DefenseQuality)
	// Malformed replies skip the critique pass even for critique-worthy turns.
	assert.Len(t, mock.Calls(), 1)
	assert.Zero(t, resp.RetryCount)
}

func TestSendTransportFailureFallsBackAndCountsRetry(t *testing.T) {
	mock := llm.NewMock()
	mock.Fail(errors.New("connection refused"))
	svc, store := newTestChat(t, mock)

	resp, err := svc.Send(context.Background(), &domain.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, fallbackAnswer, resp.Reply)
	assert.Equal(t, 1, resp.RetryCount)

	// The turn still completes: both messages are in the session.
	assert.Len(t, store.Active().Messages, 3)

	resp, err = svc.Send(context.Background(), &domain.ChatRequest{Message: "hello again"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.RetryCount)
}

func TestStartNewResetsRetryCount(t *testing.T) {
	mock := llm.NewMock()
	mock.Fail(errors.New("boom"))
	svc, _ := newTestChat(t, mock)

	resp, err := svc.Send(context.Background(), &domain.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.RetryCount)

	svc.StartNew()

	mock.Fail(nil)
	// mock has no scripted replies left; empty reply means fallback, not a
	// transport failure, so the counter stays reset.
	resp, err = svc.Send(context.Background(), &domain.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Zero(t, resp.RetryCount)
}

func TestSendRequestOverridesDefaults(t *testing.T) {
	mock := llm.NewMock(plainReply)
	svc, _ := newTestChat(t, mock)

	defensive := true
	_, err := svc.Send(context.Background(), &domain.ChatRequest{
		Message:     "hello there",
		Personality: domain.TonePlayful,
		Defensive:   &defensive,
		ModelID:     "gpt-4o",
	})
	require.NoError(t, err)

	calls := mock.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, "gpt-4o", calls[0].ModelID)
	assert.Contains(t, calls[0].SystemPrompt, "Persona: playful")
	// Defensive mode forces the critique pass.
	assert.Len(t, calls, 2)
	assert.Contains(t, calls[0].UserPrompt, "Include detailed defense and methodology.")
}
