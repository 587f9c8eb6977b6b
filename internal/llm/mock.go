package llm

import (
	"context"
	"sync"

	"github.com/liliang-cn/chatspark/internal/domain"
)

// Call records the prompts of one completion request made against the mock.
type Call struct {
	SystemPrompt   string
	UserPrompt     string
	ConversationID string
	ModelID        string
}

// Mock is a scripted completion client for tests. Replies are consumed in
// order; once exhausted it returns empty replies.
type Mock struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []Call
}

// NewMock creates a mock that returns the given replies in order.
func NewMock(replies ...string) *Mock {
	return &Mock{replies: replies}
}

// Fail makes every subsequent call return err.
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the recorded requests.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *Mock) Complete(ctx context.Context, systemPrompt, userPrompt, conversationID, modelID string) (domain.CompletionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{
		SystemPrompt:   systemPrompt,
		UserPrompt:     userPrompt,
		ConversationID: conversationID,
		ModelID:        modelID,
	})

	if m.err != nil {
		return domain.CompletionResult{}, m.err
	}

	var reply string
	if len(m.replies) > 0 {
		reply = m.replies[0]
		m.replies = m.replies[1:]
	}
	return domain.CompletionResult{Reply: reply, TotalTokens: 42}, nil
}
