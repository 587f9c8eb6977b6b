package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liliang-cn/chatspark/internal/domain"
	"github.com/liliang-cn/chatspark/internal/speech"
	"go.uber.org/zap"
)

// maxRetries caps the manual retry affordance shown by the widget.
const maxRetries = 3

// ChatSettings are the conversation defaults, overridable per request.
type ChatSettings struct {
	Personality domain.Tone
	Defensive   bool
	ModelID     string
}

// ChatService orchestrates one conversation turn: append the user message,
// call the completion service (optionally twice, with a self-critique pass),
// and merge the assistant reply back into the active session.
type ChatService struct {
	store    *SessionStore
	llm      domain.CompletionClient
	metrics  *MetricsService
	synth    speech.Synthesizer
	caps     speech.Capabilities
	settings ChatSettings
	logger   *zap.Logger

	mu         sync.Mutex
	retryCount int
}

// NewChatService creates a new chat service
func NewChatService(
	store *SessionStore,
	llm domain.CompletionClient,
	metrics *MetricsService,
	synth speech.Synthesizer,
	caps speech.Capabilities,
	settings ChatSettings,
	logger *zap.Logger,
) *ChatService {
	if settings.Personality == "" {
		settings.Personality = domain.ToneFriendly
	}
	return &ChatService{
		store:    store,
		llm:      llm,
		metrics:  metrics,
		synth:    synth,
		caps:     caps,
		settings: settings,
		logger:   logger,
	}
}

// Settings returns the configured conversation defaults.
func (s *ChatService) Settings() ChatSettings {
	return s.settings
}

// MaxRetries returns the retry cap advertised to the widget.
func (s *ChatService) MaxRetries() int {
	return maxRetries
}

// Send runs a full conversation turn and returns the assistant reply with
// its metadata and the updated analytics snapshot. Completion failures never
// surface as errors; they degrade to the fixed fallback answer.
func (s *ChatService) Send(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, domain.ErrInvalidRequest
	}

	personality := s.settings.Personality
	if req.Personality != "" {
		personality = req.Personality
	}
	defensive := s.settings.Defensive
	if req.Defensive != nil {
		defensive = *req.Defensive
	}
	model := s.settings.ModelID
	if req.ModelID != "" {
		model = req.ModelID
	}

	userMsg := domain.Message{
		ID:        uuid.New().String(),
		Text:      text,
		Sender:    domain.SenderUser,
		Timestamp: time.Now(),
	}
	s.store.AppendMessage(userMsg)

	started := time.Now()
	reply, meta, failed := s.generate(ctx, text, personality, defensive, model)
	s.metrics.RecordRequest(time.Since(started))

	s.mu.Lock()
	if failed {
		if s.retryCount < maxRetries {
			s.retryCount++
		}
	} else {
		s.retryCount = 0
	}
	retries := s.retryCount
	s.mu.Unlock()

	assistantMsg := domain.Message{
		ID:        uuid.New().String(),
		Text:      reply,
		Sender:    domain.SenderAssistant,
		Timestamp: time.Now(),
		Meta:      &meta,
	}
	s.store.AppendMessage(assistantMsg)

	if s.caps.Output && s.synth != nil && !s.synth.Speaking() {
		if err := s.synth.Speak(ctx, reply); err != nil {
			s.logger.Debug("Speech output failed", zap.Error(err))
		}
	}

	return &domain.ChatResponse{
		SessionID:  s.store.ActiveID(),
		Reply:      reply,
		Meta:       meta,
		Snapshot:   s.store.Snapshot(),
		RetryCount: retries,
	}, nil
}

// generate performs the primary completion and the optional critique pass.
// The returned flag reports a transport failure that warrants the retry
// affordance; a merely malformed reply falls back silently.
func (s *ChatService) generate(ctx context.Context, text string, personality domain.Tone, defensive bool, model string) (string, domain.MessageMeta, bool) {
	wantDefense := defensive || DetectChallenge(text)
	taskType := DetectTaskType(text)
	sys := BuildSystemPrompt(personality)
	prompt := BuildUserPrompt(text, wantDefense, taskType)
	convID := s.store.ActiveID()

	fallbackMeta := domain.MessageMeta{
		Tone:              personality,
		HallucinationRisk: domain.LevelLow,
		DefenseQuality:    domain.LevelLow,
		TaskType:          taskType,
	}

	res, err := s.llm.Complete(ctx, sys, prompt, convID, model)
	if err != nil {
		s.logger.Warn("Completion request failed", zap.Error(err))
		s.metrics.RecordError()
		s.metrics.Track(ctx, "error_occurred", map[string]any{"error": err.Error()})
		return fallbackAnswer, fallbackMeta, true
	}
	s.metrics.AddTokens(res.TotalTokens)
	s.metrics.Track(ctx, "tokens_used", map[string]any{"tokens": res.TotalTokens})

	draft := parseReply(res.Reply, assistantReply{
		HallucinationRisk: domain.LevelMedium,
		DefenseQuality:    domain.LevelMedium,
		Tone:              personality,
		TaskType:          taskType,
	})

	// A reply without an answer is as good as no reply: fall back and skip
	// the critique pass.
	if draft.Answer == "" {
		return fallbackAnswer, fallbackMeta, false
	}

	if wantDefense || taskType == "coding" || taskType == "analysis" {
		res2, err := s.llm.Complete(ctx, sys, BuildCritiquePrompt(draft), convID, model)
		if err != nil {
			s.logger.Debug("Critique pass failed, keeping first draft", zap.Error(err))
		} else {
			s.metrics.AddTokens(res2.TotalTokens)
			draft = parseReply(res2.Reply, draft)
		}
	}

	final := draft.Answer
	if draft.Defense != "" {
		final += "\n\n🛡️ Methodology:\n" + draft.Defense
	}

	meta := domain.MessageMeta{
		Tone:              draft.Tone,
		HallucinationRisk: draft.HallucinationRisk,
		DefenseQuality:    draft.DefenseQuality,
		TaskType:          draft.TaskType,
	}
	if meta.Tone == "" {
		meta.Tone = personality
	}
	if meta.TaskType == "" {
		meta.TaskType = taskType
	}
	return final, meta, false
}

// StartNew starts a fresh session and clears the retry state.
func (s *ChatService) StartNew() {
	s.store.StartNew()
	s.resetRetries()
}

// Load switches to a stored session and clears the retry state. Unknown ids
// return domain.ErrNotFound.
func (s *ChatService) Load(id string) error {
	if err := s.store.Load(id); err != nil {
		return err
	}
	s.resetRetries()
	return nil
}

// Delete removes a stored session. Deleting the active session starts a
// fresh one and clears the retry state.
func (s *ChatService) Delete(id string) {
	wasActive := s.store.ActiveID() == id
	s.store.Delete(id)
	if wasActive {
		s.resetRetries()
	}
}

func (s *ChatService) resetRetries() {
	s.mu.Lock()
	s.retryCount = 0
	s.mu.Unlock()
}
