package service

import (
	"context"
	"sync"
	"time"

	"github.com/liliang-cn/chatspark/internal/domain"
	"github.com/liliang-cn/chatspark/internal/repository"
	"go.uber.org/zap"
)

// MetricsService keeps the aggregate counters polled by the widget and sinks
// fire-and-forget telemetry events. Track never returns an error; failures
// are logged and dropped.
type MetricsService struct {
	events *repository.EventRepository
	logger *zap.Logger

	mu            sync.Mutex
	started       time.Time
	totalRequests int64
	totalTokens   int64
	errorCount    int64
	totalLatency  time.Duration
}

// NewMetricsService creates a new metrics service
func NewMetricsService(events *repository.EventRepository, logger *zap.Logger) *MetricsService {
	return &MetricsService{
		events:  events,
		logger:  logger,
		started: time.Now(),
	}
}

// RecordRequest counts one completion turn and its latency.
func (s *MetricsService) RecordRequest(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRequests++
	s.totalLatency += latency
}

// AddTokens accumulates reported token usage.
func (s *MetricsService) AddTokens(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalTokens += int64(n)
}

// RecordError counts one failed completion request.
func (s *MetricsService) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCount++
}

// Track appends a telemetry event, fire-and-forget.
func (s *MetricsService) Track(ctx context.Context, name string, data map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.Insert(&domain.TrackedEvent{Name: name, Data: data}); err != nil {
		s.logger.Debug("Failed to track event", zap.String("event", name), zap.Error(err))
	}
}

// Overview returns the current aggregate counters.
func (s *MetricsService) Overview() domain.MetricsOverview {
	s.mu.Lock()
	defer s.mu.Unlock()

	overview := domain.MetricsOverview{
		TotalRequests: s.totalRequests,
		TotalTokens:   s.totalTokens,
		ErrorCount:    s.errorCount,
		UptimeSeconds: time.Since(s.started).Seconds(),
	}
	if s.totalRequests > 0 {
		overview.AverageLatency = float64(s.totalLatency.Milliseconds()) / float64(s.totalRequests)
	}
	if s.events != nil {
		if n, err := s.events.Count(); err == nil {
			overview.TrackedEvents = n
		}
	}
	return overview
}

// StartReporter logs the overview at a fixed interval until ctx is done.
func (s *MetricsService) StartReporter(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o := s.Overview()
				s.logger.Debug("Metrics overview",
					zap.Int64("total_requests", o.TotalRequests),
					zap.Int64("total_tokens", o.TotalTokens),
					zap.Int64("error_count", o.ErrorCount),
					zap.Float64("avg_latency_ms", o.AverageLatency),
				)
			}
		}
	}()
}
