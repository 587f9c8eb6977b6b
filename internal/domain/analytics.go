package domain

import "time"

// Snapshot holds the derived analytics counters for one session. It is a
// pure projection of the session's message list: TotalMessages always
// equals UserMessages + AssistantMessages, and rebuilding it from the
// message list yields the same result as accumulating it incrementally.
type Snapshot struct {
	TotalMessages     int            `json:"total_messages"`
	UserMessages      int            `json:"user_messages"`
	AssistantMessages int            `json:"assistant_messages"`
	PopularTopics     map[string]int `json:"popular_topics"`
	SessionStart      time.Time      `json:"session_start"`
}

// MetricsOverview is the aggregate service counters polled by the widget.
type MetricsOverview struct {
	TotalRequests  int64   `json:"totalRequests"`
	TotalTokens    int64   `json:"totalTokens"`
	AverageLatency float64 `json:"averageResponseTime"` // milliseconds
	ErrorCount     int64   `json:"errorCount"`
	TrackedEvents  int64   `json:"trackedEvents"`
	UptimeSeconds  float64 `json:"uptime"`
}

// TrackedEvent is one fire-and-forget telemetry event.
type TrackedEvent struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
