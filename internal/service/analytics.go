package service

import (
	"time"

	"github.com/liliang-cn/chatspark/internal/domain"
)

// Aggregator maintains the running analytics snapshot for the active
// session. It is not safe for concurrent use; the session store serializes
// access to it.
type Aggregator struct {
	snap domain.Snapshot
}

// NewAggregator creates an aggregator with a zeroed snapshot starting at start.
func NewAggregator(start time.Time) *Aggregator {
	a := &Aggregator{}
	a.Reset(start)
	return a
}

// Reset zeroes all counters and sets the session start.
func (a *Aggregator) Reset(start time.Time) {
	a.snap = domain.Snapshot{
		PopularTopics: make(map[string]int),
		SessionStart:  start,
	}
}

// Record folds one message into the snapshot. Topic counters only move for
// user messages.
func (a *Aggregator) Record(text string, sender domain.Sender) {
	a.snap.TotalMessages++
	if sender == domain.SenderUser {
		a.snap.UserMessages++
		for topic, n := range ExtractTopics(text) {
			a.snap.PopularTopics[topic] += n
		}
	} else {
		a.snap.AssistantMessages++
	}
}

// Recompute rebuilds the snapshot from scratch by replaying Record over the
// message list in order. The result is identical to the incrementally built
// snapshot for the same list.
func (a *Aggregator) Recompute(messages []domain.Message, start time.Time) {
	a.Reset(start)
	for _, m := range messages {
		a.Record(m.Text, m.Sender)
	}
}

// Snapshot returns a copy of the current snapshot.
func (a *Aggregator) Snapshot() domain.Snapshot {
	out := a.snap
	out.PopularTopics = make(map[string]int, len(a.snap.PopularTopics))
	for k, v := range a.snap.PopularTopics {
		out.PopularTopics[k] = v
	}
	return out
}
