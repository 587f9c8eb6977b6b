// Package speech models the optional voice input/output capabilities. The
// probe result is computed once at startup and injected; callers check it
// instead of feature-sniffing at call sites.
package speech

import (
	"context"

	"github.com/liliang-cn/chatspark/internal/domain"
)

// Capabilities is the startup probe result.
type Capabilities struct {
	Input  bool `json:"input"`
	Output bool `json:"output"`
}

// Transcriber turns spoken audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer vocalizes text. Speaking reports whether output is already in
// progress so overlapping utterances can be skipped.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Speaking() bool
}

// Probe resolves the deployment's speech capabilities from configuration.
func Probe(inputEnabled, outputEnabled bool) Capabilities {
	return Capabilities{Input: inputEnabled, Output: outputEnabled}
}

// NoopSynthesizer silently discards speech output.
type NoopSynthesizer struct{}

func (NoopSynthesizer) Speak(ctx context.Context, text string) error { return nil }
func (NoopSynthesizer) Speaking() bool                               { return false }

// NoopTranscriber rejects transcription requests.
type NoopTranscriber struct{}

func (NoopTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return "", domain.ErrUnsupported
}
