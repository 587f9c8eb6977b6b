package domain

import "context"

// CompletionResult is what the completion collaborator returns for one call.
type CompletionResult struct {
	Reply       string
	TotalTokens int
}

// CompletionClient defines how the core talks to the remote completion
// service. The reply is expected to be a strict-JSON structured result but
// callers must tolerate anything.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt, conversationID, modelID string) (CompletionResult, error)
}
