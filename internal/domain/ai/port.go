package ai

import "context"

// Client is the LLM port used by the agent pipeline. CompleteJSON must
// return the raw JSON object text produced under the given prompts.
type Client interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
