package llm

import "context"

// Provider is the generation capability. The assembled context is the only
// material the model may answer from; the system prompt instructs it to state
// uncertainty when the context does not contain the answer.
type Provider interface {
	Generate(ctx context.Context, question string, contextText string) (string, error)
}
