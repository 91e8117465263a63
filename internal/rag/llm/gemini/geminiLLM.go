package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"docvault/internal/config"
	"docvault/internal/rag/llm"
	"docvault/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewClient(ctx context.Context, modelName string, apikey string) (llm.Provider, error) {
	logger := logger_i.NewLogger("llm_gemini")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, question string, contextText string) (string, error) {
	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: config.SystemPrompt}},
		},
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(userPrompt), contentConfig)
	if err != nil && isTransient(err) {
		// one retry at the provider layer, never orchestrated above
		c.logger.Warn("generation rate limited, retrying once", "error", err)
		time.Sleep(2 * time.Second)
		result, err = c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(userPrompt), contentConfig)
	}
	if err != nil {
		c.logger.Error("generation failed", "error", err)
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return result.Text(), nil
}

func isTransient(err error) bool {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable:
			return true
		}
	}
	return false
}
