package googleEmbedding

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"docvault/internal/config"
	"docvault/internal/rag/embedding"
	"docvault/pkg/logger_i"
)

var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi  *genai.Client
	model  string
	logger *logger_i.Logger
}

// NewClient builds the embedding capability on Google's embedding models. The
// output dimensionality is pinned so every stored vector has the exact
// dimension the collection schema was created with.
func NewClient(ctx context.Context, modelName string, apikey string) (embedding.Embedder, error) {
	logger := logger_i.NewLogger("google_embedding")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}

	logger.Info("Google Embedding client created", "model", modelName)
	return &client{genAi: c, model: modelName, logger: logger}, nil
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(query),
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_QUERY"})
	if err != nil {
		c.logger.Error("query embedding failed", "error", err)
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding response for query was empty")
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	res, err := c.doCall(ctx, getContent(chunks))
	if err != nil && isRateLimited(err) {
		c.logger.Warn("rate limit hit, retrying in 5 seconds", "error", err)
		time.Sleep(5 * time.Second)
		res, err = c.doCall(ctx, getContent(chunks))
	}
	if err != nil {
		c.logger.Error("batch embedding failed", "error", err)
		return nil, err
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		vectors = append(vectors, r.Values)
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content,
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}

func getContent(chunks []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contents
}
