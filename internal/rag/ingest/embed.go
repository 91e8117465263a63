package ingest

import (
	"context"
	"fmt"

	"docvault/internal/config"
	"docvault/internal/rag/embedding"
)

// ComputeEmbeddings converts chunk texts into an equal-length, equally ordered
// sequence of vectors, calling the embedder in fixed-size batches. A count
// mismatch means the embedding capability broke its contract and is fatal.
// Empty input returns empty output without invoking the embedder at all.
func ComputeEmbeddings(ctx context.Context, texts []string, embedder embedding.Embedder, report func(fraction float64)) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batchSize := config.EmbeddingBatchSize
	vectors := make([][]float32, 0, len(texts))

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := embedder.BatchEmbedding(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch failed: %w", err)
		}
		vectors = append(vectors, batch...)

		if report != nil {
			report(float64(len(vectors)) / float64(len(texts)))
		}
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count %d does not match chunk count %d", len(vectors), len(texts))
	}
	return vectors, nil
}
