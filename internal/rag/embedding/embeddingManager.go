package embedding

import "context"

// Embedder is the embedding capability: a pure single-string variant used at
// query time and a batch variant that returns one vector per input, in order.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
