package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docvault/internal/config"
	"docvault/internal/domain/commonModels"
	"docvault/internal/metrics"
)

func (s *service) executeEmbeddingStep(ctx context.Context, question string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, question)
}

func (s *service) executeVectorSearchStep(ctx context.Context, vector []float32, ownerID string) ([]commonModels.ChunkRecord, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.vectorDB.Search(ctx, vector, ownerID, config.QueryTopK)
}

func (s *service) executeLLMStep(ctx context.Context, question string, records []commonModels.ChunkRecord) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, question, assembleContext(records))
}

// assembleContext builds the bounded prompt context. Each chunk contributes
// its filename, source path and a snippet truncated at SnippetMaxChars runes
// (rune-indexed so the cut never lands inside a multi-byte rune), which caps
// prompt size no matter how large retrieved chunks are.
func assembleContext(records []commonModels.ChunkRecord) string {
	parts := make([]string, 0, len(records))
	for _, rec := range records {
		snippet := rec.Content
		if runes := []rune(snippet); len(runes) > config.SnippetMaxChars {
			snippet = string(runes[:config.SnippetMaxChars])
		}
		parts = append(parts, fmt.Sprintf("Document: %s\nSource Path: %s\nContent Snippet:\n%s", rec.Filename, rec.Filepath, snippet))
	}
	return strings.Join(parts, "\n\n")
}

// sourceFilenames deduplicates the contributing filenames, preserving
// retrieval order.
func sourceFilenames(records []commonModels.ChunkRecord) []string {
	seen := make(map[string]bool, len(records))
	var sources []string
	for _, rec := range records {
		if seen[rec.Filename] {
			continue
		}
		seen[rec.Filename] = true
		sources = append(sources, rec.Filename)
	}
	return sources
}
