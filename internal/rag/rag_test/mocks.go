package rag_test

import (
	"context"

	"docvault/internal/domain/commonModels"
)

// MockVectorDB implements vectorDB.Store
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnSearch           func(ctx context.Context, vector []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error)
	OnInsert           func(ctx context.Context, records []commonModels.ChunkRecord) error
	OnDelete           func(ctx context.Context, docID, ownerID string) error
	OnDeleteOwner      func(ctx context.Context, ownerID string) error
	OnCompact          func(ctx context.Context) error
	OnPurgeHistory     func(ctx context.Context) error
	OnListDocuments    func(ctx context.Context, ownerID string) ([]commonModels.DocumentInfo, error)
	OnDocumentFilepath func(ctx context.Context, docID, ownerID string) (string, bool, error)
	OnOwnerFilepaths   func(ctx context.Context, ownerID string) ([]string, error)
}

func (m *MockVectorDB) EnsureSchema(ctx context.Context) error { return nil }

func (m *MockVectorDB) Insert(ctx context.Context, records []commonModels.ChunkRecord) error {
	if m.OnInsert != nil {
		return m.OnInsert(ctx, records)
	}
	return nil
}

func (m *MockVectorDB) Delete(ctx context.Context, docID, ownerID string) error {
	if m.OnDelete != nil {
		return m.OnDelete(ctx, docID, ownerID)
	}
	return nil
}

func (m *MockVectorDB) DeleteOwner(ctx context.Context, ownerID string) error {
	if m.OnDeleteOwner != nil {
		return m.OnDeleteOwner(ctx, ownerID)
	}
	return nil
}

func (m *MockVectorDB) Compact(ctx context.Context) error {
	if m.OnCompact != nil {
		return m.OnCompact(ctx)
	}
	return nil
}

func (m *MockVectorDB) PurgeHistory(ctx context.Context) error {
	if m.OnPurgeHistory != nil {
		return m.OnPurgeHistory(ctx)
	}
	return nil
}

func (m *MockVectorDB) Search(ctx context.Context, vector []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vector, ownerID, limit)
	}
	return []commonModels.ChunkRecord{{
		DocID:    "default",
		ChunkID:  "default_chunk_0",
		OwnerID:  ownerID,
		Filename: "default",
		Content:  "default context",
	}}, nil
}

func (m *MockVectorDB) ListDocuments(ctx context.Context, ownerID string) ([]commonModels.DocumentInfo, error) {
	if m.OnListDocuments != nil {
		return m.OnListDocuments(ctx, ownerID)
	}
	return nil, nil
}

func (m *MockVectorDB) DocumentFilepath(ctx context.Context, docID, ownerID string) (string, bool, error) {
	if m.OnDocumentFilepath != nil {
		return m.OnDocumentFilepath(ctx, docID, ownerID)
	}
	return "", false, nil
}

func (m *MockVectorDB) OwnerFilepaths(ctx context.Context, ownerID string) ([]string, error) {
	if m.OnOwnerFilepaths != nil {
		return m.OnOwnerFilepaths(ctx, ownerID)
	}
	return nil, nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	// Return dummy vectors matching chunk count
	out := make([][]float32, len(chunks))
	for i := range out {
		out[i] = []float32{0.1}
	}
	return out, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, question, contextText string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, question, contextText string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, question, contextText)
	}
	return "mocked llm response", nil
}
