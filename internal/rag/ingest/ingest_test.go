package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docvault/internal/domain/commonModels"
	"docvault/internal/domain/jobModel"
	"docvault/pkg/logger_i"
)

// fakeStore records the mutation order so replace-before-insert is checkable.
type fakeStore struct {
	calls    []string
	inserted []commonModels.ChunkRecord
	onDelete func(docID, ownerID string) error
	onInsert func(records []commonModels.ChunkRecord) error
}

func (f *fakeStore) EnsureSchema(ctx context.Context) error { return nil }

func (f *fakeStore) Insert(ctx context.Context, records []commonModels.ChunkRecord) error {
	f.calls = append(f.calls, "insert")
	f.inserted = append(f.inserted, records...)
	if f.onInsert != nil {
		return f.onInsert(records)
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, docID, ownerID string) error {
	f.calls = append(f.calls, "delete "+docID)
	if f.onDelete != nil {
		return f.onDelete(docID, ownerID)
	}
	return nil
}

func (f *fakeStore) DeleteOwner(ctx context.Context, ownerID string) error {
	f.calls = append(f.calls, "deleteOwner "+ownerID)
	return nil
}

func (f *fakeStore) Compact(ctx context.Context) error {
	f.calls = append(f.calls, "compact")
	return nil
}

func (f *fakeStore) PurgeHistory(ctx context.Context) error {
	f.calls = append(f.calls, "purge")
	return nil
}

func (f *fakeStore) Search(ctx context.Context, vector []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error) {
	return nil, nil
}

func (f *fakeStore) ListDocuments(ctx context.Context, ownerID string) ([]commonModels.DocumentInfo, error) {
	return nil, nil
}

func (f *fakeStore) DocumentFilepath(ctx context.Context, docID, ownerID string) (string, bool, error) {
	return "", false, nil
}

func (f *fakeStore) OwnerFilepaths(ctx context.Context, ownerID string) ([]string, error) {
	return nil, nil
}

func newTestIngestor(store *fakeStore, em *mockEmbedder, extracted string, extractErr error) *Ingestor {
	chunker, _ := NewChunker(1000, 200)
	return &Ingestor{
		store:    store,
		embedder: em,
		chunker:  chunker,
		extract: func(path string) (string, error) {
			return extracted, extractErr
		},
		logger: logger_i.NewLogger("test ingestion"),
	}
}

func pdfPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func TestDocIDFromPath(t *testing.T) {
	if got := DocIDFromPath("/data/alice/report.pdf"); got != "report" {
		t.Errorf("got %q, want report", got)
	}
	if got := DocIDFromPath("notes.2024.pdf"); got != "notes.2024" {
		t.Errorf("got %q, want notes.2024", got)
	}
}

func TestIngest_ChunkIDsAreDeterministic(t *testing.T) {
	store := &fakeStore{}
	ing := newTestIngestor(store, &mockEmbedder{}, strings.Repeat("x", 2500), nil)

	result := ing.IngestDocument(context.Background(), pdfPath(t, "report.pdf"), "owner-1", nil)
	if !result.Success {
		t.Fatalf("ingestion failed: %s", result.Message)
	}
	if result.DocID != "report" {
		t.Errorf("doc id = %q, want report", result.DocID)
	}

	if len(store.inserted) != 4 {
		t.Fatalf("expected 4 records, got %d", len(store.inserted))
	}
	for i, rec := range store.inserted {
		want := fmt.Sprintf("report_chunk_%d", i)
		if rec.ChunkID != want {
			t.Errorf("record %d chunk id = %q, want %q", i, rec.ChunkID, want)
		}
		if rec.OwnerID != "owner-1" {
			t.Errorf("record %d owner = %q", i, rec.OwnerID)
		}
		if rec.DocID != "report" {
			t.Errorf("record %d doc id = %q", i, rec.DocID)
		}
	}
}

func TestIngest_DeletesOldVersionBeforeInsert(t *testing.T) {
	store := &fakeStore{}
	ing := newTestIngestor(store, &mockEmbedder{}, "fresh content", nil)

	result := ing.IngestDocument(context.Background(), pdfPath(t, "report.pdf"), "owner-1", nil)
	if !result.Success {
		t.Fatalf("ingestion failed: %s", result.Message)
	}

	want := []string{"delete report", "compact", "insert"}
	if len(store.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", store.calls, want)
	}
	for i := range want {
		if store.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (full order %v)", i, store.calls[i], want[i], store.calls)
		}
	}
}

func TestIngest_WritesTextArtifact(t *testing.T) {
	store := &fakeStore{}
	ing := newTestIngestor(store, &mockEmbedder{}, "the extracted text", nil)
	path := pdfPath(t, "report.pdf")

	result := ing.IngestDocument(context.Background(), path, "owner-1", nil)
	if !result.Success {
		t.Fatalf("ingestion failed: %s", result.Message)
	}

	txtPath := strings.TrimSuffix(path, ".pdf") + ".txt"
	data, err := os.ReadFile(txtPath)
	if err != nil {
		t.Fatalf("text artifact not written: %v", err)
	}
	if string(data) != "the extracted text" {
		t.Errorf("artifact content = %q", data)
	}
	for _, rec := range store.inserted {
		if rec.Filepath != txtPath {
			t.Errorf("record filepath = %q, want %q", rec.Filepath, txtPath)
		}
	}
}

func TestIngest_EmptyDocumentSucceedsWithoutRecords(t *testing.T) {
	store := &fakeStore{}
	em := &mockEmbedder{}
	ing := newTestIngestor(store, em, "", nil)

	result := ing.IngestDocument(context.Background(), pdfPath(t, "blank.pdf"), "owner-1", nil)
	if !result.Success {
		t.Fatalf("empty document should still succeed: %s", result.Message)
	}
	if len(store.inserted) != 0 {
		t.Errorf("expected no records, got %d", len(store.inserted))
	}
	if em.batchCalls != 0 {
		t.Errorf("embedder invoked %d times for empty document", em.batchCalls)
	}
}

func TestIngest_ExtractionFailureIsStructured(t *testing.T) {
	store := &fakeStore{}
	ing := newTestIngestor(store, &mockEmbedder{}, "", errors.New("corrupt xref table"))

	result := ing.IngestDocument(context.Background(), pdfPath(t, "broken.pdf"), "owner-1", nil)
	if result.Success {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(result.Message, "Failed to process broken.pdf") {
		t.Errorf("message = %q", result.Message)
	}
	if result.Err == nil {
		t.Error("expected structured error to be set")
	}
	if len(store.calls) != 0 {
		t.Errorf("store should be untouched on extraction failure, calls = %v", store.calls)
	}
}

func TestIngest_EmbeddingFailureLeavesOldDataDeleted(t *testing.T) {
	// replace is best effort: a failure after the delete step does not restore
	// the old version
	store := &fakeStore{}
	em := &mockEmbedder{onBatch: func(chunks []string) ([][]float32, error) {
		return nil, errors.New("quota exhausted")
	}}
	ing := newTestIngestor(store, em, "some content", nil)

	result := ing.IngestDocument(context.Background(), pdfPath(t, "report.pdf"), "owner-1", nil)
	if result.Success {
		t.Fatal("expected failure result")
	}
	for _, call := range store.calls {
		if call == "insert" {
			t.Errorf("insert must not run after embedding failure, calls = %v", store.calls)
		}
	}
}

func TestIngest_ReportsProgressSteps(t *testing.T) {
	store := &fakeStore{}
	ing := newTestIngestor(store, &mockEmbedder{}, strings.Repeat("y", 1500), nil)

	var steps []jobModel.InternalStatus
	var fractions []float64
	result := ing.IngestDocument(context.Background(), pdfPath(t, "report.pdf"), "owner-1", func(step jobModel.InternalStatus, fraction float64) {
		steps = append(steps, step)
		fractions = append(fractions, fraction)
	})
	if !result.Success {
		t.Fatalf("ingestion failed: %s", result.Message)
	}

	if steps[0] != jobModel.Extracting {
		t.Errorf("first step = %s, want Extracting", steps[0])
	}
	if steps[len(steps)-1] != jobModel.Done {
		t.Errorf("last step = %s, want Done", steps[len(steps)-1])
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Errorf("progress went backwards at %d: %v", i, fractions)
		}
	}
	if fractions[len(fractions)-1] != 1.0 {
		t.Errorf("final fraction = %v, want 1.0", fractions[len(fractions)-1])
	}
}
