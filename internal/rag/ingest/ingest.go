package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docvault/internal/config"
	"docvault/internal/domain/commonModels"
	"docvault/internal/domain/jobModel"
	"docvault/internal/metrics"
	"docvault/internal/rag/embedding"
	"docvault/internal/rag/vectorDB"
	"docvault/pkg/logger_i"
)

// Progress receives the pipeline step plus a 0.0 -> 1.0 completion fraction.
// May be nil.
type Progress func(step jobModel.InternalStatus, fraction float64)

// Ingestor sequences extraction, chunking, embedding and storage for one
// document. Re-ingesting under the same doc_id replaces the prior chunk set:
// old records are deleted (and the store compacted) before the new insert, so
// a shrinking document cannot leave orphaned chunks behind.
type Ingestor struct {
	store    vectorDB.Store
	embedder embedding.Embedder
	chunker  *Chunker
	extract  func(path string) (string, error)
	logger   *logger_i.Logger
}

func NewIngestor(store vectorDB.Store, em embedding.Embedder) *Ingestor {
	chunker, err := NewChunker(config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		// config constants violate the chunker contract; not reachable with
		// the shipped defaults
		panic(err)
	}
	return &Ingestor{
		store:    store,
		embedder: em,
		chunker:  chunker,
		extract:  ExtractText,
		logger:   logger_i.NewLogger("Document Ingestion"),
	}
}

// DocIDFromPath derives the stable document id from the file's base name,
// without extension. Two uploads with the same name by the same owner collide
// on purpose: re-uploading a same-named file is the update path.
func DocIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IngestDocument runs the full pipeline for one PDF. Every failure is
// converted into a structured result; nothing escapes to the caller, and one
// document's failure never touches another document's data.
func (ing *Ingestor) IngestDocument(ctx context.Context, pdfPath, ownerID string, progress Progress) commonModels.IngestResult {
	log := ing.logger.TraceLogger(ctx).With("path", pdfPath, "ownerId", ownerID)
	filename := filepath.Base(pdfPath)
	report := func(step jobModel.InternalStatus, fraction float64) {
		if progress != nil {
			progress(step, fraction)
		}
	}

	report(jobModel.Extracting, 0.0)
	content, err := ing.extract(pdfPath)
	if err != nil {
		return ing.failure(log, filename, "extraction failed", err, report)
	}

	// The text artifact is the canonical filepath carried by every chunk
	// record; it is also what delete/reset clean up later.
	txtPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".txt"
	if err := os.WriteFile(txtPath, []byte(content), 0o644); err != nil {
		return ing.failure(log, filename, "writing text artifact failed", err, report)
	}

	docID := DocIDFromPath(pdfPath)

	report(jobModel.DeletingOld, 0.2)
	if err := ing.store.Delete(ctx, docID, ownerID); err != nil {
		return ing.failure(log, filename, "deleting previous chunks failed", err, report)
	}
	if err := ing.store.Compact(ctx); err != nil {
		return ing.failure(log, filename, "compaction failed", err, report)
	}

	report(jobModel.Chunking, 0.3)
	chunks := ing.chunker.Split(content)
	log.Debug("chunked document", "chunks", len(chunks))

	vectors, err := ComputeEmbeddings(ctx, chunks, ing.embedder, func(f float64) {
		report(jobModel.Embedding, 0.3+0.6*f)
	})
	if err != nil {
		return ing.failure(log, filename, "embedding failed", err, report)
	}

	records := make([]commonModels.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = commonModels.ChunkRecord{
			DocID:     docID,
			ChunkID:   fmt.Sprintf("%s_chunk_%d", docID, i),
			OwnerID:   ownerID,
			Filepath:  txtPath,
			Filename:  docID,
			Content:   chunk,
			Embedding: vectors[i],
		}
	}

	report(jobModel.Inserting, 0.95)
	// A document with no extractable text yields no records; that is still a
	// successful ingestion.
	if err := ing.store.Insert(ctx, records); err != nil {
		return ing.failure(log, filename, "insert failed", err, report)
	}
	metrics.AddIngestedChunks(len(records))

	report(jobModel.Done, 1.0)
	log.Info("ingested document", "docId", docID, "chunks", len(records))
	return commonModels.IngestResult{
		Success:  true,
		DocID:    docID,
		Filename: filename,
		Message:  fmt.Sprintf("Successfully processed and ingested %s", filename),
	}
}

func (ing *Ingestor) failure(log *logger_i.Logger, filename, stage string, err error, report Progress) commonModels.IngestResult {
	log.Error("ingestion failed", "stage", stage, "error", err)
	report(jobModel.Failed, 1.0)
	return commonModels.IngestResult{
		Success:  false,
		Filename: filename,
		Message:  fmt.Sprintf("Failed to process %s: %v", filename, err),
		Err:      fmt.Errorf("%s: %w", stage, err),
	}
}
