package vectorDB

import (
	"context"

	"docvault/internal/domain/commonModels"
)

// Store owns the shared chunk-record collection. Every read, delete and reset
// is tenant-scoped: no operation returns or mutates another owner's records.
type Store interface {
	// EnsureSchema idempotently creates the collection with the fixed chunk
	// record schema. Invoked once at startup.
	EnsureSchema(ctx context.Context) error

	// Insert appends records; no-op on empty input. Persisted immediately.
	Insert(ctx context.Context, records []commonModels.ChunkRecord) error

	// Delete removes all records matching doc_id and owner_id exactly.
	// Deleting a document that does not exist is a no-op, not an error.
	Delete(ctx context.Context, docID, ownerID string) error

	// DeleteOwner removes every record belonging to a tenant.
	DeleteOwner(ctx context.Context, ownerID string) error

	// Compact reclaims space left behind by deletions.
	Compact(ctx context.Context) error

	// PurgeHistory discards retained snapshots so deleted data cannot be
	// recovered. Invoked on full tenant reset.
	PurgeHistory(ctx context.Context) error

	// Search returns up to limit records most similar to the query vector,
	// filtered to ownerID, ordered by similarity score descending.
	Search(ctx context.Context, vector []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error)

	// ListDocuments returns the tenant's distinct (doc_id, filename, owner_id)
	// tuples, deduplicated across each document's chunks.
	ListDocuments(ctx context.Context, ownerID string) ([]commonModels.DocumentInfo, error)

	// DocumentFilepath returns the text artifact path shared by a document's
	// chunks, or found=false when the document has no records.
	DocumentFilepath(ctx context.Context, docID, ownerID string) (string, bool, error)

	// OwnerFilepaths returns the distinct artifact paths of a tenant's
	// documents, used for cleanup during reset.
	OwnerFilepaths(ctx context.Context, ownerID string) ([]string, error)
}
