package qdrantDB

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"docvault/internal/config"
	"docvault/internal/domain/commonModels"
	"docvault/pkg/logger_i"
)

var dimension = uint64(config.EmbeddingOutputDimensionality)

// ClientHolder implements vectorDB.Store on a Qdrant collection. One logical
// collection holds all tenants' chunk records; isolation is enforced by
// structured owner_id filter conditions on every scoped operation, built from
// typed values rather than interpolated query strings.
type ClientHolder struct {
	qObj       *qdrant.Client
	collection string
	logger     *logger_i.Logger
}

func NewClient(ctx context.Context) (*ClientHolder, error) {
	logger := logger_i.NewLogger("Qdrant")

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	holder := &ClientHolder{
		qObj:       client,
		collection: config.ChunkTableName,
		logger:     logger,
	}
	go holder.closeOnDone(ctx)
	return holder, nil
}

func (db *ClientHolder) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	if err := db.qObj.Close(); err != nil {
		db.logger.Error("could not close Qdrant", "error", err)
	}
}

func (db *ClientHolder) EnsureSchema(ctx context.Context) error {
	exists, err := db.qObj.CollectionExists(ctx, db.collection)
	if err != nil {
		return fmt.Errorf("collection lookup failed: %w", err)
	}
	if exists {
		return nil
	}

	err = db.qObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("collection create failed: %w", err)
	}
	return nil
}

// pointID derives a deterministic point id from the owner and chunk id, so a
// re-ingested chunk lands on the same point and the (chunk_id, owner_id)
// uniqueness invariant holds at the storage layer too.
func pointID(ownerID, chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(ownerID+"/"+chunkID)).String()
}

func ownerFilter(ownerID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("owner_id", ownerID),
		},
	}
}

func docFilter(docID, ownerID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("doc_id", docID),
			qdrant.NewMatch("owner_id", ownerID),
		},
	}
}

func (db *ClientHolder) Insert(ctx context.Context, records []commonModels.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		if uint64(len(rec.Embedding)) != dimension {
			return fmt.Errorf("record %s has embedding dimension %d, store requires %d", rec.ChunkID, len(rec.Embedding), dimension)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(rec.OwnerID, rec.ChunkID)),
			Vectors: qdrant.NewVectors(rec.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"doc_id":   rec.DocID,
				"chunk_id": rec.ChunkID,
				"owner_id": rec.OwnerID,
				"filepath": rec.Filepath,
				"filename": rec.Filename,
				"content":  rec.Content,
			}),
		}
	}

	_, err := db.qObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Delete(ctx context.Context, docID, ownerID string) error {
	return db.deleteByFilter(ctx, docFilter(docID, ownerID))
}

func (db *ClientHolder) DeleteOwner(ctx context.Context, ownerID string) error {
	return db.deleteByFilter(ctx, ownerFilter(ownerID))
}

func (db *ClientHolder) deleteByFilter(ctx context.Context, filter *qdrant.Filter) error {
	_, err := db.qObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error) {
	log := db.logger.TraceLogger(ctx)

	hits, err := db.qObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         ownerFilter(ownerID),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	records := make([]commonModels.ChunkRecord, 0, len(hits))
	for _, hit := range hits {
		records = append(records, recordFromPayload(hit.Payload))
	}
	log.Debug("vector search", "ownerId", ownerID, "hits", len(records))
	return records, nil
}

func recordFromPayload(payload map[string]*qdrant.Value) commonModels.ChunkRecord {
	return commonModels.ChunkRecord{
		DocID:    payload["doc_id"].GetStringValue(),
		ChunkID:  payload["chunk_id"].GetStringValue(),
		OwnerID:  payload["owner_id"].GetStringValue(),
		Filepath: payload["filepath"].GetStringValue(),
		Filename: payload["filename"].GetStringValue(),
		Content:  payload["content"].GetStringValue(),
	}
}

// scanOwner pages through a tenant's points without a query vector, returning
// their payloads. Used by the listing and cleanup reads.
func (db *ClientHolder) scanOwner(ctx context.Context, filter *qdrant.Filter) ([]map[string]*qdrant.Value, error) {
	const pageSize = 1024

	var payloads []map[string]*qdrant.Value
	var offset *qdrant.PointId
	for {
		points, err := db.qObj.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: db.collection,
			Filter:         filter,
			Limit:          qdrant.PtrOf(uint32(pageSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant scroll failed: %w", err)
		}
		for _, p := range points {
			payloads = append(payloads, p.Payload)
		}
		if len(points) < pageSize {
			return payloads, nil
		}
		// resume after the last point of this page
		offset = points[len(points)-1].Id
		payloads = payloads[:len(payloads)-1] // the resume point repeats on the next page
	}
}

func (db *ClientHolder) ListDocuments(ctx context.Context, ownerID string) ([]commonModels.DocumentInfo, error) {
	payloads, err := db.scanOwner(ctx, ownerFilter(ownerID))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var docs []commonModels.DocumentInfo
	for _, p := range payloads {
		docID := p["doc_id"].GetStringValue()
		if seen[docID] {
			continue
		}
		seen[docID] = true
		docs = append(docs, commonModels.DocumentInfo{
			DocID:    docID,
			Filename: p["filename"].GetStringValue(),
			OwnerID:  ownerID,
		})
	}
	return docs, nil
}

func (db *ClientHolder) DocumentFilepath(ctx context.Context, docID, ownerID string) (string, bool, error) {
	payloads, err := db.scanOwner(ctx, docFilter(docID, ownerID))
	if err != nil {
		return "", false, err
	}
	if len(payloads) == 0 {
		return "", false, nil
	}
	return payloads[0]["filepath"].GetStringValue(), true, nil
}

func (db *ClientHolder) OwnerFilepaths(ctx context.Context, ownerID string) ([]string, error) {
	payloads, err := db.scanOwner(ctx, ownerFilter(ownerID))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var paths []string
	for _, p := range payloads {
		fp := p["filepath"].GetStringValue()
		if fp == "" || seen[fp] {
			continue
		}
		seen[fp] = true
		paths = append(paths, fp)
	}
	return paths, nil
}
