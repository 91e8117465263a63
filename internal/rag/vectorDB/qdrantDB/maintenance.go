package qdrantDB

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// Compact nudges the collection's optimizers to vacuum segments that carry
// deletion markers. Deletes mark points rather than reclaim their space, so
// callers run this after every delete to bound storage growth.
func (db *ClientHolder) Compact(ctx context.Context) error {
	err := db.qObj.UpdateCollection(ctx, &qdrant.UpdateCollection{
		CollectionName: db.collection,
		OptimizersConfig: &qdrant.OptimizersConfigDiff{
			DeletedThreshold:      qdrant.PtrOf(0.1),
			VacuumMinVectorNumber: qdrant.PtrOf(uint64(100)),
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant compaction failed: %w", err)
	}
	return nil
}

// PurgeHistory drops every retained snapshot of the collection so deleted
// records cannot be restored from one. Invoked on full tenant reset.
func (db *ClientHolder) PurgeHistory(ctx context.Context) error {
	snapshots, err := db.qObj.ListSnapshots(ctx, db.collection)
	if err != nil {
		return fmt.Errorf("qdrant snapshot listing failed: %w", err)
	}

	for _, snap := range snapshots {
		if err := db.qObj.DeleteSnapshot(ctx, db.collection, snap.GetName()); err != nil {
			return fmt.Errorf("qdrant snapshot delete failed: %w", err)
		}
	}
	if len(snapshots) > 0 {
		db.logger.Info("purged collection snapshots", "count", len(snapshots))
	}
	return nil
}
