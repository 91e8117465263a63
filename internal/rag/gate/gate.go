package gate

import "context"

// Gate is the process-wide exclusive lock guarding every operation that
// mutates the vector store. Holders keep it for the full duration of the
// operation, extraction through compaction, so two ingestions can never race
// on the same doc_id or interleave with a compaction.
type Gate struct {
	slot chan struct{}
}

func New() *Gate {
	return &Gate{slot: make(chan struct{}, 1)}
}

// Acquire blocks until the gate is free or the context is cancelled.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the gate. Must only be called by the current holder.
func (g *Gate) Release() {
	<-g.slot
}
