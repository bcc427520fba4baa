// Package connector maintains the in-memory, persistence-backed state of
// every connector on the charge point: connector 0 is the charge-point-wide
// aggregate, connectors 1..N are the physical ones configured at startup.
package connector

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/storage"
)

// Registry owns every connector's persisted row and in-memory snapshot. A
// per-connector mutex serializes mutation of a single connector; different
// connectors mutate independently.
type Registry struct {
	gw *storage.Gateway

	mu    sync.RWMutex
	slots map[int]*slot
}

type slot struct {
	mu     sync.Mutex
	record storage.ConnectorRecord
}

// Open loads the persisted connector rows for numConnectors physical
// connectors (plus connector 0, the aggregate). If the persisted row count
// disagrees with numConnectors+1, every row is erased and recreated with
// defaults — a resync, not an incremental repair, per the registry's
// integrity contract.
func Open(ctx context.Context, gw *storage.Gateway, numConnectors int) (*Registry, error) {
	want := numConnectors + 1

	rows, err := gw.ListConnectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("connector: load rows: %w", err)
	}

	if len(rows) != want {
		logger.Infof("connector: persisted count %d disagrees with configured %d, resyncing", len(rows), want)
		if err := gw.DeleteAllConnectors(ctx); err != nil {
			return nil, fmt.Errorf("connector: resync: %w", err)
		}
		rows = rows[:0]
		for id := 0; id < want; id++ {
			rec := defaultRecord(id)
			if err := gw.UpsertConnector(ctx, rec); err != nil {
				return nil, fmt.Errorf("connector: seed connector %d: %w", id, err)
			}
			rows = append(rows, rec)
		}
	}

	slots := make(map[int]*slot, len(rows))
	for _, r := range rows {
		slots[r.ID] = &slot{record: r}
	}

	return &Registry{gw: gw, slots: slots}, nil
}

func defaultRecord(id int) storage.ConnectorRecord {
	return storage.ConnectorRecord{
		ID:        id,
		Status:    string(ocpp16.ChargePointStatusAvailable),
		ErrorCode: string(ocpp16.ChargePointErrorCodeNoError),
	}
}

// Count reports the number of connectors tracked, including connector 0.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots)
}

// Get returns the in-memory snapshot of connector id.
func (r *Registry) Get(id int) (storage.ConnectorRecord, bool) {
	r.mu.RLock()
	s, ok := r.slots[id]
	r.mu.RUnlock()
	if !ok {
		return storage.ConnectorRecord{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record, true
}

// List returns a snapshot of every connector, ordered by id.
func (r *Registry) List() []storage.ConnectorRecord {
	r.mu.RLock()
	ids := make([]int, 0, len(r.slots))
	for id := range r.slots {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	out := make([]storage.ConnectorRecord, 0, len(ids))
	for id := 0; id < len(r.slots); id++ {
		if rec, ok := r.Get(id); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Mutate applies fn to connector id's record under its own mutex, then
// persists the result immediately. Reads elsewhere only ever see the
// in-memory snapshot; Mutate is what keeps it faithful to disk.
func (r *Registry) Mutate(ctx context.Context, id int, fn func(*storage.ConnectorRecord)) (storage.ConnectorRecord, error) {
	r.mu.RLock()
	s, ok := r.slots[id]
	r.mu.RUnlock()
	if !ok {
		return storage.ConnectorRecord{}, fmt.Errorf("connector: no such connector %d", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.record)
	if err := r.gw.UpsertConnector(ctx, s.record); err != nil {
		return storage.ConnectorRecord{}, fmt.Errorf("connector: persist %d: %w", id, err)
	}
	return s.record, nil
}
