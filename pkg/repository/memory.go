package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
)

// Memory is a process-local Repository for tests and local runs. Reads
// return copies so callers cannot mutate the stored records.
type Memory struct {
	mu      sync.RWMutex
	records map[model.RecordID]*model.MemoryRecord
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		records: make(map[model.RecordID]*model.MemoryRecord),
	}
}

func (r *Memory) PutRecord(_ context.Context, record *model.MemoryRecord) error {
	if err := record.Validate(); err != nil {
		return goerr.Wrap(err, "invalid memory record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *record
	copied.DetectedLabels = append([]string(nil), record.DetectedLabels...)
	r.records[record.ID] = &copied

	return nil
}

func (r *Memory) GetRecord(_ context.Context, id model.RecordID) (*model.MemoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrRecordNotFound, "no such record", goerr.V("id", id))
	}

	copied := *record
	copied.DetectedLabels = append([]string(nil), record.DetectedLabels...)
	return &copied, nil
}

func (r *Memory) ListRecords(_ context.Context, owner model.OwnerID) ([]*model.MemoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*model.MemoryRecord
	for _, record := range r.records {
		if record.OwnerID != owner {
			continue
		}
		copied := *record
		copied.DetectedLabels = append([]string(nil), record.DetectedLabels...)
		records = append(records, &copied)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CapturedAt.After(records[j].CapturedAt)
	})

	return records, nil
}
