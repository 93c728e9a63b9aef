package repository

import (
	"context"

	"github.com/specei/recall/pkg/model"
)

// Repository defines persistence for memory records. The retrieval core
// only reads; appends happen in the ingest pipeline.
type Repository interface {
	// PutRecord appends a memory record
	PutRecord(ctx context.Context, record *model.MemoryRecord) error

	// GetRecord retrieves a record by ID
	GetRecord(ctx context.Context, id model.RecordID) (*model.MemoryRecord, error)

	// ListRecords retrieves all records owned by the given owner, most
	// recently captured first
	ListRecords(ctx context.Context, owner model.OwnerID) ([]*model.MemoryRecord, error)
}
