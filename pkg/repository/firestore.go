package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const recordCollection = "memories"

// Firestore implements Repository on Cloud Firestore
type Firestore struct {
	client *firestore.Client
}

// New creates a Firestore-backed repository
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	if err := r.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}

func (r *Firestore) PutRecord(ctx context.Context, record *model.MemoryRecord) error {
	if err := record.Validate(); err != nil {
		return goerr.Wrap(err, "invalid memory record")
	}

	doc := r.client.Collection(recordCollection).Doc(string(record.ID))
	if _, err := doc.Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to put memory record", goerr.V("id", record.ID))
	}

	return nil
}

func (r *Firestore) GetRecord(ctx context.Context, id model.RecordID) (*model.MemoryRecord, error) {
	snapshot, err := r.client.Collection(recordCollection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrRecordNotFound, "no such record", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get memory record", goerr.V("id", id))
	}

	var record model.MemoryRecord
	if err := snapshot.DataTo(&record); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memory record", goerr.V("id", id))
	}

	return &record, nil
}

func (r *Firestore) ListRecords(ctx context.Context, owner model.OwnerID) ([]*model.MemoryRecord, error) {
	query := r.client.Collection(recordCollection).
		Where("OwnerID", "==", string(owner)).
		OrderBy("CapturedAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var records []*model.MemoryRecord
	for {
		snapshot, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory records", goerr.V("owner", owner))
		}

		var record model.MemoryRecord
		if err := snapshot.DataTo(&record); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory record", goerr.V("doc", snapshot.Ref.ID))
		}
		records = append(records, &record)
	}

	return records, nil
}
