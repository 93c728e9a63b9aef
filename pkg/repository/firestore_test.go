package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/specei/recall/pkg/model"
	"github.com/specei/recall/pkg/repository"
)

func setupFirestore(t *testing.T) *repository.Firestore {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	repo, err := repository.New(context.Background(), projectID, databaseID)
	gt.NoError(t, err)
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})

	return repo
}

func TestFirestorePutAndGetRecord(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	record := &model.MemoryRecord{
		ID:             model.NewRecordID(),
		OwnerID:        "test-owner",
		Modality:       model.ModalityPhoto,
		CapturedAt:     time.Now().UTC().Truncate(time.Second),
		IndexedAt:      time.Now().UTC().Truncate(time.Second),
		SourceURI:      "gs://specei-media/keys.jpg",
		FileName:       "keys.jpg",
		AIDescription:  "a set of keys on a kitchen counter",
		DetectedLabels: []string{"keys", "counter"},
	}

	gt.NoError(t, repo.PutRecord(ctx, record))

	got, err := repo.GetRecord(ctx, record.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.ID, record.ID)
	gt.Equal(t, got.OwnerID, record.OwnerID)
	gt.Equal(t, got.AIDescription, record.AIDescription)
	gt.A(t, got.DetectedLabels).Length(2)
}

func TestFirestoreGetRecordNotFound(t *testing.T) {
	repo := setupFirestore(t)

	_, err := repo.GetRecord(context.Background(), model.NewRecordID())
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrRecordNotFound))
}

func TestFirestoreListRecords(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	owner := model.OwnerID("list-owner-" + string(model.NewRecordID()))
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		record := &model.MemoryRecord{
			ID:            model.NewRecordID(),
			OwnerID:       owner,
			Modality:      model.ModalityAudio,
			CapturedAt:    base.Add(time.Duration(i) * time.Minute),
			IndexedAt:     base,
			SourceURI:     "gs://specei-media/note.m4a",
			Transcription: "remember to buy milk",
		}
		gt.NoError(t, repo.PutRecord(ctx, record))
	}

	records, err := repo.ListRecords(ctx, owner)
	gt.NoError(t, err)
	gt.A(t, records).Length(3)

	// CapturedAt should be descending
	for i := 1; i < len(records); i++ {
		gt.True(t, !records[i-1].CapturedAt.Before(records[i].CapturedAt))
	}
}
