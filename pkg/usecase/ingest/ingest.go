package ingest

import (
	"context"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/adapter"
	"github.com/specei/recall/pkg/model"
	"github.com/specei/recall/pkg/repository"
	"github.com/specei/recall/pkg/utils/logging"
)

// MediaSource lists a user's captured media awaiting ingestion.
type MediaSource interface {
	ListMedia(ctx context.Context, owner model.OwnerID) ([]*model.MediaItem, error)
}

// UseCase turns captured media into searchable memory records:
// fetch bytes → analyze → append. This is the only writer of the
// memory store in this codebase.
type UseCase struct {
	source   MediaSource
	storage  adapter.Storage
	analyzer adapter.Analyzer
	repo     repository.Repository
}

// New creates the ingest pipeline.
func New(source MediaSource, storage adapter.Storage, analyzer adapter.Analyzer, repo repository.Repository) *UseCase {
	return &UseCase{
		source:   source,
		storage:  storage,
		analyzer: analyzer,
		repo:     repo,
	}
}

// Summary reports the outcome of one sync run.
type Summary struct {
	Total     int
	Processed int
	Skipped   int
	Errors    int
}

// SyncOwner ingests all pending media of one owner. Per-item failures are
// counted and logged but do not abort the batch.
func (u *UseCase) SyncOwner(ctx context.Context, owner model.OwnerID) (*Summary, error) {
	logger := logging.From(ctx)

	items, err := u.source.ListMedia(ctx, owner)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list media", goerr.V("owner", owner))
	}

	summary := &Summary{Total: len(items)}
	for _, item := range items {
		if item.StorageKey == "" {
			summary.Skipped++
			continue
		}

		if err := u.ingestItem(ctx, owner, item); err != nil {
			logger.Warn("failed to ingest media item",
				"media", item.ID, "owner", owner, "error", err)
			summary.Errors++
			continue
		}
		summary.Processed++
	}

	logger.Info("media sync finished",
		"owner", owner,
		"total", summary.Total,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"errors", summary.Errors)

	return summary, nil
}

func (u *UseCase) ingestItem(ctx context.Context, owner model.OwnerID, item *model.MediaItem) error {
	if item.OwnerID != owner {
		return goerr.Wrap(model.ErrOwnerScopeViolation, "media item crossed owner boundary",
			goerr.V("media", item.ID), goerr.V("owner", owner))
	}

	reader, err := u.storage.Get(ctx, item.StorageKey)
	if err != nil {
		return goerr.Wrap(err, "failed to open media blob", goerr.V("key", item.StorageKey))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return goerr.Wrap(err, "failed to read media blob", goerr.V("key", item.StorageKey))
	}

	analysis, err := u.analyzer.AnalyzeMedia(ctx, item.MIMEType, data)
	if err != nil {
		return goerr.Wrap(err, "failed to analyze media", goerr.V("media", item.ID))
	}

	record := &model.MemoryRecord{
		ID:             model.NewRecordID(),
		OwnerID:        owner,
		Modality:       item.Modality,
		CapturedAt:     item.CapturedAt,
		IndexedAt:      time.Now().UTC(),
		SourceURI:      item.SourceURI,
		FileName:       item.FileName,
		AIDescription:  analysis.Description,
		Transcription:  analysis.Transcription,
		DetectedLabels: analysis.Labels,
	}

	if err := u.repo.PutRecord(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to store memory record", goerr.V("media", item.ID))
	}

	return nil
}
