package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
)

// RESTMediaSource lists captured media from the capture platform's REST
// API (PostgREST-style row filters).
type RESTMediaSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRESTMediaSource creates a media source against the given API base URL.
func NewRESTMediaSource(baseURL, apiKey string) *RESTMediaSource {
	return &RESTMediaSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type mediaRow struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url"`
	StorageKey string    `json:"storage_key"`
	MIMEType   string    `json:"mime_type"`
	CapturedAt time.Time `json:"captured_at"`
}

func (s *RESTMediaSource) ListMedia(ctx context.Context, owner model.OwnerID) ([]*model.MediaItem, error) {
	url := fmt.Sprintf("%s/rest/v1/media?user_id=eq.%s&select=*", s.baseURL, owner)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build media list request")
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query media list", goerr.V("owner", owner))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, goerr.New("media list query failed",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	}

	var rows []mediaRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, goerr.Wrap(err, "failed to decode media list")
	}

	items := make([]*model.MediaItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &model.MediaItem{
			ID:         row.ID,
			OwnerID:    model.OwnerID(row.UserID),
			Modality:   toModality(row.Type),
			FileName:   row.FileName,
			StorageKey: row.StorageKey,
			SourceURI:  row.FileURL,
			MIMEType:   row.MIMEType,
			CapturedAt: row.CapturedAt,
		})
	}

	return items, nil
}

func toModality(mediaType string) model.Modality {
	switch mediaType {
	case "image", "photo":
		return model.ModalityPhoto
	case "video":
		return model.ModalityVideo
	case "audio":
		return model.ModalityAudio
	default:
		return model.ModalityText
	}
}
