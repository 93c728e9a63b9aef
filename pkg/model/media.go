package model

import "time"

// MediaItem is one captured media file waiting for analysis. Listings come
// from the capture platform; this codebase only consumes them.
type MediaItem struct {
	ID         string
	OwnerID    OwnerID
	Modality   Modality
	FileName   string
	StorageKey string
	SourceURI  string
	MIMEType   string
	CapturedAt time.Time
}
