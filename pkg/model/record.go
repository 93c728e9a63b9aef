package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type RecordID string

// NewRecordID generates a new unique RecordID
func NewRecordID() RecordID {
	return RecordID(uuid.New().String())
}

type OwnerID string

type Modality string

const (
	ModalityPhoto Modality = "photo"
	ModalityVideo Modality = "video"
	ModalityAudio Modality = "audio"
	ModalityText  Modality = "text"
)

// Validate checks if the modality is valid
func (m Modality) Validate() error {
	switch m {
	case ModalityPhoto, ModalityVideo, ModalityAudio, ModalityText:
		return nil
	default:
		return goerr.New("invalid modality", goerr.V("modality", m))
	}
}

// MemoryRecord is one captured experience after the analysis pipeline has
// finished with it. The retrieval core only reads the textual by-products;
// the underlying blob stays behind SourceURI and is never opened here.
type MemoryRecord struct {
	ID       RecordID
	OwnerID  OwnerID
	Modality Modality

	// CapturedAt is when the experience happened, not when it was indexed.
	CapturedAt time.Time
	IndexedAt  time.Time

	SourceURI      string
	FileName       string
	AIDescription  string
	Transcription  string
	DetectedLabels []string
}

// Searchable reports whether the record has at least one non-empty text
// surface. Records without one are invisible to the scorer.
func (r *MemoryRecord) Searchable() bool {
	if strings.TrimSpace(r.AIDescription) != "" {
		return true
	}
	if strings.TrimSpace(r.Transcription) != "" {
		return true
	}
	for _, label := range r.DetectedLabels {
		if strings.TrimSpace(label) != "" {
			return true
		}
	}
	return false
}

// Surface is one searchable text field of a record.
type Surface struct {
	Source MatchSource
	Text   string
}

// Surfaces returns the non-empty text surfaces of the record. Each detected
// label is its own surface so a label hit can be attributed precisely.
func (r *MemoryRecord) Surfaces() []Surface {
	var surfaces []Surface
	if strings.TrimSpace(r.AIDescription) != "" {
		surfaces = append(surfaces, Surface{Source: MatchSourceDescription, Text: r.AIDescription})
	}
	if strings.TrimSpace(r.Transcription) != "" {
		surfaces = append(surfaces, Surface{Source: MatchSourceTranscript, Text: r.Transcription})
	}
	for _, label := range r.DetectedLabels {
		if strings.TrimSpace(label) != "" {
			surfaces = append(surfaces, Surface{Source: MatchSourceDetectedLabel, Text: label})
		}
	}
	return surfaces
}

// Validate checks structural integrity of a record before it is persisted.
func (r *MemoryRecord) Validate() error {
	if r.ID == "" {
		return goerr.New("record id is empty")
	}
	if r.OwnerID == "" {
		return goerr.New("record owner is empty")
	}
	if err := r.Modality.Validate(); err != nil {
		return err
	}
	if r.CapturedAt.IsZero() {
		return goerr.New("captured_at is zero", goerr.V("id", r.ID))
	}
	return nil
}
