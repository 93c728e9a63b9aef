package model

import (
	"fmt"
	"strings"
	"time"
)

// Confirmation tags how an evidence entry was corroborated.
type Confirmation string

const (
	ConfirmationVisual Confirmation = "visual"
	ConfirmationAudio  Confirmation = "audio"
	ConfirmationBoth   Confirmation = "both"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Validate checks if the confidence label is one of the closed set
func (c Confidence) Validate() error {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return nil
	default:
		return ErrInvalidConfidence
	}
}

// EvidenceEntry is one assembled, deduplicated candidate rendered with the
// fixed fields the grounded-answer protocol may cite.
type EvidenceEntry struct {
	RecordID     RecordID
	SourceURI    string
	FileName     string
	Modality     Modality
	CapturedAt   time.Time
	Confirmation Confirmation
	Relevance    float64

	Description string
	Transcript  string
	Labels      []string
}

// EvidenceBlock is the ordered evidence handed to the reasoner. It is the
// only permissible evidentiary basis for an answer.
type EvidenceBlock struct {
	Entries []EvidenceEntry
}

// Empty reports whether there is no evidence at all.
func (b *EvidenceBlock) Empty() bool {
	return b == nil || len(b.Entries) == 0
}

// Render serializes the block for prompt injection. The section markers
// follow the capture pipeline's content layout so evidence text and stored
// memory text look alike.
func (b *EvidenceBlock) Render() string {
	if b.Empty() {
		return ""
	}

	var sb strings.Builder
	for i, e := range b.Entries {
		fmt.Fprintf(&sb, "=== Evidence %d ===\n", i+1)
		name := e.FileName
		if name == "" {
			name = e.SourceURI
		}
		fmt.Fprintf(&sb, "[FILE] %s\n", name)
		fmt.Fprintf(&sb, "[TIME] %s\n", e.CapturedAt.UTC().Format(time.RFC3339))
		fmt.Fprintf(&sb, "[MODALITY] %s\n", e.Modality)
		fmt.Fprintf(&sb, "[CONFIRMATION] %s\n", e.Confirmation)
		if e.Description != "" {
			fmt.Fprintf(&sb, "[VISUAL] %s\n", e.Description)
		}
		if e.Transcript != "" {
			fmt.Fprintf(&sb, "[TRANSCRIPT] %s\n", e.Transcript)
		}
		if len(e.Labels) > 0 {
			fmt.Fprintf(&sb, "[TAGS] %s\n", strings.Join(e.Labels, ", "))
		}
	}
	return sb.String()
}
