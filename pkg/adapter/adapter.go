package adapter

import "context"

// Reasoner is the downstream text-generation collaborator. The recall
// pipeline never trusts its output; see the grounded-answer protocol.
type Reasoner interface {
	// Reason generates a free-text response for the given prompts
	Reason(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Analysis is the textual by-product of analyzing one media blob.
type Analysis struct {
	Description   string   `json:"description"`
	Transcription string   `json:"transcription"`
	Labels        []string `json:"labels"`
}

// Analyzer turns raw media bytes into searchable text. Used only by the
// ingest pipeline; the retrieval core never sees media bytes.
type Analyzer interface {
	// AnalyzeMedia extracts a description, detected labels and a speech
	// transcript (where applicable) from the media blob
	AnalyzeMedia(ctx context.Context, mimeType string, data []byte) (*Analysis, error)
}
