package model

// QueryIntent is the transient classification of one user utterance. It is
// produced fresh per utterance and never persisted.
type QueryIntent struct {
	IsMemoryQuery bool
}

type MatchSource string

const (
	MatchSourceDescription   MatchSource = "description"
	MatchSourceTranscript    MatchSource = "transcript"
	MatchSourceDetectedLabel MatchSource = "detected_label"
)

// RankedCandidate is one surface match produced by the scorer. The same
// record may appear more than once when it matched on several surfaces;
// the assembler deduplicates by record id.
type RankedCandidate struct {
	Record      *MemoryRecord
	MatchSource MatchSource
	MatchedText string
	Relevance   float64
}
