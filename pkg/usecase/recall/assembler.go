package recall

import (
	"github.com/specei/recall/pkg/model"
)

// Assemble deduplicates candidates by record id, keeping the
// highest-relevance match per record and merging confirmation kinds, then
// truncates to maxCount. It performs no judgment about content; the result
// is the only evidentiary basis the reasoner may see.
func Assemble(candidates []model.RankedCandidate, maxCount int) *model.EvidenceBlock {
	type entryState struct {
		best          model.RankedCandidate
		confirmations map[model.Confirmation]bool
	}

	order := make([]model.RecordID, 0, len(candidates))
	states := make(map[model.RecordID]*entryState, len(candidates))

	for _, candidate := range candidates {
		id := candidate.Record.ID
		state, ok := states[id]
		if !ok {
			state = &entryState{
				best:          candidate,
				confirmations: make(map[model.Confirmation]bool),
			}
			states[id] = state
			order = append(order, id)
		} else if candidate.Relevance > state.best.Relevance {
			state.best = candidate
		}
		state.confirmations[confirmationOf(candidate)] = true
	}

	entries := make([]model.EvidenceEntry, 0, len(order))
	for _, id := range order {
		state := states[id]
		record := state.best.Record

		confirmation := model.ConfirmationVisual
		switch {
		case state.confirmations[model.ConfirmationVisual] && state.confirmations[model.ConfirmationAudio]:
			confirmation = model.ConfirmationBoth
		case state.confirmations[model.ConfirmationAudio]:
			confirmation = model.ConfirmationAudio
		}

		entries = append(entries, model.EvidenceEntry{
			RecordID:     record.ID,
			SourceURI:    record.SourceURI,
			FileName:     record.FileName,
			Modality:     record.Modality,
			CapturedAt:   record.CapturedAt,
			Confirmation: confirmation,
			Relevance:    state.best.Relevance,
			Description:  record.AIDescription,
			Transcript:   record.Transcription,
			Labels:       record.DetectedLabels,
		})
	}

	if maxCount > 0 && len(entries) > maxCount {
		entries = entries[:maxCount]
	}

	return &model.EvidenceBlock{Entries: entries}
}

// confirmationOf maps a single surface match to a confirmation kind.
// Description and label matches are visual unless the record is audio-only;
// transcript matches are always audio.
func confirmationOf(candidate model.RankedCandidate) model.Confirmation {
	switch candidate.MatchSource {
	case model.MatchSourceTranscript:
		return model.ConfirmationAudio
	default:
		if candidate.Record.Modality == model.ModalityAudio {
			return model.ConfirmationAudio
		}
		return model.ConfirmationVisual
	}
}
