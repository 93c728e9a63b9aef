package recall_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/specei/recall/pkg/model"
	"github.com/specei/recall/pkg/usecase/recall"
)

func testEvidence() *model.EvidenceBlock {
	return &model.EvidenceBlock{
		Entries: []model.EvidenceEntry{
			{
				RecordID:     model.NewRecordID(),
				SourceURI:    "gs://specei-media/keys.jpg",
				FileName:     "keys.jpg",
				Modality:     model.ModalityPhoto,
				CapturedAt:   time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
				Confirmation: model.ConfirmationVisual,
				Relevance:    0.7,
				Description:  "a set of keys on a kitchen counter",
			},
		},
	}
}

const wellFormedAnswer = `Answer: Your keys are on the kitchen counter.
Evidence:
- file=keys.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual
Context: The photo shows a kitchen counter with a set of keys resting on it.
Confidence: High — a single recent photo clearly shows the keys.`

func TestParseResponseAnswer(t *testing.T) {
	resp, err := recall.ParseResponse(wellFormedAnswer, testEvidence())
	gt.NoError(t, err)
	gt.True(t, !resp.Refused)
	gt.V(t, resp.Answer).NotNil()
	gt.Equal(t, resp.Answer.Direct, "Your keys are on the kitchen counter.")
	gt.A(t, resp.Answer.Citations).Length(1)
	gt.Equal(t, resp.Answer.Citations[0].File, "keys.jpg")
	gt.Equal(t, resp.Answer.Confidence, model.ConfidenceHigh)
	gt.S(t, resp.Answer.Justification).Contains("recent photo")
	gt.S(t, resp.Answer.Context).Contains("kitchen counter")
}

func TestParseResponseExactRefusal(t *testing.T) {
	resp, err := recall.ParseResponse(recall.RefusalText, testEvidence())
	gt.NoError(t, err)
	gt.True(t, resp.Refused)
	gt.Equal(t, resp.Raw, recall.RefusalText)
}

func TestParseResponseViolations(t *testing.T) {
	evidence := testEvidence()

	testCases := []struct {
		name string
		raw  string
	}{
		{"empty output", "   "},
		{"refusal with extra text", recall.RefusalText + " Sorry about that."},
		{"free text", "The keys are probably on the counter."},
		{
			"missing citations",
			"Answer: Your keys are on the counter.\nContext: A kitchen counter.\nConfidence: High — clear photo.",
		},
		{
			"invented citation",
			"Answer: Your keys are on the counter.\nEvidence:\n- file=door.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual\nContext: A kitchen counter.\nConfidence: High — clear photo.",
		},
		{
			"wrong timestamp in citation",
			"Answer: Your keys are on the counter.\nEvidence:\n- file=keys.jpg time=2024-02-01T00:00:00Z modality=photo confirmation=visual\nContext: A kitchen counter.\nConfidence: High — clear photo.",
		},
		{
			"confidence outside closed set",
			"Answer: Your keys are on the counter.\nEvidence:\n- file=keys.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual\nContext: A kitchen counter.\nConfidence: Certain — clear photo.",
		},
		{
			"confidence without justification",
			"Answer: Your keys are on the counter.\nEvidence:\n- file=keys.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual\nContext: A kitchen counter.\nConfidence: High",
		},
		{
			"missing context",
			"Answer: Your keys are on the counter.\nEvidence:\n- file=keys.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual\nConfidence: High — clear photo.",
		},
		{
			"trailing commentary",
			wellFormedAnswer + "\nHope that helps!",
		},
		{
			"sections in reverse order",
			"Confidence: High — clear photo.\nContext: A kitchen counter.\nAnswer: Your keys are on the counter.\nEvidence:\n- file=keys.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual",
		},
		{
			"evidence before answer",
			"Evidence:\n- file=keys.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual\nAnswer: Your keys are on the counter.\nContext: A kitchen counter.\nConfidence: High — clear photo.",
		},
		{
			"duplicate answer line",
			"Answer: Your keys are on the counter.\nAnswer: They are by the door.\nEvidence:\n- file=keys.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual\nContext: A kitchen counter.\nConfidence: High — clear photo.",
		},
		{
			"duplicate evidence header",
			"Answer: Your keys are on the counter.\nEvidence:\nEvidence:\n- file=keys.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual\nContext: A kitchen counter.\nConfidence: High — clear photo.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := recall.ParseResponse(tc.raw, evidence)
			gt.Error(t, err)
			gt.True(t, errors.Is(err, model.ErrProtocolViolation))
		})
	}
}

func TestParseResponseCitationBySourceURI(t *testing.T) {
	evidence := testEvidence()
	raw := "Answer: Your keys are on the counter.\n" +
		"Evidence:\n" +
		"- file=gs://specei-media/keys.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual\n" +
		"Context: A kitchen counter with keys on it.\n" +
		"Confidence: Medium — only one photo backs this."

	resp, err := recall.ParseResponse(raw, evidence)
	gt.NoError(t, err)
	gt.Equal(t, resp.Answer.Confidence, model.ConfidenceMedium)
}

func TestRefusalTextIsInvariant(t *testing.T) {
	gt.Equal(t, recall.RefusalText, "I do not have sufficient verified evidence to answer this question.")
}
