package recall_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/specei/recall/pkg/model"
	"github.com/specei/recall/pkg/repository"
	"github.com/specei/recall/pkg/usecase/recall"
)

// mockSearcher is a hand-rolled Searcher for pipeline tests
type mockSearcher struct {
	searchFunc func(ctx context.Context, owner model.OwnerID, query string, limit int) ([]model.RankedCandidate, error)
	calls      int
}

func (m *mockSearcher) Search(ctx context.Context, owner model.OwnerID, query string, limit int) ([]model.RankedCandidate, error) {
	m.calls++
	if m.searchFunc != nil {
		return m.searchFunc(ctx, owner, query, limit)
	}
	return nil, nil
}

// mockReasoner is a hand-rolled Reasoner for pipeline tests
type mockReasoner struct {
	reasonFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	calls      int
}

func (m *mockReasoner) Reason(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	if m.reasonFunc != nil {
		return m.reasonFunc(ctx, systemPrompt, userPrompt)
	}
	return "", errors.New("not implemented")
}

func keysStore(t *testing.T) *repository.Memory {
	t.Helper()
	repo := repository.NewMemory()
	record := &model.MemoryRecord{
		ID:            model.NewRecordID(),
		OwnerID:       "u1",
		Modality:      model.ModalityPhoto,
		CapturedAt:    time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
		IndexedAt:     time.Date(2024, 1, 5, 8, 5, 0, 0, time.UTC),
		SourceURI:     "gs://specei-media/keys.jpg",
		FileName:      "keys.jpg",
		AIDescription: "a set of keys on a kitchen counter",
	}
	gt.NoError(t, repo.PutRecord(context.Background(), record))
	return repo
}

const keysAnswer = `Answer: Your keys are on the kitchen counter.
Evidence:
- file=keys.jpg time=2024-01-05T08:00:00Z modality=photo confirmation=visual
Context: The photo shows a kitchen counter with a set of keys resting on it.
Confidence: High — a single recent photo clearly shows the keys.`

func TestPipelineAnswersFromEvidence(t *testing.T) {
	repo := keysStore(t)
	reasoner := &mockReasoner{
		reasonFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			gt.S(t, systemPrompt).Contains("ZERO GUESSING")
			gt.S(t, userPrompt).Contains("where are my keys")
			gt.S(t, userPrompt).Contains("[FILE] keys.jpg")
			return keysAnswer, nil
		},
	}

	uc := recall.New(recall.NewScorer(repo), reasoner)
	result, err := uc.Ask(context.Background(), "u1", "where are my keys")
	gt.NoError(t, err)
	gt.True(t, result.Intent.IsMemoryQuery)
	gt.True(t, !result.Refused)
	gt.Equal(t, result.Answer, keysAnswer)
	gt.A(t, result.Evidence.Entries).Length(1)
	gt.Equal(t, reasoner.calls, 1)
}

func TestPipelineRefusesForForeignOwner(t *testing.T) {
	repo := keysStore(t)
	reasoner := &mockReasoner{}

	uc := recall.New(recall.NewScorer(repo), reasoner)
	result, err := uc.Ask(context.Background(), "u2", "where are my keys")
	gt.NoError(t, err)
	gt.True(t, result.Refused)
	gt.Equal(t, result.Answer, recall.RefusalText)
	// Empty evidence short-circuits; the reasoner is never invoked.
	gt.Equal(t, reasoner.calls, 0)
}

func TestPipelineSkipsRetrievalForGeneralConversation(t *testing.T) {
	searcher := &mockSearcher{}
	reasoner := &mockReasoner{}

	uc := recall.New(searcher, reasoner)
	result, err := uc.Ask(context.Background(), "u1", "hello, how are you")
	gt.NoError(t, err)
	gt.True(t, !result.Intent.IsMemoryQuery)
	gt.True(t, !result.Refused)
	gt.Equal(t, result.Answer, "")
	gt.V(t, result.Evidence).Nil()
	gt.Equal(t, searcher.calls, 0)
	gt.Equal(t, reasoner.calls, 0)
}

func TestPipelineNoMatchMeansExactRefusal(t *testing.T) {
	searcher := &mockSearcher{} // returns no candidates
	reasoner := &mockReasoner{}

	uc := recall.New(searcher, reasoner)
	result, err := uc.Ask(context.Background(), "u1", "where are my keys")
	gt.NoError(t, err)
	gt.True(t, result.Refused)
	gt.Equal(t, result.Answer, "I do not have sufficient verified evidence to answer this question.")
	gt.Equal(t, reasoner.calls, 0)
}

func TestPipelineOwnerScopeViolationFailsTheQuery(t *testing.T) {
	searcher := &mockSearcher{
		searchFunc: func(ctx context.Context, owner model.OwnerID, query string, limit int) ([]model.RankedCandidate, error) {
			return nil, goerr.Wrap(model.ErrOwnerScopeViolation, "leaked record")
		},
	}

	uc := recall.New(searcher, &mockReasoner{})
	_, err := uc.Ask(context.Background(), "u1", "where are my keys")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrOwnerScopeViolation))
}

func TestPipelineSearchFailureDegradesToRefusal(t *testing.T) {
	searcher := &mockSearcher{
		searchFunc: func(ctx context.Context, owner model.OwnerID, query string, limit int) ([]model.RankedCandidate, error) {
			return nil, errors.New("search backend unreachable")
		},
	}
	reasoner := &mockReasoner{}

	uc := recall.New(searcher, reasoner)
	result, err := uc.Ask(context.Background(), "u1", "where are my keys")
	gt.NoError(t, err)
	gt.True(t, result.Refused)
	gt.Equal(t, result.Answer, recall.RefusalText)
	gt.Equal(t, reasoner.calls, 0)
}

func TestPipelineReasonerFailureDegradesToRefusal(t *testing.T) {
	repo := keysStore(t)
	reasoner := &mockReasoner{
		reasonFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "", errors.New("reasoner unreachable")
		},
	}

	uc := recall.New(recall.NewScorer(repo), reasoner)
	result, err := uc.Ask(context.Background(), "u1", "where are my keys")
	gt.NoError(t, err)
	gt.True(t, result.Refused)
	gt.Equal(t, result.Answer, recall.RefusalText)
}

func TestPipelineProtocolViolationDegradesToRefusal(t *testing.T) {
	repo := keysStore(t)
	reasoner := &mockReasoner{
		reasonFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "The keys are probably on the counter, I guess?", nil
		},
	}

	uc := recall.New(recall.NewScorer(repo), reasoner)
	result, err := uc.Ask(context.Background(), "u1", "where are my keys")
	gt.NoError(t, err)
	gt.True(t, result.Refused)
	gt.Equal(t, result.Answer, recall.RefusalText)
}

func TestPipelineReasonerRefusalIsNormalized(t *testing.T) {
	repo := keysStore(t)
	reasoner := &mockReasoner{
		reasonFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			// Reasoner refuses with stray whitespace; output is normalized
			// to the byte-exact sentence.
			return "  " + recall.RefusalText + "\n", nil
		},
	}

	uc := recall.New(recall.NewScorer(repo), reasoner)
	result, err := uc.Ask(context.Background(), "u1", "where are my keys")
	gt.NoError(t, err)
	gt.True(t, result.Refused)
	gt.Equal(t, result.Answer, recall.RefusalText)
}

func TestPipelineReasonerTimeoutDegradesToRefusal(t *testing.T) {
	repo := keysStore(t)
	reasoner := &mockReasoner{
		reasonFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	uc := recall.New(recall.NewScorer(repo), reasoner,
		recall.WithTimeouts(time.Second, 10*time.Millisecond))
	result, err := uc.Ask(context.Background(), "u1", "where are my keys")
	gt.NoError(t, err)
	gt.True(t, result.Refused)
	gt.Equal(t, result.Answer, recall.RefusalText)
}

func TestPipelineEmptyQueryIsAnError(t *testing.T) {
	uc := recall.New(&mockSearcher{}, &mockReasoner{})

	_, err := uc.Ask(context.Background(), "u1", "")
	gt.Error(t, err)
}

func TestPipelineCapsCandidatesBeforeAssembly(t *testing.T) {
	var gotLimit int
	searcher := &mockSearcher{
		searchFunc: func(ctx context.Context, owner model.OwnerID, query string, limit int) ([]model.RankedCandidate, error) {
			gotLimit = limit
			return nil, nil
		},
	}

	uc := recall.New(searcher, &mockReasoner{}, recall.WithLimits(25, 5))
	_, err := uc.Ask(context.Background(), "u1", "where are my keys")
	gt.NoError(t, err)
	gt.Equal(t, gotLimit, 25)
}

func TestPipelineCustomClassifier(t *testing.T) {
	searcher := &mockSearcher{}
	classifier := recall.NewClassifier(recall.Rules{Prefixes: []string{"recall"}})

	uc := recall.New(searcher, &mockReasoner{}, recall.WithClassifier(classifier))

	result, err := uc.Ask(context.Background(), "u1", "where are my keys")
	gt.NoError(t, err)
	gt.True(t, !result.Intent.IsMemoryQuery)
	gt.Equal(t, searcher.calls, 0)

	result, err = uc.Ask(context.Background(), "u1", "recall the whiteboard")
	gt.NoError(t, err)
	gt.True(t, result.Intent.IsMemoryQuery)
	gt.Equal(t, searcher.calls, 1)
	gt.True(t, result.Refused)
	gt.True(t, strings.HasPrefix(result.Answer, "I do not have"))
}
