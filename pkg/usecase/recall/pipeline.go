package recall

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/adapter"
	"github.com/specei/recall/pkg/model"
	"github.com/specei/recall/pkg/utils/logging"
)

//go:embed prompt/answer.md
var answerPromptRaw string

//go:embed prompt/question.md
var questionPromptRaw string

var questionPromptTmpl = template.Must(template.New("question").Parse(questionPromptRaw))

const (
	// DefaultMaxCandidates caps raw scorer output before assembly.
	DefaultMaxCandidates = 50
	// DefaultMaxEvidence caps the assembled evidence block.
	DefaultMaxEvidence = 10
)

// UseCase runs the classify → search → assemble → reason pipeline for one
// query. It holds no mutable state and is safe for concurrent queries.
type UseCase struct {
	classifier *Classifier
	searcher   Searcher
	reasoner   adapter.Reasoner

	maxCandidates int
	maxEvidence   int
	searchTimeout time.Duration
	reasonTimeout time.Duration
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClassifier replaces the default rule table.
func WithClassifier(c *Classifier) Option {
	return func(u *UseCase) {
		u.classifier = c
	}
}

// WithLimits overrides the candidate and evidence caps.
func WithLimits(maxCandidates, maxEvidence int) Option {
	return func(u *UseCase) {
		u.maxCandidates = maxCandidates
		u.maxEvidence = maxEvidence
	}
}

// WithTimeouts bounds the external search and reasoner calls. Zero means
// no bound beyond the caller's context.
func WithTimeouts(search, reason time.Duration) Option {
	return func(u *UseCase) {
		u.searchTimeout = search
		u.reasonTimeout = reason
	}
}

// New creates the recall pipeline.
func New(searcher Searcher, reasoner adapter.Reasoner, opts ...Option) *UseCase {
	u := &UseCase{
		classifier:    NewClassifier(DefaultRules()),
		searcher:      searcher,
		reasoner:      reasoner,
		maxCandidates: DefaultMaxCandidates,
		maxEvidence:   DefaultMaxEvidence,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Result is the outcome of one query-answer cycle. When Intent is not a
// memory query the rest of the fields are zero and the surrounding
// application handles the utterance as general conversation.
type Result struct {
	Intent   model.QueryIntent
	Answer   string
	Evidence *model.EvidenceBlock
	Refused  bool
}

// Ask runs the full pipeline. External failures, empty evidence and
// protocol violations all converge on the exact refusal sentence; only an
// owner scope violation or an empty query fails the call itself.
func (u *UseCase) Ask(ctx context.Context, owner model.OwnerID, query string) (*Result, error) {
	if query == "" {
		return nil, goerr.New("query is empty")
	}
	if owner == "" {
		return nil, goerr.New("owner is empty")
	}

	logger := logging.From(ctx)

	intent := u.classifier.Classify(query)
	if !intent.IsMemoryQuery {
		return &Result{Intent: intent}, nil
	}

	candidates, err := u.search(ctx, owner, query)
	if err != nil {
		if errors.Is(err, model.ErrOwnerScopeViolation) {
			return nil, err
		}
		// Degraded search is an external failure, not a user-visible error.
		logger.Warn("memory search failed, refusing", "error", err)
		return u.refuse(intent, nil), nil
	}

	evidence := Assemble(candidates, u.maxEvidence)
	if evidence.Empty() {
		// No evidence is a normal terminal state; the reasoner is never
		// invoked for it.
		return u.refuse(intent, evidence), nil
	}

	raw, err := u.reason(ctx, query, evidence)
	if err != nil {
		logger.Warn("reasoner call failed, refusing", "error", err)
		return u.refuse(intent, evidence), nil
	}

	response, err := ParseResponse(raw, evidence)
	if err != nil {
		logger.Warn("reasoner output rejected, refusing", "error", err)
		return u.refuse(intent, evidence), nil
	}

	if response.Refused {
		return u.refuse(intent, evidence), nil
	}

	return &Result{
		Intent:   intent,
		Answer:   response.Raw,
		Evidence: evidence,
	}, nil
}

func (u *UseCase) refuse(intent model.QueryIntent, evidence *model.EvidenceBlock) *Result {
	return &Result{
		Intent:   intent,
		Answer:   RefusalText,
		Evidence: evidence,
		Refused:  true,
	}
}

func (u *UseCase) search(ctx context.Context, owner model.OwnerID, query string) ([]model.RankedCandidate, error) {
	if u.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.searchTimeout)
		defer cancel()
	}

	return u.searcher.Search(ctx, owner, query, u.maxCandidates)
}

func (u *UseCase) reason(ctx context.Context, query string, evidence *model.EvidenceBlock) (string, error) {
	if u.reasonTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.reasonTimeout)
		defer cancel()
	}

	var buf bytes.Buffer
	if err := questionPromptTmpl.Execute(&buf, map[string]any{
		"Query":    query,
		"Evidence": evidence.Render(),
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute question prompt template")
	}

	return u.reasoner.Reason(ctx, answerPromptRaw, buf.String())
}
