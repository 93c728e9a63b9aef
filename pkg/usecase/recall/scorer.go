package recall

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
	"github.com/specei/recall/pkg/repository"
)

// Searcher produces ranked candidates for a query, scoped to one owner.
// The in-process Scorer below is the default implementation; a remote
// full-text search facility can replace it without touching the assembly
// or protocol layers.
type Searcher interface {
	Search(ctx context.Context, owner model.OwnerID, query string, limit int) ([]model.RankedCandidate, error)
}

// Scorer ranks memory records by TF-IDF term overlap against the query.
// Each record contributes up to one candidate per text surface; records
// with no matching term on any surface are omitted, not scored zero.
type Scorer struct {
	repo repository.Repository
}

// NewScorer creates a scorer reading from the given repository.
func NewScorer(repo repository.Repository) *Scorer {
	return &Scorer{repo: repo}
}

// Search ranks the owner's records against the query. Results are strictly
// descending by relevance; equal scores break by CapturedAt, most recent
// first. limit <= 0 means no cap.
func (s *Scorer) Search(ctx context.Context, owner model.OwnerID, query string, limit int) ([]model.RankedCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.New("query is empty")
	}

	records, err := s.repo.ListRecords(ctx, owner)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list records", goerr.V("owner", owner))
	}

	// A record outside the owner scope is an upstream bug, not something
	// to filter quietly.
	for _, record := range records {
		if record.OwnerID != owner {
			return nil, goerr.Wrap(model.ErrOwnerScopeViolation, "record crossed owner boundary",
				goerr.V("record", record.ID), goerr.V("owner", owner), goerr.V("record_owner", record.OwnerID))
		}
	}

	queryTerms := uniqueTerms(tokenize(query))
	if len(queryTerms) == 0 {
		return nil, nil
	}

	type surfaceRef struct {
		record  *model.MemoryRecord
		surface model.Surface
		terms   []string
	}

	var surfaces []surfaceRef
	df := make(map[string]int)
	for _, record := range records {
		if !record.Searchable() {
			continue
		}
		for _, surface := range record.Surfaces() {
			terms := tokenize(surface.Text)
			if len(terms) == 0 {
				continue
			}
			surfaces = append(surfaces, surfaceRef{record: record, surface: surface, terms: terms})
			for _, term := range uniqueTerms(terms) {
				df[term]++
			}
		}
	}

	total := float64(len(surfaces))
	candidates := make([]model.RankedCandidate, 0, len(surfaces))
	for _, ref := range surfaces {
		counts := make(map[string]int, len(ref.terms))
		for _, term := range ref.terms {
			counts[term]++
		}

		var score float64
		for _, term := range queryTerms {
			n, ok := counts[term]
			if !ok {
				continue
			}
			tf := float64(n) / float64(len(ref.terms))
			idf := math.Log(1 + total/float64(1+df[term]))
			score += tf * idf
		}

		if score <= 0 {
			continue
		}

		candidates = append(candidates, model.RankedCandidate{
			Record:      ref.record,
			MatchSource: ref.surface.Source,
			MatchedText: ref.surface.Text,
			Relevance:   score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Relevance != candidates[j].Relevance {
			return candidates[i].Relevance > candidates[j].Relevance
		}
		return candidates[i].Record.CapturedAt.After(candidates[j].Record.CapturedAt)
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// stopwords are dropped from both queries and surfaces. Interrogatives are
// here because they are recall triggers, not content.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "of": true, "to": true, "in": true, "on": true,
	"at": true, "and": true, "or": true, "my": true, "me": true, "i": true,
	"it": true, "its": true, "did": true, "do": true, "does": true,
	"where": true, "when": true, "what": true, "who": true, "how": true,
	"find": true, "search": true, "show": true,
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 || stopwords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	unique := make([]string, 0, len(terms))
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true
		unique = append(unique, term)
	}
	return unique
}
