package recall

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
	"gopkg.in/yaml.v3"
)

// Rules is the data-driven table behind the query classifier. The defaults
// are English-only; behavior for other languages or paraphrased recall
// questions is an accepted limitation of the heuristic.
type Rules struct {
	Prefixes   []string `yaml:"prefixes"`
	Substrings []string `yaml:"substrings"`
}

// DefaultRules returns the built-in recall heuristics.
func DefaultRules() Rules {
	return Rules{
		Prefixes: []string{
			"where",
			"find",
			"search",
			"what did",
			"when did",
			"when was",
			"who was",
			"show me",
			"did i",
		},
		Substrings: []string{
			"lost",
			"seen",
			"remember",
			"last time",
			"my keys",
			"left my",
		},
	}
}

// LoadRules reads classifier rules from a YAML file.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, goerr.Wrap(err, "failed to read rules file", goerr.V("path", path))
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, goerr.Wrap(err, "failed to parse rules file", goerr.V("path", path))
	}

	if len(rules.Prefixes) == 0 && len(rules.Substrings) == 0 {
		return Rules{}, goerr.New("rules file defines no prefixes or substrings", goerr.V("path", path))
	}

	return rules, nil
}

// Classifier decides whether an utterance asks about past captured
// experience. It is a coarse lexical filter: false positives only cost an
// extra retrieval pass, false negatives skip retrieval.
type Classifier struct {
	rules Rules
}

// NewClassifier creates a classifier with the given rule table.
func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// Classify always returns a value; there are no failure modes.
func (c *Classifier) Classify(text string) model.QueryIntent {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return model.QueryIntent{IsMemoryQuery: false}
	}

	for _, prefix := range c.rules.Prefixes {
		if strings.HasPrefix(lowered, prefix) {
			return model.QueryIntent{IsMemoryQuery: true}
		}
	}

	for _, substr := range c.rules.Substrings {
		if strings.Contains(lowered, substr) {
			return model.QueryIntent{IsMemoryQuery: true}
		}
	}

	return model.QueryIntent{IsMemoryQuery: false}
}
