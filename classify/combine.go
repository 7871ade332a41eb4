package classify

import (
	"strings"

	"github.com/fwojciec/snipminer"
)

var _ snipminer.LanguageClassifier = (*Chained)(nil)

// Chained asks each strategy in order and keeps the first answer.
type Chained struct {
	strategies []snipminer.LanguageClassifier
}

// Chain returns a classifier whose precedence is the argument order.
func Chain(strategies ...snipminer.LanguageClassifier) *Chained {
	return &Chained{strategies: strategies}
}

// Name joins the strategy names with ">" to show precedence, e.g. "text>tags".
func (c *Chained) Name() string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return strings.Join(names, ">")
}

// Classify returns the first non-empty strategy result.
func (c *Chained) Classify(sample snipminer.LanguageSample) string {
	for _, s := range c.strategies {
		if lang := s.Classify(sample); lang != "" {
			return lang
		}
	}
	return ""
}

// Match is one strategy's answer for a sample.
type Match struct {
	Strategy string
	Language string
}

// Union returns every non-empty strategy answer in strategy order.
// No strategy is preferred and no score is attached.
func Union(sample snipminer.LanguageSample, strategies ...snipminer.LanguageClassifier) []Match {
	var matches []Match
	for _, s := range strategies {
		if lang := s.Classify(sample); lang != "" {
			matches = append(matches, Match{Strategy: s.Name(), Language: lang})
		}
	}
	return matches
}

// Default returns the text strategy backed by tags.
func Default() *Chained {
	return Chain(NewText(), NewTags())
}
