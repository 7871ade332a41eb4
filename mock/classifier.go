package mock

import "github.com/fwojciec/snipminer"

var _ snipminer.LanguageClassifier = (*LanguageClassifier)(nil)

// LanguageClassifier is a mock implementation of snipminer.LanguageClassifier.
type LanguageClassifier struct {
	NameFn     func() string
	ClassifyFn func(sample snipminer.LanguageSample) string
}

func (c *LanguageClassifier) Name() string {
	return c.NameFn()
}

func (c *LanguageClassifier) Classify(sample snipminer.LanguageSample) string {
	return c.ClassifyFn(sample)
}
