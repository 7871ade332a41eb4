package classify

import (
	"strings"

	"github.com/fwojciec/snipminer"
)

var languageTags = map[string]string{
	"python":     "python",
	"javascript": "javascript",
	"typescript": "typescript",
	"java":       "java",
	"c#":         "c#",
	"csharp":     "c#",
	"go":         "go",
	"golang":     "go",
	"rust":       "rust",
	"ruby":       "ruby",
	"php":        "php",
	"sql":        "sql",
	"bash":       "bash",
	"shell":      "shell",
}

var _ snipminer.LanguageClassifier = (*Tags)(nil)

// Tags classifies a snippet by the first of its tags naming a known language.
type Tags struct{}

// NewTags returns a Tags classifier.
func NewTags() *Tags {
	return &Tags{}
}

// Name returns "tags".
func (c *Tags) Name() string {
	return "tags"
}

// Classify returns the language named by the first recognized tag.
// Code in the sample is ignored.
func (c *Tags) Classify(sample snipminer.LanguageSample) string {
	return c.Detect(sample.Tags)
}

// Detect matches tags case-insensitively in order; golang maps to go and
// csharp to c#.
func (c *Tags) Detect(tags []string) string {
	for _, tag := range tags {
		if lang, ok := languageTags[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return lang
		}
	}
	return ""
}
