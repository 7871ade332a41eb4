package snipminer

// LanguageSample is the evidence available for labelling a snippet.
// Either field may be empty.
type LanguageSample struct {
	Code string
	Tags []string
}

// LanguageClassifier assigns a best-effort language label.
// The result is advisory; an empty string means no label.
type LanguageClassifier interface {
	// Name identifies the strategy (e.g., "text", "tags").
	Name() string

	// Classify returns the language for sample, or "" if none applies.
	Classify(sample LanguageSample) string
}
