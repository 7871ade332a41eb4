// Package classify provides heuristic language classification for code
// snippets. Two independent strategies are offered: Text matches an ordered
// table of regular expressions against the code, and Tags maps question
// tags to language names. Chain and Union combine them explicitly.
package classify

import (
	"regexp"

	"github.com/fwojciec/snipminer"
)

// Rule associates a language with the patterns that indicate it.
type Rule struct {
	Language string
	Patterns []*regexp.Regexp
}

// Match reports whether any pattern is found in code.
func (r Rule) Match(code string) bool {
	for _, re := range r.Patterns {
		if re.MatchString(code) {
			return true
		}
	}
	return false
}

// NewRule compiles case-insensitive patterns into a Rule.
// It panics if a pattern does not compile.
func NewRule(language string, patterns ...string) Rule {
	r := Rule{Language: language, Patterns: make([]*regexp.Regexp, len(patterns))}
	for i, p := range patterns {
		r.Patterns[i] = regexp.MustCompile("(?i)" + p)
	}
	return r
}

// defaultRules is evaluated top to bottom; earlier languages win ties.
// Never modified after init.
var defaultRules = []Rule{
	NewRule("python", `def \w+\(`, `import `, `print\(`, `if __name__`),
	NewRule("javascript", `const `, `let `, `function `, `=>`, `console\.log`),
	NewRule("typescript", `interface `, `: string`, `: number`, `type `),
	NewRule("java", `public class`, `public static void`, `System\.out`),
	NewRule("c#", `namespace `, `public class`, `Console\.Write`),
	NewRule("go", `func `, `package `, `fmt\.`, `go `),
	NewRule("rust", `fn `, `let mut`, `impl `, `use `),
	NewRule("ruby", `def `, `end`, `puts `, `require `),
	NewRule("php", `<\?php`, `function `, `echo `, `\$`),
	NewRule("sql", `SELECT `, `FROM `, `WHERE `, `INSERT INTO`),
	NewRule("bash", `#!/bin/bash`, `echo `, `\$\(`, `if \[\[`),
}

// DefaultRules returns a copy of the built-in rule table in evaluation order.
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}

var _ snipminer.LanguageClassifier = (*Text)(nil)

// Text classifies code by the first rule with any matching pattern.
// It is safe for concurrent use.
type Text struct {
	rules []Rule
}

// NewText returns a Text classifier over rules, or over the default table
// when no rules are given.
func NewText(rules ...Rule) *Text {
	if len(rules) == 0 {
		return &Text{rules: defaultRules}
	}
	own := make([]Rule, len(rules))
	copy(own, rules)
	return &Text{rules: own}
}

// Name returns "text".
func (c *Text) Name() string {
	return "text"
}

// Classify returns the language of the first matching rule.
// Tags in the sample are ignored.
func (c *Text) Classify(sample snipminer.LanguageSample) string {
	return c.Detect(sample.Code)
}

// Detect returns the language of the first rule matching code, or "".
func (c *Text) Detect(code string) string {
	if code == "" {
		return ""
	}
	for _, r := range c.rules {
		if r.Match(code) {
			return r.Language
		}
	}
	return ""
}
