package snipminer

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// SourceStackOverflow is the snippet ID prefix for Stack Overflow records.
const SourceStackOverflow = "so"

// MinCodeLength is the shortest code sample, in characters, kept from an answer.
const MinCodeLength = 20

// CodeSnippet is a single extracted code sample with its provenance.
type CodeSnippet struct {
	SnippetID     string `json:"snippet_id"`
	QuestionID    int    `json:"question_id"`
	QuestionTitle string `json:"question_title"`
	AnswerID      int    `json:"answer_id"`
	Code          string `json:"code"`

	// Language is the classifier's advisory label. Empty means unclassified.
	Language string `json:"language,omitempty"`

	Votes     int       `json:"votes"`
	URL       string    `json:"url"`
	Tags      []string  `json:"tags"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Validate returns an error if the snippet contains invalid fields.
func (s *CodeSnippet) Validate() error {
	if s.SnippetID == "" {
		return Errorf(EINVALID, "snippet ID required")
	}
	if s.QuestionID <= 0 {
		return Errorf(EINVALID, "snippet %s: question ID required", s.SnippetID)
	}
	return nil
}

// FragmentKind distinguishes what a parsed fragment was extracted from.
type FragmentKind int

const (
	// FragmentQuestion is a search-result entry. It carries no code.
	FragmentQuestion FragmentKind = iota
	// FragmentAnswer is a code element inside an answer.
	FragmentAnswer
)

// SnippetFragment is a partially filled snippet produced by a QuestionParser.
type SnippetFragment struct {
	Kind          FragmentKind
	QuestionID    int
	QuestionTitle string
	AnswerID      int
	Code          string
	Votes         int
	URL           string
	Tags          []string
}

// ID returns the composite snippet ID for the fragment:
// so_{questionID} for questions and so_{questionID}_{answerID} for answers.
func (f SnippetFragment) ID() string {
	if f.Kind == FragmentAnswer {
		return SnippetID(SourceStackOverflow, f.QuestionID, f.AnswerID)
	}
	return SnippetID(SourceStackOverflow, f.QuestionID)
}

// SnippetID builds a composite key of the form prefix_questionID[_answerID].
func SnippetID(prefix string, questionID int, answerID ...int) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('_')
	b.WriteString(strconv.Itoa(questionID))
	for _, id := range answerID {
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// AssembleSnippet merges a parsed fragment, a classification result and
// static metadata into a final record. Values are taken as given.
func AssembleSnippet(frag SnippetFragment, language, snippetID string, scrapedAt time.Time) *CodeSnippet {
	tags := make([]string, len(frag.Tags))
	copy(tags, frag.Tags)

	return &CodeSnippet{
		SnippetID:     snippetID,
		QuestionID:    frag.QuestionID,
		QuestionTitle: frag.QuestionTitle,
		AnswerID:      frag.AnswerID,
		Code:          frag.Code,
		Language:      language,
		Votes:         frag.Votes,
		URL:           frag.URL,
		Tags:          tags,
		ScrapedAt:     scrapedAt,
	}
}

// QuestionParser extracts snippet fragments from Q&A site HTML.
type QuestionParser interface {
	// ParseSearchResults returns one question fragment per well-formed
	// result container, considering at most limit containers (all if limit <= 0).
	ParseSearchResults(html string, limit int) ([]SnippetFragment, error)

	// ParseQuestionPage returns one answer fragment per code element
	// long enough to keep.
	ParseQuestionPage(html string, questionID int) ([]SnippetFragment, error)
}

// SnippetWriter writes snippets to an output sink.
type SnippetWriter interface {
	WriteSnippets(ctx context.Context, snippets []*CodeSnippet) error
}

// SnippetService represents a service for managing stored snippets.
type SnippetService interface {
	// WriteSnippets inserts snippets, replacing any with the same ID.
	SnippetWriter

	// FindSnippetByID retrieves a snippet by ID.
	// Returns ENOTFOUND if snippet does not exist.
	FindSnippetByID(ctx context.Context, id string) (*CodeSnippet, error)

	// FindSnippets retrieves snippets matching the filter.
	FindSnippets(ctx context.Context, filter SnippetFilter) ([]*CodeSnippet, error)

	// DeleteSnippet permanently removes a snippet.
	// Returns ENOTFOUND if snippet does not exist.
	DeleteSnippet(ctx context.Context, id string) error
}

// SnippetFilter represents a filter for FindSnippets.
type SnippetFilter struct {
	QuestionID *int    `json:"questionId"`
	Language   *string `json:"language"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
