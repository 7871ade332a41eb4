// Package goquery implements the Stack Overflow HTML structure parser
// on top of github.com/PuerkitoBio/goquery.
package goquery

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/snipminer"
	"golang.org/x/net/html"
)

// DefaultBaseURL is the site root used to build deep links.
const DefaultBaseURL = "https://stackoverflow.com"

// Conventions holds the class-name and anchor patterns that identify page structure.
// Class patterns are matched against each individual class of an element.
type Conventions struct {
	Summary      *regexp.Regexp // search result container (div)
	TitleLink    *regexp.Regexp // question title link (a)
	VoteCount    *regexp.Regexp // vote count (span)
	Answer       *regexp.Regexp // answer container (div)
	Tag          *regexp.Regexp // question tag (a)
	QuestionPath *regexp.Regexp // captures the question id from a link path
	AnswerAnchor *regexp.Regexp // captures the answer id from a named anchor
}

// DefaultConventions returns the patterns used by Stack Overflow markup.
func DefaultConventions() Conventions {
	return Conventions{
		Summary:      regexp.MustCompile(`question-summary`),
		TitleLink:    regexp.MustCompile(`question-hyperlink`),
		VoteCount:    regexp.MustCompile(`vote-count-post`),
		Answer:       regexp.MustCompile(`answer`),
		Tag:          regexp.MustCompile(`^post-tag$`),
		QuestionPath: regexp.MustCompile(`/questions/(\d+)`),
		AnswerAnchor: regexp.MustCompile(`answer-(\d+)`),
	}
}

// Ensure QuestionParser implements snipminer.QuestionParser at compile time.
var _ snipminer.QuestionParser = (*QuestionParser)(nil)

// QuestionParser extracts snippet fragments from search result pages and
// question pages. Missing optional structure is never an error: malformed
// containers are skipped and missing values take documented defaults.
type QuestionParser struct {
	base        *url.URL
	conventions Conventions
}

// Option configures a QuestionParser.
type Option func(*QuestionParser)

// WithConventions overrides the structural patterns.
func WithConventions(c Conventions) Option {
	return func(p *QuestionParser) {
		p.conventions = c
	}
}

// NewQuestionParser creates a parser that builds links relative to baseURL.
// An empty or unparseable baseURL falls back to DefaultBaseURL.
func NewQuestionParser(baseURL string, opts ...Option) *QuestionParser {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if baseURL == "" || err != nil || base.Host == "" {
		base, _ = url.Parse(DefaultBaseURL)
	}

	p := &QuestionParser{
		base:        base,
		conventions: DefaultConventions(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseSearchResults returns a question fragment for each result container
// with a title link pointing at a question. At most limit containers are
// examined (all if limit <= 0). Code is always empty.
func (p *QuestionParser) ParseSearchResults(rawHTML string, limit int) ([]snipminer.SnippetFragment, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	containers := p.outermost(doc.Find("div"), p.conventions.Summary)
	if limit > 0 && containers.Length() > limit {
		containers = containers.Slice(0, limit)
	}

	var frags []snipminer.SnippetFragment
	containers.Each(func(_ int, result *goquery.Selection) {
		link := findByClass(result.Find("a"), p.conventions.TitleLink)
		if link.Length() == 0 {
			return
		}

		href, _ := link.Attr("href")
		m := p.conventions.QuestionPath.FindStringSubmatch(href)
		if m == nil {
			return
		}
		questionID, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}

		frags = append(frags, snipminer.SnippetFragment{
			Kind:          snipminer.FragmentQuestion,
			QuestionID:    questionID,
			QuestionTitle: strings.TrimSpace(link.Text()),
			AnswerID:      questionID,
			Votes:         p.votes(result),
			URL:           p.resolve(href),
			Tags:          p.tags(result),
		})
	})

	return frags, nil
}

// ParseQuestionPage returns an answer fragment for each code element of at
// least snipminer.MinCodeLength characters inside an answer container.
func (p *QuestionParser) ParseQuestionPage(rawHTML string, questionID int) ([]snipminer.SnippetFragment, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(findByClass(doc.Find("a"), p.conventions.TitleLink).Text())
	tags := p.tags(doc.Selection)

	var frags []snipminer.SnippetFragment
	p.outermost(doc.Find("div"), p.conventions.Answer).Each(func(idx int, answer *goquery.Selection) {
		answer.Find("code").Each(func(_ int, code *goquery.Selection) {
			text := strings.TrimSpace(code.Text())
			if utf8.RuneCountInString(text) < snipminer.MinCodeLength {
				return
			}

			answerID, votes := idx+1, 0
			if owner, id, ok := p.owner(code); ok {
				answerID, votes = id, p.votes(owner)
			} else {
				votes = p.votes(answer)
			}

			frags = append(frags, snipminer.SnippetFragment{
				Kind:          snipminer.FragmentAnswer,
				QuestionID:    questionID,
				QuestionTitle: title,
				AnswerID:      answerID,
				Code:          text,
				Votes:         votes,
				URL:           p.answerURL(questionID, answerID),
				Tags:          tags,
			})
		})
	})

	return frags, nil
}

// votes reads the first vote count in sel, defaulting to 0.
func (p *QuestionParser) votes(sel *goquery.Selection) int {
	elem := findByClass(sel.Find("span"), p.conventions.VoteCount)
	if elem.Length() == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(elem.Text()))
	if err != nil {
		return 0
	}
	return n
}

// owner returns the nearest answer container enclosing code whose answer
// anchors all name a single id. Containers holding several answers, such as
// a list wrapper, are skipped.
func (p *QuestionParser) owner(code *goquery.Selection) (*goquery.Selection, int, bool) {
	containers := findAllByClass(code.ParentsFiltered("div"), p.conventions.Answer)
	for i := range containers.Length() {
		c := containers.Eq(i)
		ids := p.anchorIDs(c)
		if len(ids) == 0 {
			continue
		}
		if len(ids) > 1 {
			return nil, 0, false
		}
		return c, ids[0], true
	}
	return nil, 0, false
}

// anchorIDs returns the distinct answer ids named by anchors within sel.
func (p *QuestionParser) anchorIDs(sel *goquery.Selection) []int {
	var ids []int
	seen := make(map[int]bool)
	sel.Find("a[name]").Each(func(_ int, a *goquery.Selection) {
		name, _ := a.Attr("name")
		m := p.conventions.AnswerAnchor.FindStringSubmatch(name)
		if m == nil {
			return
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			return
		}
		seen[n] = true
		ids = append(ids, n)
	})
	return ids
}

// tags collects distinct tag names within sel in document order.
func (p *QuestionParser) tags(sel *goquery.Selection) []string {
	var tags []string
	seen := make(map[string]bool)
	findAllByClass(sel.Find("a"), p.conventions.Tag).Each(func(_ int, a *goquery.Selection) {
		tag := strings.TrimSpace(a.Text())
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	})
	return tags
}

// outermost filters sel to elements with a class matching re that are not
// nested inside another such element.
func (p *QuestionParser) outermost(sel *goquery.Selection, re *regexp.Regexp) *goquery.Selection {
	matched := findAllByClass(sel, re)
	return matched.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return findAllByClass(s.ParentsFiltered("div"), re).Length() == 0
	})
}

func (p *QuestionParser) answerURL(questionID, answerID int) string {
	return p.base.String() + "/questions/" + strconv.Itoa(questionID) + "#answer-" + strconv.Itoa(answerID)
}

// resolve resolves href against the base URL.
func (p *QuestionParser) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return p.base.String() + href
	}
	return p.base.ResolveReference(ref).String()
}

// parseDocument builds a goquery document from raw HTML.
func parseDocument(rawHTML string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, snipminer.Errorf(snipminer.EINVALID, "failed to parse HTML: %v", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// findByClass returns the first element of sel with a class matching re.
func findByClass(sel *goquery.Selection, re *regexp.Regexp) *goquery.Selection {
	return findAllByClass(sel, re).First()
}

// findAllByClass returns the elements of sel with any class matching re.
func findAllByClass(sel *goquery.Selection, re *regexp.Regexp) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasClassMatching(s, re)
	})
}

// hasClassMatching checks each class of the element against re.
func hasClassMatching(s *goquery.Selection, re *regexp.Regexp) bool {
	class, ok := s.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(class) {
		if re.MatchString(c) {
			return true
		}
	}
	return false
}
