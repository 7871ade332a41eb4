package http

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/snipminer"
)

// DefaultSiteURL is the Stack Overflow site root.
const DefaultSiteURL = "https://stackoverflow.com"

// Ensure FeedService implements snipminer.QuestionFeed.
var _ snipminer.QuestionFeed = (*FeedService)(nil)

var questionIDRe = regexp.MustCompile(`/(?:questions|q)/(\d+)`)

// FeedService reads the Atom feed of newest questions for a tag.
type FeedService struct {
	fetcher snipminer.Fetcher
	siteURL string
}

// NewFeedService creates a FeedService reading feeds from siteURL.
// If siteURL is empty, DefaultSiteURL is used.
func NewFeedService(fetcher snipminer.Fetcher, siteURL string) *FeedService {
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	return &FeedService{fetcher: fetcher, siteURL: strings.TrimSuffix(siteURL, "/")}
}

// FetchTagFeed returns feed entries for tag in feed order.
// Entries without a recognizable question link are skipped.
func (s *FeedService) FetchTagFeed(ctx context.Context, tag string, limit int) ([]snipminer.FeedEntry, error) {
	if tag == "" {
		return nil, snipminer.Errorf(snipminer.EINVALID, "feed tag required")
	}

	body, err := s.fetcher.Fetch(ctx, s.siteURL+"/feeds/tag/"+url.PathEscape(tag))
	if err != nil {
		return nil, err
	}

	entries, err := ParseFeed(body)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ParseFeed extracts question entries from an Atom document.
func ParseFeed(body string) ([]snipminer.FeedEntry, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, snipminer.Errorf(snipminer.EINVALID, "parsing feed XML: %v", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "feed" {
		return nil, snipminer.Errorf(snipminer.EINVALID, "not an Atom feed")
	}

	entries := []snipminer.FeedEntry{}
	for _, el := range root.SelectElements("entry") {
		link := ""
		if l := el.SelectElement("link"); l != nil {
			link = l.SelectAttrValue("href", "")
		}
		id := childText(el, "id")

		questionID := matchQuestionID(link)
		if questionID == 0 {
			questionID = matchQuestionID(id)
		}
		if questionID == 0 {
			continue
		}

		var tags []string
		for _, c := range el.SelectElements("category") {
			if term := c.SelectAttrValue("term", ""); term != "" {
				tags = append(tags, term)
			}
		}

		entries = append(entries, snipminer.FeedEntry{
			QuestionID: questionID,
			Title:      childText(el, "title"),
			URL:        link,
			Tags:       tags,
			Updated:    childText(el, "updated"),
		})
	}

	return entries, nil
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

func matchQuestionID(s string) int {
	m := questionIDRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
