package extraction

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/williampepple1/partsearch/internal/config"
	"github.com/williampepple1/partsearch/pkg/models"
)

const (
	titleSelector       = `h2, h3, h4, .title, .name, [class*="title"], [class*="name"]`
	descriptionSelector = `.description, .desc, p, [class*="description"]`

	// MaxTitleLen and MaxDescriptionLen bound every result, in characters
	MaxTitleLen       = 150
	MaxDescriptionLen = 250

	maxOwnTextLen = 200

	// NoDescription is used when a matched element has no description text
	NoDescription = "No description available"
)

// textSource pulls one candidate string out of a matched element
type textSource func(s *goquery.Selection) string

// Sources are tried in order; the first non-empty value wins.
var (
	titleSources = []textSource{
		firstText(titleSelector),
		firstText("a"),
		firstLine,
	}
	descriptionSources = []textSource{
		firstText(descriptionSelector),
		ownText(maxOwnTextLen),
	}
)

// Terms are the search terms a candidate must mention to be accepted
type Terms struct {
	PartName   string
	PartNumber string
}

// Extractor runs the selector cascade over a search result page
type Extractor struct {
	Groups     []string
	MaxResults int
}

// NewExtractor creates a new extractor from the configured selector groups
func NewExtractor(config *config.ExtractionConfig, maxResults int) *Extractor {
	return &Extractor{
		Groups:     config.SelectorGroups,
		MaxResults: maxResults,
	}
}

// Extract applies the selector groups in priority order and returns the
// accepted results of the first group that accepts anything. Relative links
// are resolved against base, whose hostname becomes the result source.
func (e *Extractor) Extract(doc *goquery.Document, base *url.URL, terms Terms) []models.SearchResult {
	for _, group := range e.Groups {
		if results := e.extractGroup(doc, group, base, terms); len(results) > 0 {
			return results
		}
	}
	return nil
}

func (e *Extractor) extractGroup(doc *goquery.Document, selector string, base *url.URL, terms Terms) []models.SearchResult {
	var results []models.SearchResult

	matches := doc.Find(selector)
	if e.MaxResults > 0 && matches.Length() > e.MaxResults {
		matches = matches.Slice(0, e.MaxResults)
	}

	matches.Each(func(_ int, s *goquery.Selection) {
		if result, ok := extractCandidate(s, base, terms); ok {
			results = append(results, result)
		}
	})

	return results
}

// extractCandidate builds a result from one matched element and reports
// whether it passes the acceptance rule
func extractCandidate(s *goquery.Selection, base *url.URL, terms Terms) (models.SearchResult, bool) {
	title := Truncate(normalizeSpace(firstOf(s, titleSources)), MaxTitleLen)
	description := Truncate(normalizeSpace(firstOf(s, descriptionSources)), MaxDescriptionLen)

	link, ok := resolveLink(linkOf(s), base)
	if !ok {
		return models.SearchResult{}, false
	}

	if utf8.RuneCountInString(title) <= 3 || link == "" {
		return models.SearchResult{}, false
	}
	if !Mentions(title, terms) && !Mentions(description, terms) {
		return models.SearchResult{}, false
	}

	if description == "" {
		description = NoDescription
	}

	return models.SearchResult{
		Title:       title,
		URL:         link,
		Description: description,
		Source:      base.Hostname(),
	}, true
}

// Mentions reports whether text contains the part name or the part number,
// ignoring case. An empty term is contained in every text, so a search that
// leaves one term blank accepts any candidate.
func Mentions(text string, terms Terms) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, strings.ToLower(terms.PartName)) ||
		strings.Contains(lower, strings.ToLower(terms.PartNumber))
}

func firstOf(s *goquery.Selection, sources []textSource) string {
	for _, source := range sources {
		if text := source(s); text != "" {
			return text
		}
	}
	return ""
}

func firstText(selector string) textSource {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.Find(selector).First().Text())
	}
}

func firstLine(s *goquery.Selection) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s.Text()), "\n")
	return line
}

// ownText returns the element's direct text nodes, without its descendants' text
func ownText(limit int) textSource {
	return func(s *goquery.Selection) string {
		if len(s.Nodes) == 0 {
			return ""
		}
		var sb strings.Builder
		for c := s.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		return Truncate(strings.TrimSpace(sb.String()), limit)
	}
}

func linkOf(s *goquery.Selection) string {
	if href := s.Find("a").First().AttrOr("href", ""); href != "" {
		return href
	}
	return s.AttrOr("href", "")
}

// resolveLink makes link absolute against base. Links already starting with
// "http" are kept verbatim.
func resolveLink(link string, base *url.URL) (string, bool) {
	if link == "" || strings.HasPrefix(link, "http") {
		return link, true
	}
	ref, err := base.Parse(link)
	if err != nil {
		return "", false
	}
	return ref.String(), true
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n characters
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
