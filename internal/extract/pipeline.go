package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

const (
	minItemLen = 2
	maxItemLen = 500

	listCap    = 30
	companyCap = 50
	linkCap    = 20
)

// Pipeline is the cleaning stage every extractor starts from: drop noise
// elements, then locate the main content container.
type Pipeline struct {
	Noise      string
	Containers []string
}

var DefaultPipeline = Pipeline{
	Noise: "script, style, noscript, iframe, nav, footer, header, .menu, .navigation, .header, .sidebar, " +
		".ads, .advertisement, .social-media",
	Containers: []string{
		"main", ".main-content", ".content", ".page-content", ".entry-content", ".post-content",
		"article", ".article", "body",
	},
}

func (p Pipeline) Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse HTML")
	}
	if p.Noise != "" {
		doc.Find(p.Noise).Remove()
	}
	return doc, nil
}

// Container returns the first matching content container, or the whole document.
func (p Pipeline) Container(doc *goquery.Document) *goquery.Selection {
	for _, sel := range p.Containers {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection
}

func (p Pipeline) MainText(doc *goquery.Document) string {
	return Clean(p.Container(doc).Text())
}

// Clean trims s and collapses every whitespace run to one space.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// collector accumulates cleaned, length-bounded items, rejecting repeats
// case-insensitively.
type collector struct {
	min, max int
	limit    int
	seen     map[string]struct{}
	items    []string
}

// newCollector accepts items whose length is strictly between min and max.
// A limit of zero means unbounded.
func newCollector(min, max, limit int) *collector {
	return &collector{min: min, max: max, limit: limit, seen: make(map[string]struct{})}
}

func (c *collector) Add(s string) bool {
	if c.Full() {
		return false
	}
	s = Clean(s)
	n := utf8.RuneCountInString(s)
	if n <= c.min || n >= c.max {
		return false
	}
	key := strings.ToLower(s)
	if _, dup := c.seen[key]; dup {
		return false
	}
	c.seen[key] = struct{}{}
	c.items = append(c.items, s)
	return true
}

func (c *collector) Full() bool {
	return c.limit > 0 && len(c.items) >= c.limit
}

func (c *collector) Len() int {
	return len(c.items)
}

func (c *collector) Items() []string {
	return c.items
}

func parseBase(pageURL string) *url.URL {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	return u
}

// absURL resolves href against base. Protocol-relative links default to https.
func absURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
