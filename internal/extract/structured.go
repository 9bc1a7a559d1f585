package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/metrics"
	"github.com/collegegpt/backend/internal/topic"
	"github.com/collegegpt/backend/pkg/logger"
)

const (
	structuredImageLimit = 10
	rawTextLimit         = 2000
	rawTextMinLen        = 100
)

// Structured applies the per-topic selector table and returns typed blocks.
type Structured struct {
	pipeline Pipeline
	rules    map[topic.Topic][]rule
}

func NewStructured() *Structured {
	return &Structured{pipeline: DefaultPipeline, rules: structuredRules}
}

func (s *Structured) Name() string {
	return "structured"
}

func (s *Structured) Extract(html string, t topic.Topic, pageURL string) Content {
	c := newContent(pageURL, t, s.Name())

	doc, err := s.pipeline.Parse(html)
	if err != nil {
		c.Err = err.Error()
		return c
	}
	base := parseBase(pageURL)

	for _, r := range s.rules[t] {
		items := applyRule(doc, r, capFor(r.kind), structuredEarlyStop(r.kind), func(el *goquery.Selection) string {
			return structuredItem(el, r.kind, base)
		})
		if len(items) > 0 {
			c.Blocks = append(c.Blocks, Block{Type: r.kind, Title: title(r.kind), Items: items})
		}
	}

	c.Images = extractImages(doc, base, structuredImageLimit, func(alt string) bool {
		alt = strings.ToLower(alt)
		return (t != topic.None && strings.Contains(alt, t.Label())) ||
			strings.Contains(alt, "logo") || strings.Contains(alt, "company") || strings.Contains(alt, "faculty")
	})

	if len(c.Blocks) == 0 {
		container := s.pipeline.Container(doc)
		segments := newCollector(minItemLen, 300, listCap)
		container.Find("h1, h2, h3, h4, p, li, td").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			segments.Add(el.Text())
			return !segments.Full()
		})
		if segments.Len() > 0 {
			c.Blocks = append(c.Blocks, Block{Type: KindText, Title: "Information", Items: segments.Items()})
		}
		c.RawText = Truncate(Clean(container.Text()), rawTextLimit)
	}

	c.Success = len(c.Blocks) > 0 || len(c.RawText) > rawTextMinLen
	if !c.Success {
		c.Err = "no structured content"
	}

	metrics.ExtractedItems.WithLabelValues(s.Name()).Observe(float64(c.ItemCount()))
	logger.Debug("Structured extraction finished",
		zap.String("url", pageURL),
		zap.String("topic", t.String()),
		zap.Int("blocks", len(c.Blocks)),
		zap.Int("images", len(c.Images)),
	)
	return c
}

func structuredItem(el *goquery.Selection, kind string, base *url.URL) string {
	switch kind {
	case KindDownloads, KindLinks:
		return linkItem(el, base)
	case KindEmails:
		if href, ok := el.Attr("href"); ok && strings.HasPrefix(href, "mailto:") {
			return strings.TrimPrefix(href, "mailto:")
		}
		return el.Text()
	case KindPhones:
		if href, ok := el.Attr("href"); ok && strings.HasPrefix(href, "tel:") {
			return strings.TrimPrefix(href, "tel:")
		}
		return el.Text()
	case KindProfiles:
		if el.Is("tr") {
			return profileRow(el)
		}
		return el.Text()
	case KindCompanies:
		return companyItem(el)
	default:
		return el.Text()
	}
}

func structuredEarlyStop(kind string) int {
	if kind == KindCompanies || kind == KindProfiles {
		return 6
	}
	return 0
}

func capFor(kind string) int {
	switch kind {
	case KindCompanies:
		return companyCap
	case KindDownloads, KindLinks:
		return linkCap
	default:
		return listCap
	}
}

// applyRule walks a rule's selectors in priority order, stopping once the
// collector is full or holds at least earlyStop items.
func applyRule(doc *goquery.Document, r rule, limit, earlyStop int, text func(*goquery.Selection) string) []string {
	items := newCollector(minItemLen, maxItemLen, limit)
	for _, sel := range r.selectors {
		sel.find(doc).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			items.Add(text(el))
			return !items.Full()
		})
		if items.Full() || (earlyStop > 0 && items.Len() >= earlyStop) {
			break
		}
	}
	return items.Items()
}

func linkItem(el *goquery.Selection, base *url.URL) string {
	href, _ := el.Attr("href")
	text := Clean(el.Text())
	if href == "" || text == "" {
		return ""
	}
	return fmt.Sprintf("%s (%s)", text, absURL(base, href))
}

// profileRow renders a faculty table row as "name - designation (email)".
func profileRow(tr *goquery.Selection) string {
	cells := tr.ChildrenFiltered("td")
	if cells.Length() < 2 {
		return ""
	}
	name := Clean(cells.Eq(0).Text())
	designation := Clean(cells.Eq(1).Text())
	if name == "" || designation == "" {
		return ""
	}
	out := name + " - " + designation
	if cells.Length() > 2 {
		if email := Clean(cells.Eq(2).Text()); email != "" {
			out += " (" + email + ")"
		}
	}
	return out
}

func companyItem(el *goquery.Selection) string {
	text := el.Text()
	if el.Is("img") {
		alt, _ := el.Attr("alt")
		text = companyFromAlt(alt)
	}
	name := CleanCompanyName(text)
	if !IsCompanyName(name) {
		return ""
	}
	return name
}
