package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/metrics"
	"github.com/collegegpt/backend/internal/topic"
	"github.com/collegegpt/backend/pkg/logger"
)

const (
	genericMinLen = 20
	genericMaxLen = 100
	genericCap    = 10
)

// Dynamic runs a topic-aware selector cascade with company-name heuristics,
// then falls back to a keyword-filtered scan of paragraphs and list items.
type Dynamic struct {
	pipeline Pipeline
	rules    map[topic.Topic][]rule
	keywords map[topic.Topic][]string
}

func NewDynamic() *Dynamic {
	return &Dynamic{pipeline: DefaultPipeline, rules: dynamicRules, keywords: genericKeywords}
}

func (d *Dynamic) Name() string {
	return "dynamic"
}

func (d *Dynamic) Extract(html string, t topic.Topic, pageURL string) Content {
	c := newContent(pageURL, t, d.Name())

	doc, err := d.pipeline.Parse(html)
	if err != nil {
		c.Err = err.Error()
		return c
	}
	base := parseBase(pageURL)

	for _, r := range d.rules[t] {
		earlyStop := 0
		if r.kind == KindCompanies {
			earlyStop = 5
		}
		items := applyRule(doc, r, capFor(r.kind), earlyStop, func(el *goquery.Selection) string {
			return dynamicItem(el, r.kind, base)
		})
		if len(items) > 0 {
			c.Blocks = append(c.Blocks, Block{Type: r.kind, Title: title(r.kind), Items: items})
		}
	}

	if len(c.Blocks) == 0 {
		if items := d.generic(doc, t); len(items) > 0 {
			c.Blocks = append(c.Blocks, Block{Type: KindText, Title: "Information", Items: items})
		}
	}

	c.RawText = Truncate(d.pipeline.MainText(doc), rawTextLimit)
	c.Success = len(c.Blocks) > 0 || len(c.RawText) > rawTextMinLen
	if !c.Success {
		c.Err = "no dynamic content"
	}

	metrics.ExtractedItems.WithLabelValues(d.Name()).Observe(float64(c.ItemCount()))
	logger.Debug("Dynamic extraction finished",
		zap.String("url", pageURL),
		zap.String("topic", t.String()),
		zap.Int("blocks", len(c.Blocks)),
		zap.Bool("success", c.Success),
	)
	return c
}

func dynamicItem(el *goquery.Selection, kind string, base *url.URL) string {
	switch kind {
	case KindCompanies:
		return companyItem(el)
	case KindSubjects, KindPapers:
		if !el.Is("a") {
			return el.Text()
		}
		href, _ := el.Attr("href")
		text := Clean(el.Text())
		if strings.Contains(href, ".pdf") || strings.Contains(href, "download") || strings.Contains(text, "Download") {
			return linkItem(el, base)
		}
		return text
	case KindProfiles:
		if el.Is("tr") {
			return profileRow(el)
		}
		return el.Text()
	default:
		return el.Text()
	}
}

func (d *Dynamic) generic(doc *goquery.Document, t topic.Topic) []string {
	keywords := d.keywords[t]
	if len(keywords) == 0 {
		return nil
	}

	items := newCollector(genericMinLen, genericMaxLen, genericCap)
	doc.Find("p, div, li").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := Clean(el.Text())
		if n := utf8.RuneCountInString(text); n <= genericMinLen || n >= genericMaxLen {
			return true
		}
		if containsAny(strings.ToLower(text), keywords) {
			items.Add(text)
		}
		return !items.Full()
	})
	return items.Items()
}
