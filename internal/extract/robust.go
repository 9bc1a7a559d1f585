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

// Robust harvests every table, list item, link and paragraph without relying
// on site-specific markup.
type Robust struct {
	pipeline Pipeline
}

func NewRobust() *Robust {
	return &Robust{pipeline: DefaultPipeline}
}

func (r *Robust) Name() string {
	return "robust"
}

func (r *Robust) Extract(html string, t topic.Topic, pageURL string) Content {
	c := newContent(pageURL, t, r.Name())

	doc, err := r.pipeline.Parse(html)
	if err != nil {
		c.Err = err.Error()
		return c
	}
	base := parseBase(pageURL)

	c.Tables = extractTables(doc)
	c.Lists = extractListItems(doc)
	c.Links = extractImportantLinks(doc, base)
	c.Paragraphs = extractParagraphs(doc)
	c.Success = c.HasStructured()
	if !c.Success {
		c.Err = "no extractable content"
	}

	metrics.ExtractedItems.WithLabelValues(r.Name()).Observe(float64(c.ItemCount()))
	logger.Debug("Robust extraction finished",
		zap.String("url", pageURL),
		zap.Int("tables", len(c.Tables)),
		zap.Int("lists", len(c.Lists)),
		zap.Int("links", len(c.Links)),
		zap.Int("paragraphs", len(c.Paragraphs)),
	)
	return c
}

// extractTables reads each table into a grid. The header row comes from
// thead, or from a leading row made only of th cells, and is never repeated
// among the data rows.
func extractTables(doc *goquery.Document) []Table {
	var tables []Table

	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		var t Table
		first := true

		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if !tr.Closest("table").IsSelection(tbl) {
				return
			}

			isHeader := tr.Parent().Is("thead") ||
				(first && tr.ChildrenFiltered("th").Length() > 0 && tr.ChildrenFiltered("td").Length() == 0)
			first = false

			cells := rowCells(tr)
			if isHeader && len(t.Headers) == 0 {
				t.Headers = cells
				return
			}
			if hasText(cells) {
				t.Rows = append(t.Rows, cells)
			}
		})

		if len(t.Rows) > 0 {
			tables = append(tables, t)
		}
	})

	return tables
}

// rowCells keeps blank cells so columns stay aligned with the header, and
// cuts each cell below maxItemLen.
func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, Truncate(Clean(cell.Text()), maxItemLen-1))
	})
	return cells
}

func hasText(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return true
		}
	}
	return false
}

func extractListItems(doc *goquery.Document) []string {
	items := newCollector(minItemLen, maxItemLen, 0)
	doc.Find("ul li, ol li").Each(func(_ int, li *goquery.Selection) {
		items.Add(li.Text())
	})
	return items.Items()
}

// extractImportantLinks keeps anchors that point at documents or carry a
// descriptive label.
func extractImportantLinks(doc *goquery.Document, base *url.URL) []Link {
	var links []Link
	seen := make(map[string]struct{})

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := Clean(a.Text())
		href, _ := a.Attr("href")
		if utf8.RuneCountInString(text) <= minItemLen || utf8.RuneCountInString(text) >= maxItemLen {
			return true
		}
		if strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return true
		}

		abs := absURL(base, href)
		if abs == "" || !isImportantLink(text, abs) {
			return true
		}

		key := strings.ToLower(text + " " + abs)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		links = append(links, Link{Text: text, URL: abs})
		return len(links) < linkCap
	})

	return links
}

func isImportantLink(text, href string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "download") ||
		strings.Contains(lower, "pdf") ||
		strings.HasSuffix(strings.ToLower(href), ".pdf") ||
		utf8.RuneCountInString(text) > 5
}

func extractParagraphs(doc *goquery.Document) []string {
	paragraphs := newCollector(20, 1000, 0)
	doc.Find("p, div.content, div.text, .description").Each(func(_ int, s *goquery.Selection) {
		paragraphs.Add(s.Text())
	})
	return paragraphs.Items()
}
