package extract

import (
	"strings"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/pkg/logger"
)

const minReadableLen = 50

// Page is the plain-text view of a page used by the single-page and
// general-page answer strategies.
type Page struct {
	URL    string
	Title  string
	Text   string
	Images []string
}

// ReadPage extracts readable text with readability, falling back to the
// cleaned main container when readability yields too little. Text is cut to
// maxText runes and at most maxImages images are kept.
func ReadPage(html, pageURL string, maxText, maxImages int) (Page, error) {
	page := Page{URL: pageURL}
	base := parseBase(pageURL)

	article, err := readability.FromReader(strings.NewReader(html), base)
	if err == nil {
		page.Title = Clean(article.Title)
		page.Text = Clean(article.TextContent)
	} else {
		logger.Debug("Readability failed, using container text", zap.String("url", pageURL), zap.Error(err))
	}

	doc, perr := DefaultPipeline.Parse(html)
	if perr != nil {
		if page.Text == "" {
			return page, perr
		}
	} else {
		if len(page.Text) < minReadableLen {
			page.Text = DefaultPipeline.MainText(doc)
		}
		if page.Title == "" {
			page.Title = Clean(doc.Find("title").First().Text())
		}
		page.Images = extractImages(doc, base, maxImages, nil)
	}

	page.Text = Truncate(page.Text, maxText)
	return page, nil
}
