// Package extract turns fetched HTML into topic-shaped content. Three
// strategies share one cleaning pipeline and differ in how hard they lean on
// page structure: Robust harvests every table, list, link and paragraph;
// Structured applies per-topic selector tables; Dynamic adds company-name
// heuristics and a keyword-filtered scan when no selector matches.
package extract

import (
	"time"

	"github.com/collegegpt/backend/internal/topic"
)

type Table struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Block is a typed unit produced by the selector-driven extractors, such as
// a company list, faculty profiles or downloadable papers.
type Block struct {
	Type  string   `json:"type"`
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type Content struct {
	URL        string      `json:"url"`
	Topic      topic.Topic `json:"topic"`
	Extractor  string      `json:"extractor"`
	Tables     []Table     `json:"tables,omitempty"`
	Lists      []string    `json:"lists,omitempty"`
	Links      []Link      `json:"links,omitempty"`
	Paragraphs []string    `json:"paragraphs,omitempty"`
	Blocks     []Block     `json:"blocks,omitempty"`
	RawText    string      `json:"rawText,omitempty"`
	Images     []string    `json:"images,omitempty"`
	Success    bool        `json:"success"`
	Err        string      `json:"error,omitempty"`
	ScrapedAt  time.Time   `json:"scrapedAt"`
}

type Extractor interface {
	Name() string
	Extract(html string, t topic.Topic, pageURL string) Content
}

// HasStructured reports whether any typed category is non-empty.
func (c Content) HasStructured() bool {
	return len(c.Tables) > 0 || len(c.Lists) > 0 || len(c.Links) > 0 || len(c.Paragraphs) > 0 || len(c.Blocks) > 0
}

func (c Content) ItemCount() int {
	n := len(c.Lists) + len(c.Links) + len(c.Paragraphs)
	for _, t := range c.Tables {
		n += len(t.Rows)
	}
	for _, b := range c.Blocks {
		n += len(b.Items)
	}
	return n
}

// Length is the number of characters of extracted text.
func (c Content) Length() int {
	n := len(c.RawText)
	for _, t := range c.Tables {
		for _, h := range t.Headers {
			n += len(h)
		}
		for _, row := range t.Rows {
			for _, cell := range row {
				n += len(cell)
			}
		}
	}
	for _, s := range c.Lists {
		n += len(s)
	}
	for _, l := range c.Links {
		n += len(l.Text) + len(l.URL)
	}
	for _, s := range c.Paragraphs {
		n += len(s)
	}
	for _, b := range c.Blocks {
		for _, s := range b.Items {
			n += len(s)
		}
	}
	return n
}

// Failed builds the content record for a page that could not be fetched or parsed.
func Failed(pageURL string, t topic.Topic, extractor, msg string) Content {
	return Content{
		URL:       pageURL,
		Topic:     t,
		Extractor: extractor,
		Err:       msg,
		ScrapedAt: time.Now(),
	}
}

func newContent(pageURL string, t topic.Topic, extractor string) Content {
	return Content{URL: pageURL, Topic: t, Extractor: extractor, ScrapedAt: time.Now()}
}
