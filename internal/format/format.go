// Package format serializes extracted pages into the plain-text context
// handed to the language model. The output is one-way: numbered items can be
// read back as text, but not as typed structures.
package format

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/collegegpt/backend/internal/extract"
)

const (
	maxTableRows  = 50
	maxListItems  = 30
	maxLinks      = 20
	maxParagraphs = 10
	maxRawText    = 1000
)

var numbered = regexp.MustCompile(`^(\d+)\. (.*)$`)

// Format renders each page under a header naming its URL, topic and scrape
// time. Categories appear as tables, lists, blocks, links, then paragraphs;
// paragraphs are only emitted when the page had no tables. Failed pages are
// annotated with their error instead of being dropped.
func Format(pages []extract.Content) string {
	var b strings.Builder
	for _, p := range pages {
		if !p.Success {
			writeFailure(&b, p)
			continue
		}
		writePage(&b, p)
	}
	return b.String()
}

func writeFailure(b *strings.Builder, p extract.Content) {
	msg := p.Err
	if msg == "" {
		msg = "Unknown error"
	}
	fmt.Fprintf(b, "\n\nFAILED TO SCRAPE %s\nError: %s\n", p.URL, msg)
}

func writePage(b *strings.Builder, p extract.Content) {
	fmt.Fprintf(b, "\n\n=== LIVE DATA FROM %s ===\n", p.URL)
	fmt.Fprintf(b, "Topic: %s\n", strings.ToUpper(p.Topic.Label()))
	fmt.Fprintf(b, "Scraped: %s\n", p.ScrapedAt.Format(time.RFC1123))
	fmt.Fprintf(b, "Content Length: %d characters\n\n", p.Length())

	if len(p.Tables) > 0 {
		fmt.Fprintf(b, "TABLES FOUND (%d):\n\n", len(p.Tables))
		for i, t := range p.Tables {
			fmt.Fprintf(b, "Table %d:\n", i+1)
			if len(t.Headers) > 0 {
				fmt.Fprintf(b, "Headers: %s\n", strings.Join(t.Headers, " | "))
			}
			fmt.Fprintf(b, "Data Rows (%d):\n", len(t.Rows))
			for j, row := range t.Rows {
				if j >= maxTableRows {
					break
				}
				fmt.Fprintf(b, "%d. %s\n", j+1, strings.Join(row, " | "))
			}
			b.WriteString("\n")
		}
	}

	if len(p.Lists) > 0 {
		fmt.Fprintf(b, "LISTS FOUND (%d):\n", len(p.Lists))
		writeNumbered(b, head(p.Lists, maxListItems))
		b.WriteString("\n")
	}

	for _, blk := range p.Blocks {
		if len(blk.Items) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s:\n", strings.ToUpper(blk.Title))
		writeNumbered(b, blk.Items)
		b.WriteString("\n")
	}

	if len(p.Links) > 0 {
		links := p.Links
		if len(links) > maxLinks {
			links = links[:maxLinks]
		}
		fmt.Fprintf(b, "IMPORTANT LINKS FOUND (%d):\n", len(links))
		for i, l := range links {
			fmt.Fprintf(b, "%d. %s (%s)\n", i+1, l.Text, l.URL)
		}
		b.WriteString("\n")
	}

	if len(p.Tables) == 0 && len(p.Paragraphs) > 0 {
		fmt.Fprintf(b, "TEXT CONTENT FOUND (%d):\n", len(p.Paragraphs))
		for i, para := range head(p.Paragraphs, maxParagraphs) {
			fmt.Fprintf(b, "%d. %s\n\n", i+1, para)
		}
	}

	if !p.HasStructured() && p.RawText != "" {
		fmt.Fprintf(b, "PAGE TEXT:\n%s\n", extract.Truncate(p.RawText, maxRawText))
	}
}

func writeNumbered(b *strings.Builder, items []string) {
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// ParseNumberedList returns the text of every "N. item" line in order.
func ParseNumberedList(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if m := numbered.FindStringSubmatch(line); m != nil {
			items = append(items, m[2])
		}
	}
	return items
}

// Companies renders a numbered company list for the prompt.
func Companies(names []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "COMPANIES IDENTIFIED (%d):\n", len(names))
	writeNumbered(&b, names)
	return b.String()
}
