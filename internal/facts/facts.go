// Package facts derives domain facts from already-extracted content rather
// than from raw HTML.
package facts

import (
	"strings"

	"github.com/collegegpt/backend/internal/extract"
)

const maxCompanies = 50

// Companies re-scans table cells, list items and company blocks for names
// that pass the company heuristic. Cells accept the broad test; list items
// only the core legal markers. Names are unique case-insensitively and keep
// first-seen order.
func Companies(contents []extract.Content) []string {
	s := newSet(maxCompanies)

	for _, c := range contents {
		if !c.Success {
			continue
		}
		for _, t := range c.Tables {
			for _, row := range t.Rows {
				for _, cell := range row {
					if extract.IsCompanyName(cell) {
						s.add(extract.CleanCompanyName(cell))
					}
				}
			}
		}
		for _, item := range c.Lists {
			if extract.IsListedCompany(item) {
				s.add(extract.CleanCompanyName(item))
			}
		}
		for _, b := range c.Blocks {
			if b.Type != extract.KindCompanies {
				continue
			}
			for _, item := range b.Items {
				if extract.IsCompanyName(item) {
					s.add(extract.CleanCompanyName(item))
				}
			}
		}
	}

	return s.items
}

type set struct {
	limit int
	seen  map[string]struct{}
	items []string
}

func newSet(limit int) *set {
	return &set{limit: limit, seen: make(map[string]struct{})}
}

func (s *set) add(v string) {
	if v == "" || len(s.items) >= s.limit {
		return
	}
	key := strings.ToLower(v)
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, v)
}
