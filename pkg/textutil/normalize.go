// Package textutil holds the question normalization and similarity scoring
// used to find near-duplicate questions in the answer cache.
package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"
)

var nonWord = regexp.MustCompile(`[^\w\s]+`)

var stopWords = toSet(
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has", "he", "in", "is", "it", "its",
	"of", "on", "that", "the", "to", "was", "will", "with", "what", "when", "where", "who", "how", "can",
	"could", "should", "would", "do", "does", "did", "have", "had", "i", "you", "we", "they", "me", "him",
	"her", "us", "them", "my", "your", "his", "our", "their", "this", "these", "those", "am", "been",
	"being", "but", "if", "or", "because", "until", "while", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "up", "down", "out", "off", "over", "under",
	"again", "further", "then", "once",
)

// synonyms maps a canonical word to the words treated as equivalent to it.
var synonyms = map[string][]string{
	"college":   {"university", "institution", "campus", "school"},
	"course":    {"program", "degree", "branch", "stream", "curriculum"},
	"fee":       {"cost", "tuition", "charges", "payment", "amount"},
	"admission": {"enrollment", "application", "entry", "joining"},
	"placement": {"job", "career", "recruitment", "employment"},
	"faculty":   {"teacher", "professor", "staff", "instructor"},
	"hostel":    {"accommodation", "residence", "dormitory", "housing"},
	"exam":      {"test", "assessment", "evaluation", "examination"},
}

// Normalize reduces a question to a sorted, de-duplicated bag of content
// words with synonyms expanded, joined by single spaces.
func Normalize(question string) string {
	cleaned := strings.ToLower(strings.TrimSpace(question))
	cleaned = nonWord.ReplaceAllString(cleaned, " ")
	if strings.TrimSpace(cleaned) == "" {
		return ""
	}

	seen := make(map[string]struct{})
	add := func(w string) { seen[w] = struct{}{} }

	for _, word := range tokenize(cleaned) {
		if len(word) <= 2 || stopWords[word] {
			continue
		}
		add(word)
		for key, group := range synonyms {
			if key == word {
				for _, s := range group {
					add(s)
				}
				continue
			}
			for _, s := range group {
				if s == word {
					add(key)
					break
				}
			}
		}
	}

	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}

func tokenize(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return strings.Fields(text)
	}

	tokens := doc.Tokens()
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if t := strings.TrimSpace(tok.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Similarity scores two normalized questions as 0.6*Jaccard + 0.4*cosine over
// their word sets. Empty input scores 0.
func Similarity(a, b string) float64 {
	wa, wb := toSet(strings.Fields(a)...), toSet(strings.Fields(b)...)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	intersection := 0
	for w := range wa {
		if wb[w] {
			intersection++
		}
	}
	union := len(wa) + len(wb) - intersection

	jaccard := float64(intersection) / float64(union)
	cosine := float64(intersection) / (math.Sqrt(float64(len(wa))) * math.Sqrt(float64(len(wb))))

	return jaccard*0.6 + cosine*0.4
}

// Hash is the hex SHA-256 of s. Cache entries carry the hash of their
// normalized question.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
