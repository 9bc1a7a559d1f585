package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var imageExt = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg)(\?.*)?$`)

// extractImages collects absolute image URLs, honouring lazy-load data-src,
// for images whose alt text passes keep. A nil keep accepts every image.
func extractImages(doc *goquery.Document, base *url.URL, limit int, keep func(alt string) bool) []string {
	var images []string
	seen := make(map[string]struct{})

	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(src, "data:") {
			src = strings.TrimSpace(img.AttrOr("data-src", ""))
		}
		if src == "" {
			return true
		}

		abs := absURL(base, src)
		if abs == "" || !imageExt.MatchString(abs) {
			return true
		}
		if keep != nil && !keep(img.AttrOr("alt", "")) {
			return true
		}
		if _, dup := seen[abs]; dup {
			return true
		}
		seen[abs] = struct{}{}

		images = append(images, abs)
		return limit <= 0 || len(images) < limit
	})

	return images
}
