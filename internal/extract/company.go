package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	legalMarkers      = []string{"Ltd", "Technologies", "Systems", "Solutions", "Pvt", "Inc", "Corp", "Software", "Consulting"}
	listLegalMarkers  = legalMarkers[:5]
	capitalizedPhrase = regexp.MustCompile(`^[A-Z][a-zA-Z\s&.\-]+$`)
	bulletPrefix      = regexp.MustCompile(`^(•|\*|-|\d+\.)\s*`)
	logoWords         = regexp.MustCompile(`(?i)logo|image|company`)
)

// navigationText lists menu and chrome labels that look like proper nouns but
// never name a company.
var navigationText = map[string]struct{}{}

func init() {
	for _, s := range []string{
		"home", "about", "about us", "contact", "contact us", "gallery", "login", "logout", "register",
		"sign in", "sign up", "menu", "search", "read more", "more", "view all", "view more", "click here",
		"next", "previous", "prev", "back", "top", "back to top", "skip to content", "sitemap",
		"privacy policy", "terms", "terms and conditions", "news", "events", "news & events", "downloads",
		"admissions", "academics", "departments", "administration", "examination", "exam section",
		"faculty", "placements", "t&p cell", "training & placement", "training and placement", "alumni",
		"internships", "results", "notifications", "circulars", "careers", "apply now", "enquiry",
		"facilities", "library", "hostel", "transport", "research", "campus life", "student corner",
		"mandatory disclosure", "nirf", "naac", "iqac", "aicte", "rti", "grievance",
	} {
		navigationText[s] = struct{}{}
	}
}

// CleanCompanyName strips list bullets and numbering from a candidate name.
func CleanCompanyName(s string) string {
	return strings.TrimSpace(bulletPrefix.ReplaceAllString(Clean(s), ""))
}

func HasLegalMarker(s string) bool {
	return containsAny(s, legalMarkers)
}

// IsNavigationText reports whether s is a site menu label.
func IsNavigationText(s string) bool {
	_, ok := navigationText[strings.ToLower(Clean(s))]
	return ok
}

// IsCompanyName applies the free-text company heuristic: a legal-entity
// marker or a short capitalized phrase, never a navigation label or URL.
func IsCompanyName(s string) bool {
	s = CleanCompanyName(s)
	if !plausibleName(s) {
		return false
	}
	if HasLegalMarker(s) {
		return true
	}
	return capitalizedPhrase.MatchString(s) && len(strings.Fields(s)) <= 6
}

// IsListedCompany is the stricter test for list items, which only trusts the
// core legal markers.
func IsListedCompany(s string) bool {
	s = CleanCompanyName(s)
	return plausibleName(s) && containsAny(s, listLegalMarkers)
}

func plausibleName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n <= minItemLen || n >= 100 {
		return false
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "http") || strings.Contains(lower, "www") {
		return false
	}
	return !IsNavigationText(s)
}

// companyFromAlt derives a name from a logo's alt text.
func companyFromAlt(alt string) string {
	return Clean(logoWords.ReplaceAllString(alt, ""))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
