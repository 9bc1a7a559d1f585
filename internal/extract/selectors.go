package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/collegegpt/backend/internal/topic"
)

// selector is a CSS selector with an optional case-sensitive text filter,
// standing in for the jQuery-style :contains() pseudo-class.
type selector struct {
	css      string
	contains string
}

func css(s string) selector { return selector{css: s} }

func containing(s, text string) selector { return selector{css: s, contains: text} }

func (s selector) find(doc *goquery.Document) *goquery.Selection {
	found := doc.Find(s.css)
	if s.contains == "" {
		return found
	}
	return found.FilterFunction(func(_ int, el *goquery.Selection) bool {
		return strings.Contains(el.Text(), s.contains)
	})
}

// Content kinds produced by the selector tables.
const (
	KindCompanies     = "companies"
	KindStudents      = "students"
	KindStatistics    = "statistics"
	KindProfiles      = "profiles"
	KindNames         = "names"
	KindDesignations  = "designations"
	KindEmails        = "emails"
	KindSubjects      = "subjects"
	KindDownloads     = "downloads"
	KindPapers        = "papers"
	KindAnnouncements = "announcements"
	KindLinks         = "links"
	KindCirculars     = "circulars"
	KindDates         = "dates"
	KindStructure     = "structure"
	KindAmounts       = "amounts"
	KindPhones        = "phones"
	KindAddresses     = "addresses"
	KindText          = "text"
)

type rule struct {
	kind      string
	selectors []selector
}

var structuredRules = map[topic.Topic][]rule{
	topic.Placements: {
		{KindCompanies, []selector{
			css(".companies-visited ul li"), css(".company-list li"), css(".placement-companies .company"),
			css(".companies-grid .company-item"),
			containing("ul li", "Ltd"), containing("ul li", "Technologies"), containing("ul li", "Systems"),
			containing("ul li", "Solutions"),
			css(".company-name"), css("img[alt*='company']"), css("img[alt*='logo']"),
		}},
		{KindStudents, []selector{
			css(".students-placed .student"), css(".placement-stats .stat"), css("table.placement-table tr"),
			css(".student-profile"),
		}},
		{KindStatistics, []selector{css(".placement-percentage"), css(".stats-number"), css(".placement-data")}},
	},
	topic.Faculty: {
		{KindProfiles, []selector{
			css(".faculty-table tr"), css(".faculty-profile"), css(".faculty-card"), css(".faculty-member"),
			css(".staff-profile"), css("table tr"), css(".faculty-list .faculty"),
		}},
		{KindNames, []selector{css(".faculty-name"), css(".professor-name"), css("td:first-child"), css("h3"), css("h4")}},
		{KindDesignations, []selector{css(".designation"), css(".position"), css(".title"), css("td:nth-child(2)")}},
		{KindEmails, []selector{css("a[href^='mailto:']"), css(".email"), css(".contact-email")}},
	},
	topic.QuestionBank: {
		{KindSubjects, []selector{css(".subject-list li"), css(".question-bank-subject"), css(".subject-name"), css("table.subjects tr")}},
		{KindDownloads, []selector{
			css("a[href$='.pdf']"), css("a[href*='download']"), css(".download-link"), css(".pdf-link"),
			containing("a", "Download"), containing("a", "PDF"),
		}},
		{KindPapers, []selector{css(".question-paper"), css(".previous-paper"), css(".exam-paper")}},
	},
	topic.Results: {
		{KindAnnouncements, []selector{css(".result-announcement"), css(".result-notice"), css(".exam-result"), css("a[href*='result']")}},
		{KindLinks, []selector{css("a[href*='result']"), css(".result-link"), containing("a", "Result")}},
	},
	topic.Notifications: {
		{KindCirculars, []selector{
			css(".circular"), css(".notification"), css(".notice"), css(".announcement"),
			css("ul.notifications li"), css(".news-item"),
		}},
		{KindDates, []selector{css(".date"), css(".published-date"), css(".notice-date")}},
		{KindLinks, []selector{css("a[href$='.pdf']"), css(".circular-link"), containing("a", "Download")}},
	},
	topic.Fees: {
		{KindStructure, []selector{css(".fee-structure table tr"), css(".fee-table tr"), css(".course-fee"), css(".fee-details")}},
		{KindAmounts, []selector{css(".fee-amount"), css(".amount"), containing("td", "₹"), containing("td", "Rs")}},
	},
	topic.Contact: {
		{KindPhones, []selector{css("a[href^='tel:']"), css(".phone"), css(".contact-number"), containing("td", "+")}},
		{KindEmails, []selector{css("a[href^='mailto:']"), css(".email"), css(".contact-email")}},
		{KindAddresses, []selector{css(".address"), css(".location"), css(".contact-address")}},
	},
}

var dynamicRules = map[topic.Topic][]rule{
	topic.Placements: {
		{KindCompanies, []selector{
			css(".companies-visited ul li"), css(".company-list li"), css(".placement-companies .company"),
			css(".companies-grid .company-item"), css(".company-name"),
			css("ul li"), css("ol li"),
			css("table tr td:first-child"), css("table.companies tr td"), css(".company-table tr td"),
			css(".company-card h3"), css(".company-card .name"), css(".placement-card .company"),
			css("img[alt*='company']"), css("img[alt*='logo']"),
			containing("p", "Ltd"), containing("p", "Technologies"), containing("p", "Systems"),
			containing("div", "Pvt"),
		}},
		{KindStudents, []selector{
			css(".students-placed .student"), css(".placement-stats .number"), css("table.placement-stats tr"),
			css(".student-count"), css(".placed-students"),
		}},
		{KindStatistics, []selector{css(".placement-percentage"), css(".stats-number"), css(".placement-data"), css(".success-rate")}},
	},
	topic.QuestionBank: {
		{KindSubjects, []selector{
			css("a[href$='.pdf']"), css(".download-link"), css(".pdf-link"), css(".question-paper-link"),
			containing("a", "Download"), containing("a", "PDF"),
			css("table tr td a"), css(".subject-list a"), css(".question-bank-item a"),
		}},
		{KindPapers, []selector{css(".question-paper"), css(".previous-paper"), css(".exam-paper"), css("table.question-papers tr"), css(".paper-list li")}},
	},
	topic.Results: {
		{KindAnnouncements, []selector{
			css(".result-announcement"), css(".result-notice"), css(".exam-result"), css("a[href*='result']"),
			css(".result-link"), css(".announcement"),
		}},
	},
	topic.Notifications: {
		{KindCirculars, []selector{
			css(".circular"), css(".notification"), css(".notice"), css(".announcement"),
			css("ul.notifications li"), css(".news-item"), css(".circular-item"), css("a[href$='.pdf']"),
			css(".notice-board li"),
		}},
	},
	topic.Faculty: {
		{KindProfiles, []selector{
			css("table.faculty-table tr"), css(".faculty-profile"), css(".faculty-card"), css(".faculty-member"),
			css(".staff-profile"), css("table tr"), css(".faculty-list .faculty"), css(".professor-card"),
		}},
	},
}

// genericKeywords drive the last-resort paragraph scan of the dynamic extractor.
var genericKeywords = map[topic.Topic][]string{
	topic.Placements:    {"placement", "company", "recruit", "job", "career", "interview"},
	topic.QuestionBank:  {"question", "paper", "exam", "download", "pdf", "subject"},
	topic.Results:       {"result", "marks", "grade", "score", "examination"},
	topic.Notifications: {"notification", "circular", "notice", "announcement"},
	topic.Faculty:       {"faculty", "professor", "teacher", "staff", "department"},
}

func title(kind string) string {
	if kind == "" {
		return ""
	}
	return strings.ToUpper(kind[:1]) + kind[1:]
}
