package topic

import "strings"

// staticPaths is the compiled-in source list, relative to the college site root.
var staticPaths = map[Topic][]string{
	Faculty: {
		"departments/department-of-computer-science-engineering/faculty/",
		"departments/department-of-computer-science-engineering-data-science/faculty-ds/",
		"departments/department-of-mechanical-engineering/faculty/",
	},
	Director: {"administration/director/"},
	Placements: {
		"t-p-cell/about-t-p-cell/",
		"t-p-cell/training-placement-team/",
		"t-p-cell/companies-visited/",
		"t-p-cell/students-placed/",
		"t-p-cell/alumni/",
		"t-p-cell/internships/",
	},
	Syllabus:      {"academics/courses-offered/"},
	Fees:          {"academics/fee-structure/"},
	QuestionBank:  {"exam-section/question-banks/"},
	Results:       {"exam-section/results/"},
	ExamSchedules: {"exam-section/schedules/"},
	Notifications: {"exam-section/circular-notification/"},
	Evaluation:    {"exam-section/evaluation-process/"},
	Malpractice:   {"exam-section/malpracties-rules/"},
	COE:           {"exam-section/controller-of-examination/"},
	Contact:       {"contact/"},
}

// StaticURLs returns the fallback URL table rooted at baseURL.
func StaticURLs(baseURL string) map[Topic][]string {
	out := make(map[Topic][]string, len(staticPaths))
	for t, paths := range staticPaths {
		urls := make([]string, len(paths))
		for i, p := range paths {
			urls[i] = Join(baseURL, p)
		}
		out[t] = urls
	}
	return out
}

// Join appends a site-relative path to baseURL.
func Join(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

var generalPaths = []string{
	"",
	"academics/fee-structure/",
	"contact/",
	"administration/about-college/",
	"academics/courses-offered/",
	"t-p-cell/about-t-p-cell/",
	"departments/department-of-information-technology/faculty-it/",
	"administration/director/",
	"t-p-cell/companies-visited/",
}

// GeneralPages lists the broad overview pages read when nothing more
// specific answered a question, starting with the site root.
func GeneralPages(baseURL string) []string {
	urls := make([]string, len(generalPaths))
	for i, p := range generalPaths {
		urls[i] = Join(baseURL, p)
	}
	return urls
}
