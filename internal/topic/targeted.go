package topic

// Target is a single page picked directly from question keywords, used when
// the topic-routed strategies produced nothing.
type Target struct {
	Name     string
	URL      string
	Keywords []string
}

var targetTable = []struct {
	name     string
	path     string
	keywords []string
}{
	{"Faculty", "departments/department-of-computer-science-engineering/faculty/", []string{"faculty", "professor", "dean", "teaching", "teacher", "staff", "instructor"}},
	{"Director", "administration/director/", []string{"director", "director cmr", "head", "principal"}},
	{"Placements", "t-p-cell/about-t-p-cell/", []string{"placements", "companies", "t&p", "training", "placement", "job", "career", "recruitment"}},
	{"Companies", "t-p-cell/companies-visited/", []string{"companies visited", "company list", "recruiters", "employers"}},
	{"Fee Structure", "academics/fee-structure/", []string{"fee", "fees", "cost", "tuition", "payment", "charges"}},
	{"Courses", "academics/courses-offered/", []string{"courses", "programs", "curriculum", "syllabus", "degree", "branch", "department"}},
	{"Contact", "contact/", []string{"contact", "address", "phone", "email", "location", "reach"}},
	{"About College", "administration/about-college/", []string{"about", "college", "institution", "campus", "history", "overview"}},
}

// MatchTarget picks the first coarse target whose keywords occur in question.
func MatchTarget(question, baseURL string) (Target, bool) {
	table := make([]Entry, len(targetTable))
	for i, t := range targetTable {
		table[i] = Entry{Topic: Topic(t.name), Keywords: t.keywords}
	}

	name := matchTable(table, question)
	if name == None {
		return Target{}, false
	}
	for _, t := range targetTable {
		if t.name == string(name) {
			return Target{Name: t.name, URL: Join(baseURL, t.path), Keywords: t.keywords}, true
		}
	}
	return Target{}, false
}
