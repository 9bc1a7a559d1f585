// Package topic routes free-text questions to institutional topics and
// resolves each topic to the pages that hold its information.
package topic

import "strings"

type Topic string

const (
	None          Topic = ""
	Faculty       Topic = "faculty"
	Director      Topic = "director"
	Placements    Topic = "placements"
	Syllabus      Topic = "syllabus"
	Fees          Topic = "fees"
	QuestionBank  Topic = "question_bank"
	Results       Topic = "results"
	ExamSchedules Topic = "exam_schedules"
	Notifications Topic = "notifications"
	Evaluation    Topic = "evaluation"
	Malpractice   Topic = "malpractice"
	COE           Topic = "coe"
	Contact       Topic = "contact"
)

func (t Topic) String() string {
	return string(t)
}

// Label is the human readable form used in prompts and canned answers.
func (t Topic) Label() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

type Entry struct {
	Topic    Topic
	Keywords []string
}

// keywordTable is matched top to bottom; the first entry with a keyword
// contained in the question wins.
var keywordTable = []Entry{
	{Faculty, []string{"faculty", "professor", "dean", "teaching", "teacher", "staff", "instructor"}},
	{Director, []string{"director", "director cmr", "head", "principal"}},
	{Placements, []string{"placement", "company", "internship", "tp cell", "t&p cell", "training", "alumni", "job", "career", "recruitment"}},
	{Syllabus, []string{"course", "syllabus", "program", "department", "curriculum", "branch"}},
	{Fees, []string{"fees", "fee structure", "payment", "cost", "tuition", "charges"}},
	{QuestionBank, []string{"question paper", "question bank", "previous paper", "past paper", "exam paper"}},
	{Results, []string{"result", "marks", "grades", "score", "examination result"}},
	{ExamSchedules, []string{"exam schedule", "exam date", "examination schedule", "exam time"}},
	{Notifications, []string{"notification", "circular", "announcement", "notice"}},
	{Evaluation, []string{"evaluation", "grading", "assessment", "marking"}},
	{Malpractice, []string{"malpractice", "rules", "misconduct", "unfair means"}},
	{COE, []string{"controller of examination", "coe", "exam controller"}},
	{Contact, []string{"contact", "address", "email", "phone", "reach", "location"}},
}

// Match returns the first topic whose keyword list has a case-insensitive
// substring match in question, or None.
func Match(question string) Topic {
	return matchTable(keywordTable, question)
}

// Entries returns a copy of the routing table in match order.
func Entries() []Entry {
	out := make([]Entry, len(keywordTable))
	for i, e := range keywordTable {
		out[i] = Entry{Topic: e.Topic, Keywords: append([]string(nil), e.Keywords...)}
	}
	return out
}

func All() []Topic {
	out := make([]Topic, len(keywordTable))
	for i, e := range keywordTable {
		out[i] = e.Topic
	}
	return out
}

func Parse(s string) (Topic, bool) {
	for _, e := range keywordTable {
		if string(e.Topic) == s {
			return e.Topic, true
		}
	}
	return None, false
}

func matchTable(table []Entry, question string) Topic {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return None
	}
	for _, e := range table {
		for _, kw := range e.Keywords {
			if strings.Contains(q, kw) {
				return e.Topic
			}
		}
	}
	return None
}
