package query

// Envelope is the reply returned to the caller for one question.
type Envelope struct {
	Success     bool     `json:"success"`
	Answer      string   `json:"answer"`
	Images      []string `json:"images"`
	Sources     []string `json:"sources"`
	Topic       string   `json:"topic,omitempty"`
	Cached      bool     `json:"cached"`
	URLsScraped int      `json:"urlsScraped,omitempty"`
	Strategy    string   `json:"strategy,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Answer is what a strategy produces when it handles a question.
type Answer struct {
	Text        string
	Images      []string
	Sources     []string
	Topic       string
	URLsScraped int
	Success     bool
	Cached      bool
	// Cacheable marks answers generated from live content, which are
	// written back to the answer cache.
	Cacheable bool
}

func (a *Answer) envelope(strategy string) Envelope {
	env := Envelope{
		Success:     a.Success,
		Answer:      a.Text,
		Images:      nonNil(a.Images),
		Sources:     nonNil(a.Sources),
		Topic:       a.Topic,
		Cached:      a.Cached,
		URLsScraped: a.URLsScraped,
		Strategy:    strategy,
	}
	return env
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
