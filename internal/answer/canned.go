package answer

import (
	"fmt"
	"strings"

	"github.com/collegegpt/backend/internal/llm"
	"github.com/collegegpt/backend/internal/topic"
)

// Canned renders the hand-authored replies used when no live answer can be
// produced. Every reply names the official site so the user always has a
// next step.
type Canned struct {
	College string
	BaseURL string
}

func (c Canned) page(path string) string {
	return topic.Join(c.BaseURL, path)
}

// Guidance answers a question that matched no topic.
func (c Canned) Guidance(question string) string {
	return fmt.Sprintf(`I understand you're asking about %q.

To give you the most accurate and current information, could you please be more specific about what you're looking for? I can help with:

- **Placements** - Companies, statistics, internships
- **Question Banks** - Previous papers, downloads
- **Results** - Exam results and announcements
- **Notifications** - Circulars and notices
- **Faculty** - Department faculty information
- **Fees** - Fee structure and payments

Try asking something like "Which companies visited for placements?" or "Show me CSE question banks" for more targeted results, or visit the official website: %s`, question, c.BaseURL)
}

// NoSources answers a routed question whose topic has no configured pages.
func (c Canned) NoSources(question string, t topic.Topic) string {
	return fmt.Sprintf(`I understand you're asking about %s - %q.

Unfortunately, I don't have specific pages configured for this topic yet, so I can't fetch the latest information from the official website.

**What you can do:**
- Visit the official website: %s
- Contact the college directly for current %s information
- Try rephrasing your question with different keywords`, t.Label(), question, c.BaseURL, t.Label())
}

// ScrapeFailed answers when every configured page for the topic failed to load.
func (c Canned) ScrapeFailed(question string, t topic.Topic, urls []string) string {
	var attempted strings.Builder
	for i, u := range urls {
		fmt.Fprintf(&attempted, "%d. %s\n", i+1, u)
	}

	return fmt.Sprintf(`I tried to get the latest %s information for your question %q, but I'm having trouble accessing the official pages right now.

**I attempted to check:**
%s
**What you can try:**
- Visit the official website: %s
- Open the pages above directly for the most current information
- Try asking again in a few minutes

The information might be temporarily unavailable due to website maintenance or connectivity issues.`, t.Label(), question, attempted.String(), c.BaseURL)
}

// GenerationFallback is the topic-aware reply used when the language model
// fails. The question's wording picks the section; kind explains the outage.
func (c Canned) GenerationFallback(question string, kind llm.ErrorKind) string {
	q := strings.ToLower(question)

	switch {
	case containsAny(q, "admission", "apply", "eligibility"):
		return fmt.Sprintf(`## Admissions Information

I'm currently unable to access the latest admission details, but here's how to get accurate information:

### For Current Admission Information:
- **Official Website**: %s
- **Direct Contact**: Call the admissions office

### General Admission Process:
- Online application submission
- Eligibility verification based on entrance exams
- Document submission and verification
- Merit-based selection and seat confirmation

%s`, c.BaseURL, outage(kind))

	case containsAny(q, "fee", "cost", "tuition"):
		return fmt.Sprintf(`## Fee Structure Information

I'm currently unable to access the specific fee details, but here's how to get accurate information:

### For Current Fee Structure:
- **Fee Structure Page**: %s
- **Contact**: Accounts department for clarifications

### What Fees Typically Include:
- Tuition fees
- Laboratory and library fees
- Development and examination fees

%s`, c.page("academics/fee-structure/"), outage(kind))

	case containsAny(q, "course", "program", "branch", "department"):
		return fmt.Sprintf(`## Courses & Programs

I'm having difficulty accessing the current course catalog, but here's how to find detailed information:

### For Course Information:
- **Courses Page**: %s
- **Department Pages**: Browse individual department details

%s`, c.page("academics/courses-offered/"), outage(kind))

	case containsAny(q, "placement", "job", "career", "company"):
		return fmt.Sprintf(`## Placements & Career Opportunities

I'm currently unable to access the latest placement data, but here's how to get current information:

### For Placement Information:
- **T&P Cell Page**: %s
- **Companies Visited**: %s

### What the T&P Cell Typically Offers:
- Campus recruitment drives
- Training and interview preparation
- Internship opportunities and career guidance

%s`, c.page("t-p-cell/about-t-p-cell/"), c.page("t-p-cell/companies-visited/"), outage(kind))

	case containsAny(q, "contact", "phone", "email", "address"):
		return fmt.Sprintf(`## Contact Information

I'm currently unable to access the specific contact details, but here's how to reach %s:

### Official Contact Sources:
- **Contact Page**: %s
- **Official Website**: %s

%s`, c.College, c.page("contact/"), c.BaseURL, outage(kind))

	default:
		return fmt.Sprintf(`## Service Temporarily Unavailable

I'm experiencing technical difficulties accessing the latest information about %q.

### What You Can Do:
- **Visit Official Website**: %s
- **Try Again Later**: Service may be restored shortly
- **Rephrase Question**: Try asking in different words

%s`, question, c.BaseURL, outage(kind))
	}
}

func outage(kind llm.ErrorKind) string {
	var detail string
	switch kind {
	case llm.KindQuota:
		detail = "API usage limit reached - service will resume shortly"
	case llm.KindNetwork:
		detail = "Network connectivity issues - please try again"
	case llm.KindAuthentication:
		detail = "Service authentication issue - technical team notified"
	default:
		detail = "Temporary technical issue - our team is working on it"
	}
	return "### Error Details:\n" + detail
}

// TargetFallback is the overview used as generation input when the single
// targeted page could not be read.
func (c Canned) TargetFallback(name string) string {
	if text, ok := targetFallbacks[name]; ok {
		return fmt.Sprintf("%s %s\n\n%s", c.College, name, text)
	}
	return fmt.Sprintf("Information about %s is currently unavailable. Please visit %s for the latest updates.", name, c.BaseURL)
}

var targetFallbacks = map[string]string{
	"Faculty": "The college has experienced faculty members across departments including Computer Science Engineering, " +
		"Electronics and Communication Engineering, Mechanical Engineering, Civil Engineering and Information Technology. " +
		"Department-wise faculty lists are published on the official website.",
	"Director": "The college is led by a Director who oversees academic and administrative operations, " +
		"strategic planning and institutional governance.",
	"Placements": "The Training and Placement Cell (T&P Cell) facilitates campus recruitment and career development: " +
		"recruitment drives, industry interaction, skill development training, interview preparation and career guidance.",
	"Companies": "Companies from IT, manufacturing, consulting and other sectors visit the campus for recruitment drives. " +
		"Current company lists are maintained by the Training and Placement Cell.",
	"Fee Structure": "Fee components typically include tuition, laboratory, library, development and examination fees. " +
		"Scholarships may be available for eligible students.",
	"Courses": "Undergraduate and postgraduate programs include Computer Science Engineering, Electronics and Communication Engineering, " +
		"Electrical and Electronics Engineering, Mechanical Engineering, Civil Engineering, Information Technology, " +
		"Artificial Intelligence and Data Science, and Cyber Security.",
	"Contact": "The college is located in Hyderabad. Phone numbers, email addresses and department contacts are listed on the contact page.",
	"About College": "A premier engineering institution focused on academic excellence, an industry-relevant curriculum, " +
		"modern infrastructure, experienced faculty and student development programs.",
}

// StaticFallbackContent is the college overview handed to the model when no
// general page could be read.
func (c Canned) StaticFallbackContent() string {
	return fmt.Sprintf(`%s - Premier Engineering Institution

ACADEMIC PROGRAMS:
- Computer Science Engineering
- Electronics and Communication Engineering
- Electrical and Electronics Engineering
- Mechanical Engineering
- Civil Engineering
- Information Technology
- Artificial Intelligence and Data Science
- Cyber Security

FACILITIES:
- Modern laboratories and workshops
- Well-equipped library
- Hostel facilities for boys and girls
- Sports and recreational facilities
- Placement and training cell

ADMISSIONS:
- Applications accepted through the online portal
- Eligibility based on entrance exam scores
- Scholarships available for deserving students

Contact Information:
Website: %s
Location: %s, Hyderabad`, c.College, c.BaseURL, c.College)
}

// Apology is the last-resort reply when even the general-page stage fails.
func (c Canned) Apology(question string) string {
	return fmt.Sprintf(`I apologize, but I'm having trouble processing your question about %q right now.

**What you can try:**
- Rephrase your question in simpler terms
- Ask about specific topics like admissions, courses, or facilities
- Wait a moment and try again

**For immediate assistance:**
- Visit: %s
- Contact the college directly`, question, c.BaseURL)
}

// ServiceUnavailable is the body of the top-level 500 response.
func (c Canned) ServiceUnavailable() string {
	return fmt.Sprintf(`**Service Temporarily Unavailable**

I'm experiencing technical difficulties right now. This could be due to high server load, network connectivity issues or temporary maintenance.

**What you can do:**
- Try again in a few moments
- Rephrase your question
- Visit the official website: %s`, c.BaseURL)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
