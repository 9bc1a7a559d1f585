package answer

import (
	"fmt"
	"strings"
	"time"
)

// Input is everything the model sees for one question.
type Input struct {
	Question string
	// Topic is the human label of the routed topic or target page. Empty
	// for general questions.
	Topic   string
	Content string
	// Facts holds post-processed facts, such as a numbered company list,
	// embedded verbatim after the content.
	Facts   string
	Sources []string
	Images  []string
	// Live marks content scraped during this request, as opposed to
	// canned fallback content.
	Live bool
}

func (g *Generator) systemInstruction(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are CollegeGPT, the AI assistant for %s. ", g.college)
	b.WriteString("You answer students' questions about the institution using only the website content provided with each question.\n\n")

	b.WriteString("RULES:\n")
	b.WriteString("- Use ONLY facts present in the provided content. Never invent names, numbers, dates, fees or companies.\n")
	b.WriteString("- If the content does not answer the question, say so plainly and point to the official website.\n")
	b.WriteString("- Format the answer in markdown with short headings (##, ###) and bullet lists.\n")
	b.WriteString("- Present lists completely, in the order they appear in the content.\n")
	b.WriteString("- Keep a friendly, conversational tone and aim for 200-600 words.\n")
	if in.Live {
		b.WriteString("- The content below was fetched live from the official website just now. Give the user the actual information; do not tell them to visit the website for details you already have.\n")
	}

	if in.Topic != "" {
		fmt.Fprintf(&b, "\nTOPIC: %s\n", in.Topic)
	}
	if in.Live && len(in.Sources) > 0 {
		fmt.Fprintf(&b, "LIVE DATA AVAILABLE: scraped from %d official page(s)\n", len(in.Sources))
	}
	fmt.Fprintf(&b, "CURRENT TIME: %s\n", g.now().Format(time.RFC1123))

	return b.String()
}

func (g *Generator) prompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "User Question: %q\n\n", in.Question)

	if in.Live {
		fmt.Fprintf(&b, "LIVE SCRAPED DATA FROM THE %s OFFICIAL WEBSITE:\n", strings.ToUpper(g.college))
	} else {
		b.WriteString("College Information:\n")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		content = "Limited data available from the college website."
	}
	b.WriteString(content)
	b.WriteString("\n\n")

	if facts := strings.TrimSpace(in.Facts); facts != "" {
		b.WriteString(facts)
		b.WriteString("\n\n")
	}

	if len(in.Images) > 0 {
		fmt.Fprintf(&b, "Available Image URLs: %s\n", strings.Join(in.Images, ", "))
	}
	if len(in.Sources) > 0 {
		fmt.Fprintf(&b, "Sources: %s\n", strings.Join(in.Sources, ", "))
	}

	b.WriteString("\nAnswer the question using the information above. ")
	if in.Topic != "" {
		fmt.Fprintf(&b, "Focus on %s. ", in.Topic)
	}
	b.WriteString("Be specific and include the details that appear in the data.\n")

	return b.String()
}
