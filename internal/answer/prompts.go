package answer

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/seanblong/podsearch/pkg/models"
)

// SystemPrompt fixes the assistant's persona and grounding rules. Answers
// must come from the supplied excerpts only, with guest and episode cited.
const SystemPrompt = `You are an AI assistant that helps product managers find insights from Lenny's Podcast, one of the most popular podcasts for product and growth professionals.

You have access to transcripts from hundreds of episodes featuring world-class product leaders, founders, and growth experts.

Guidelines:
1. Answer questions based ONLY on the provided context from the podcast transcripts
2. If the context doesn't contain relevant information, say so honestly
3. Always cite your sources by mentioning the guest name and episode title
4. Keep answers concise but informative
5. When quoting, use direct quotes with attribution
6. If multiple guests have discussed a topic, synthesize their perspectives

Format:
- Use bullet points for lists
- Bold key takeaways
- Include source citations at the end of your response`

const contextTemplate = `Here are relevant excerpts from Lenny's Podcast transcripts:

%s

---

Based on the above context, please answer the user's question. If the context doesn't contain enough information to answer fully, acknowledge that and share what you can.`

// FormatContext serializes chunks as numbered, attributed source blocks.
func FormatContext(chunks []models.RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		parts = append(parts, fmt.Sprintf("[Source %d: %q - %s at %s]\n%s",
			i+1, c.Title, c.Speaker, c.Timestamp, c.Text))
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt assembles the user message: attributed context blocks followed
// by the literal question.
func BuildPrompt(query string, chunks []models.RetrievedChunk) string {
	return fmt.Sprintf(contextTemplate, FormatContext(chunks)) + "\n\nQuestion: " + query
}

// SuggestedQuestions seeds the UI with starting points.
var SuggestedQuestions = []string{
	"What advice do guests give about transitioning from IC to manager?",
	"How do successful PMs prioritize their roadmap?",
	"How do you say no to stakeholders?",
	"What makes a good product vision?",
	"How do you validate product ideas?",
	"What's the best way to do user research?",
	"How do you find product-market fit?",
	"What metrics should PMs focus on?",
	"How do you improve user retention?",
	"How do you identify your North Star metric?",
	"How do you build high-performing product teams?",
	"How do you give effective feedback?",
	"How should startups think about pricing?",
	"What are the biggest mistakes founders make?",
	"How do you tell better stories?",
	"How do you present to executives?",
	"How do you avoid burnout?",
	"How do you develop product sense?",
	"What makes a great product leader?",
	"How do you build conviction around product decisions?",
}

// RandomQuestions returns n distinct suggested questions.
func RandomQuestions(n int) []string {
	if n > len(SuggestedQuestions) {
		n = len(SuggestedQuestions)
	}
	perm := rand.Perm(len(SuggestedQuestions))
	out := make([]string, 0, n)
	for _, i := range perm[:n] {
		out = append(out, SuggestedQuestions[i])
	}
	return out
}
