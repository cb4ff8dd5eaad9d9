package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxPriorPrompts is how many earlier prompts are shown to the model.
const MaxPriorPrompts = 200

const questionSystemPrompt = `You generate quiz questions.
Return ONLY a JSON array of objects with keys "prompt" and "answer".
No markdown, no code fences, no commentary.`

const refillSuffix = " (add new or extended questions that are not already covered above)"

func questionUserPrompt(n int, topic string, prior []string, docContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d question/answer pairs about: %s\n", n, topic)
	b.WriteString("Make questions varied and pedagogically useful (from fundamentals to extensions).\n")
	b.WriteString("Answers must be exact strings a learner can type (no prose).\n")
	b.WriteString(`Example element: { "prompt": "Print dog", "answer": "console.log('dog')" }` + "\n\n")

	if len(prior) > MaxPriorPrompts {
		prior = prior[:MaxPriorPrompts]
	}
	if len(prior) > 0 {
		encoded, _ := json.Marshal(prior)
		b.WriteString("Here are prior prompts for context (avoid repeating them verbatim; prefer new angles and extended coverage):\n")
		b.Write(encoded)
	}
	if docContext != "" {
		b.WriteString("\nUse ONLY the following document excerpts as your source material. Ground your questions in this content.\n")
		b.WriteString("---DOC CONTEXT START---\n")
		b.WriteString(docContext)
		b.WriteString("\n---DOC CONTEXT END---\n")
	}
	return b.String()
}

// retrievalQuery is the text embedded to pick document chunks.
func retrievalQuery(n int, topic, title string) string {
	subject := strings.TrimSpace(topic)
	if subject == "" {
		subject = strings.TrimSpace(title)
	}
	if subject == "" {
		subject = "the uploaded document"
	}
	return fmt.Sprintf("Generate %d quiz questions about: %s", n, subject)
}
