package generation

import (
	"context"
	"fmt"
	"strings"
)

const (
	SuggestionCount       = 4
	MaxSuggestContextChar = 15000
)

const topicSuggestSystemPrompt = `You are a creative assistant helping a user generate quiz prompts.
Based on the user's input topic (which might be a simple word like "Lions" or "Bash"), generate 4 distinct, engaging, and specific quiz prompt ideas.
Return ONLY a JSON array of strings. Do not include any other text or markdown formatting.
Example output: ["Make a quiz about lion social structures", "Create a quiz testing knowledge of lion hunting tactics", "Generate a quiz about the history of lions in culture", "Make a fun fact quiz about lions"]`

const contextSuggestSystemPrompt = `You are a creative assistant helping a user generate quiz prompts based on a provided transcript or document.
Analyze the provided context and generate 4 distinct, engaging, and specific quiz prompt ideas that cover different aspects of the content.
Return ONLY a JSON array of strings. Do not include any other text or markdown formatting.`

const hintSystemPrompt = `You are a helpful assistant providing hints for quiz questions.
The user will provide a question and an answer.
Your goal is to provide a short, helpful hint that nudges the user towards the answer without giving it away explicitly.
Be concise. Do not use the answer word in the hint if possible.`

// NoHint is returned when the model answers with nothing.
const NoHint = "No hint available."

// Assistant wraps the small single-call helpers around quiz authoring.
type Assistant struct {
	gen TextGenerator
}

func NewAssistant(gen TextGenerator) *Assistant {
	return &Assistant{gen: gen}
}

// SuggestPrompts asks for quiz prompt ideas. Unparsable output is an empty list.
func (a *Assistant) SuggestPrompts(ctx context.Context, topic, docContext string) ([]string, error) {
	topic = strings.TrimSpace(topic)
	docContext = strings.TrimSpace(docContext)

	system := topicSuggestSystemPrompt
	user := "Topic: " + topic
	if docContext != "" {
		if topic == "" {
			topic = "General"
		}
		system = contextSuggestSystemPrompt
		user = fmt.Sprintf("Topic: %s\n\nContext:\n%s", topic, truncate(docContext, MaxSuggestContextChar))
	}
	raw, err := a.gen.GenerateText(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("suggest prompts: %w", err)
	}
	ideas, err := ParseStringList(raw)
	if err != nil {
		return []string{}, nil
	}
	if len(ideas) > SuggestionCount {
		ideas = ideas[:SuggestionCount]
	}
	return ideas, nil
}

func (a *Assistant) Hint(ctx context.Context, question, answer string) (string, error) {
	raw, err := a.gen.GenerateText(ctx, hintSystemPrompt, fmt.Sprintf("Question: %s\nAnswer: %s", question, answer))
	if err != nil {
		return "", fmt.Errorf("generate hint: %w", err)
	}
	if hint := strings.TrimSpace(raw); hint != "" {
		return hint, nil
	}
	return NoHint, nil
}
