package grading

import (
	"context"
	"encoding/json"
	"fmt"
)

// TextGenerator is the chat-completion surface the LLM judge needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

const standardJudgePrompt = `You grade short quiz answers.
Respond with JSON: {"correct": boolean, "reason": string}.
If the learner's answer expresses the same fact, intent, or concept, mark it correct even if wording differs.
STRICT NUMERIC CHECK: if the answer requires a specific number (year, quantity, date), the learner must give that exact number. Close numbers (1995 vs 1999) are incorrect.
Match question intent. Example: "What is the primary diet of lions?" -> "meat", "other animals", "carnivorous" are all correct.
Be generous with wording, strict with facts and numbers.
Only mark incorrect when the answer omits the key idea, gets the core fact or number wrong, or states a contradictory fact.`

const creativeJudgePrompt = `You grade creative or open-ended quiz answers.
Respond with JSON: {"correct": boolean, "reason": string}.
The expected answer is only an example. Do not require the learner to match it word for word.
Judge whether the learner's answer is a valid, logical and correct response to the question.
Exception for numbers, dates and facts: if the question asks for a specific year, date, count or factual number, the answer must contain that exact value.
Example: "Use 'ubiquitous' in a sentence" -> any valid sentence is correct.
Mark incorrect if the answer is factually wrong, irrelevant, or does not address the prompt.`

// LLMJudge asks a chat model for a verdict.
type LLMJudge struct {
	gen TextGenerator
}

func NewLLMJudge(gen TextGenerator) *LLMJudge {
	return &LLMJudge{gen: gen}
}

func (j *LLMJudge) Judge(ctx context.Context, req JudgeRequest) (Verdict, error) {
	system := standardJudgePrompt
	if req.Mode == ModeCreative {
		system = creativeJudgePrompt
	}
	payload, err := json.Marshal(struct {
		Question   string `json:"question"`
		Expected   string `json:"expected"`
		UserAnswer string `json:"user_answer"`
	}{req.Question, req.Expected, req.UserAnswer})
	if err != nil {
		return Verdict{}, fmt.Errorf("encode judge payload: %w", err)
	}
	raw, err := j.gen.GenerateText(ctx, system, "Grade this:\n"+string(payload))
	if err != nil {
		return Verdict{}, fmt.Errorf("judge completion: %w", err)
	}
	return parseVerdict(raw), nil
}
