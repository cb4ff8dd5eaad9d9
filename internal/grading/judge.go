package grading

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

type JudgeRequest struct {
	Question   string `json:"question"`
	Expected   string `json:"expected"`
	UserAnswer string `json:"user_answer"`
	Mode       Mode   `json:"mode,omitempty"`
}

type Verdict struct {
	Correct bool   `json:"correct"`
	Reason  string `json:"reason"`
}

// Judge is the last-resort model-based grader.
type Judge interface {
	Judge(ctx context.Context, req JudgeRequest) (Verdict, error)
}

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeFence removes a surrounding markdown code fence, if any.
func StripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return raw
}

// parseVerdict accepts {"correct", "reason"} or {"correct", "reasons"}.
// Anything unparsable is an incorrect verdict.
func parseVerdict(raw string) Verdict {
	var out struct {
		Correct any    `json:"correct"`
		Reason  string `json:"reason"`
		Reasons any    `json:"reasons"`
	}
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &out); err != nil {
		return Verdict{Correct: false, Reason: "judge parse failure"}
	}
	v := Verdict{Correct: truthy(out.Correct), Reason: out.Reason}
	if v.Reason == "" {
		switch r := out.Reasons.(type) {
		case string:
			v.Reason = r
		case []any:
			parts := make([]string, 0, len(r))
			for _, p := range r {
				if s, ok := p.(string); ok {
					parts = append(parts, s)
				}
			}
			v.Reason = strings.Join(parts, "; ")
		}
	}
	if v.Reason == "" {
		v.Reason = "judge evaluation"
	}
	return v
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	case float64:
		return t != 0
	default:
		return false
	}
}
