package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/grading"
)

// MaxFieldChars caps each generated prompt and answer.
const MaxFieldChars = 500

// ErrMalformedOutput marks a model reply that is not a JSON array of
// question objects.
var ErrMalformedOutput = errors.New("model did not return a valid question array")

const questionArraySchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "prompt": {"type": ["string", "number"]},
      "answer": {"type": ["string", "number", "boolean"]}
    }
  }
}`

const stringArraySchema = `{
  "type": "array",
  "items": {"type": "string"}
}`

var schemaCache sync.Map // map[string]*jsonschema.Schema

func compiledSchema(name, def string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(def), &parsed); err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	schemaCache.Store(name, compiled)
	return compiled, nil
}

func decodeValidated(raw, name, schema string) (any, error) {
	text := grading.StripCodeFence(raw)
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedOutput, err)
	}
	compiled, err := compiledSchema(name, schema)
	if err != nil {
		return nil, err
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return parsed, nil
}

// ParseQuestions decodes a model reply into at most limit questions. Items
// missing a prompt or answer are dropped; fields are cut to MaxFieldChars.
func ParseQuestions(raw string, limit int) ([]domain.Question, error) {
	parsed, err := decodeValidated(raw, "question-array", questionArraySchema)
	if err != nil {
		return nil, err
	}
	items := parsed.([]any)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]domain.Question, 0, len(items))
	for _, it := range items {
		obj := it.(map[string]any)
		q := domain.Question{
			Prompt: truncate(stringify(obj["prompt"]), MaxFieldChars),
			Answer: truncate(stringify(obj["answer"]), MaxFieldChars),
		}
		if q.Prompt == "" || q.Answer == "" {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// ParseStringList decodes a JSON array of strings, e.g. prompt suggestions.
func ParseStringList(raw string) ([]string, error) {
	parsed, err := decodeValidated(raw, "string-array", stringArraySchema)
	if err != nil {
		return nil, err
	}
	items := parsed.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it.(string)); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
