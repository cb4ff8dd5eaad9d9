package services

import (
	"context"
	"strings"

	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

// Assistant produces hints and prompt ideas.
type Assistant interface {
	SuggestPrompts(ctx context.Context, topic, docContext string) ([]string, error)
	Hint(ctx context.Context, question, answer string) (string, error)
}

type AssistService interface {
	Hint(dbc dbctx.Context, question, answer string) (string, error)
	SuggestPrompts(dbc dbctx.Context, topic, docContext string) ([]string, error)
}

type assistService struct {
	log       *logger.Logger
	assistant Assistant
}

func NewAssistService(baseLog *logger.Logger, assistant Assistant) AssistService {
	return &assistService{
		log:       baseLog.With("service", "AssistService"),
		assistant: assistant,
	}
}

func (s *assistService) Hint(dbc dbctx.Context, question, answer string) (string, error) {
	if _, err := requireCaller(dbc); err != nil {
		return "", err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apierr.BadRequest("Missing question")
	}
	hint, err := s.assistant.Hint(dbc.Ctx, question, strings.TrimSpace(answer))
	if err != nil {
		s.log.Error("Hint failed", "error", err)
		return "", err
	}
	return hint, nil
}

func (s *assistService) SuggestPrompts(dbc dbctx.Context, topic, docContext string) ([]string, error) {
	if _, err := requireCaller(dbc); err != nil {
		return nil, err
	}
	out, err := s.assistant.SuggestPrompts(dbc.Ctx, strings.TrimSpace(topic), docContext)
	if err != nil {
		s.log.Error("Prompt suggestions failed", "error", err)
		return nil, err
	}
	return out, nil
}
