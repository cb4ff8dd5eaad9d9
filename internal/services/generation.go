package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/yungbote/quizlab-backend/internal/data/repos"
	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/generation"
	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

const (
	DefaultGenerateCount = 10
	MaxGenerateCount     = 30
	MaxTopicChars        = 2000
	DefaultGeneratedName = "Generated Quiz"
	DefaultTopic         = "Create programming quiz questions."
)

type GenerateInput struct {
	Title   string     `json:"title"`
	Topic   string     `json:"topic"`
	Count   int        `json:"count"`
	GroupID *uuid.UUID `json:"group_id,omitempty"`
	FileID  string     `json:"file_id,omitempty"`
}

// QuestionGenerator is the generation pipeline seen by the service.
type QuestionGenerator interface {
	Generate(ctx context.Context, req generation.Request) ([]domain.Question, error)
}

// ContextRetriever builds document context for a generation request.
type ContextRetriever interface {
	DocContext(ctx context.Context, userID uuid.UUID, fileID string, n int, topic, title string) string
}

type GenerationService interface {
	Generate(dbc dbctx.Context, in GenerateInput) (*domain.Quiz, error)
}

type generationService struct {
	log       *logger.Logger
	quizzes   QuizService
	quizRepo  repos.QuizRepo
	groups    repos.GroupRepo
	chunks    repos.FileChunkRepo
	generator QuestionGenerator
	retriever ContextRetriever
}

func NewGenerationService(baseLog *logger.Logger, rs repos.Set, quizzes QuizService, generator QuestionGenerator, retriever ContextRetriever) GenerationService {
	return &generationService{
		log:       baseLog.With("service", "GenerationService"),
		quizzes:   quizzes,
		quizRepo:  rs.Quizzes,
		groups:    rs.Groups,
		chunks:    rs.Chunks,
		generator: generator,
		retriever: retriever,
	}
}

func normalizeGenerateInput(in GenerateInput) GenerateInput {
	switch {
	case in.Count <= 0:
		in.Count = DefaultGenerateCount
	case in.Count > MaxGenerateCount:
		in.Count = MaxGenerateCount
	}
	in.Title = clip(strings.TrimSpace(in.Title), MaxTitleChars)
	if in.Title == "" {
		in.Title = DefaultGeneratedName
	}
	in.Topic = clip(strings.TrimSpace(in.Topic), MaxTopicChars)
	if in.Topic == "" {
		in.Topic = DefaultTopic
	}
	in.FileID = strings.TrimSpace(in.FileID)
	return in
}

func (s *generationService) Generate(dbc dbctx.Context, in GenerateInput) (*domain.Quiz, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	in = normalizeGenerateInput(in)

	// Check the trial quota before paying for a model call.
	decision, err := s.quizzes.CheckQuota(dbc)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apierr.Forbidden(decision.Reason)
	}

	prior := []string{}
	if in.GroupID != nil {
		g, err := s.groups.GetByID(dbc, *in.GroupID)
		if err != nil {
			return nil, err
		}
		if g == nil || g.OwnerID != rd.UserID {
			return nil, apierr.BadRequest("Invalid group")
		}
		prior, err = s.quizRepo.ListPromptsByGroup(dbc, rd.UserID, *in.GroupID)
		if err != nil {
			return nil, err
		}
	}

	if in.FileID != "" {
		n, err := s.chunks.CountByFile(dbc, rd.UserID, in.FileID)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, apierr.BadRequest("Invalid file")
		}
	}

	docContext := ""
	if in.FileID != "" && s.retriever != nil {
		docContext = s.retriever.DocContext(dbc.Ctx, rd.UserID, in.FileID, in.Count, in.Topic, in.Title)
	}

	questions, err := s.generator.Generate(dbc.Ctx, generation.Request{
		Topic:        in.Topic,
		Count:        in.Count,
		PriorPrompts: prior,
		DocContext:   docContext,
	})
	if err != nil {
		s.log.Error("Generation failed", "error", err, "malformed", errors.Is(err, generation.ErrMalformedOutput))
		return nil, err
	}
	if len(questions) == 0 {
		return nil, apierr.BadRequest("No usable questions.")
	}

	sourceType := domain.SourceTopic
	if in.FileID != "" {
		sourceType = domain.SourceDocument
	}
	return s.quizzes.Create(dbc, CreateQuizInput{
		Title:        in.Title,
		Questions:    questions,
		GroupID:      in.GroupID,
		SourcePrompt: in.Topic,
		SourceFileID: in.FileID,
		SourceType:   sourceType,
	})
}

func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
