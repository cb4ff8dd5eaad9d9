package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/quizlab-backend/internal/data/repos"
	"github.com/yungbote/quizlab-backend/internal/grading"
	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type AnswerGrader interface {
	Grade(ctx context.Context, question, expected, user string, opts grading.Options) grading.Result
}

type GradeAnswerInput struct {
	Question   string `json:"question"`
	Expected   string `json:"expected"`
	UserAnswer string `json:"user_answer"`
	Mode       string `json:"mode,omitempty"`
}

type GradeQuestionInput struct {
	Index      int    `json:"index"`
	UserAnswer string `json:"user_answer"`
	Strict     bool   `json:"strict,omitempty"`
}

type GradingService interface {
	GradeAnswer(dbc dbctx.Context, in GradeAnswerInput) (grading.Result, error)
	GradeQuizQuestion(dbc dbctx.Context, quizID uuid.UUID, in GradeQuestionInput) (grading.Result, error)
}

type gradingService struct {
	log     *logger.Logger
	grader  AnswerGrader
	quizzes repos.QuizRepo
}

func NewGradingService(baseLog *logger.Logger, rs repos.Set, grader AnswerGrader) GradingService {
	return &gradingService{
		log:     baseLog.With("service", "GradingService"),
		grader:  grader,
		quizzes: rs.Quizzes,
	}
}

func (s *gradingService) GradeAnswer(dbc dbctx.Context, in GradeAnswerInput) (grading.Result, error) {
	if _, err := requireCaller(dbc); err != nil {
		return grading.Result{}, err
	}
	if strings.TrimSpace(in.UserAnswer) == "" {
		return grading.Result{Correct: false, Reason: "No answer provided"}, nil
	}
	mode := grading.ParseMode(strings.ToLower(strings.TrimSpace(in.Mode)))
	if mode == grading.ModeStandard && strings.TrimSpace(in.Expected) == "" {
		return grading.Result{}, apierr.BadRequest("Missing expected answer")
	}
	return s.grader.Grade(dbc.Ctx, in.Question, in.Expected, in.UserAnswer, grading.Options{Mode: mode}), nil
}

// GradeQuizQuestion grades against a stored question. Quizzes with AI
// grading turned off never reach the judge.
func (s *gradingService) GradeQuizQuestion(dbc dbctx.Context, quizID uuid.UUID, in GradeQuestionInput) (grading.Result, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return grading.Result{}, err
	}
	quiz, err := s.quizzes.GetByID(dbc, quizID)
	if err != nil {
		return grading.Result{}, err
	}
	if quiz == nil || quiz.OwnerID != rd.UserID {
		return grading.Result{}, apierr.NotFound("Quiz not found")
	}
	if in.Index < 0 || in.Index >= len(quiz.Questions) {
		return grading.Result{}, apierr.BadRequest("Invalid question index")
	}
	q := quiz.Questions[in.Index]
	return s.grader.Grade(dbc.Ctx, q.Prompt, q.Answer, in.UserAnswer, grading.Options{
		StrictOverride: in.Strict,
		DisableJudge:   !quiz.AIGrading,
	}), nil
}
