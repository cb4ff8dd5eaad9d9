package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/data/repos"
	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/normalization"
	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/quota"
)

const MaxTitleChars = 120

type CreateQuizInput struct {
	Title        string            `json:"title"`
	Questions    []domain.Question `json:"questions"`
	GroupID      *uuid.UUID        `json:"group_id,omitempty"`
	SourcePrompt string            `json:"source_prompt,omitempty"`
	SourceFileID string            `json:"source_file_id,omitempty"`
	SourceType   string            `json:"source_type,omitempty"`
	AIGrading    *bool             `json:"ai_grading,omitempty"`
}

type UpdateQuizInput struct {
	Title      *string            `json:"title,omitempty"`
	Questions  *[]domain.Question `json:"questions,omitempty"`
	GroupID    *uuid.UUID         `json:"group_id,omitempty"`
	ClearGroup bool               `json:"clear_group,omitempty"`
	AIGrading  *bool              `json:"ai_grading,omitempty"`
}

type QuizService interface {
	// CheckQuota reports whether the caller may create another quiz.
	CheckQuota(dbc dbctx.Context) (quota.Decision, error)
	Create(dbc dbctx.Context, in CreateQuizInput) (*domain.Quiz, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*domain.Quiz, error)
	List(dbc dbctx.Context, groupID *uuid.UUID) ([]*domain.Quiz, error)
	Update(dbc dbctx.Context, id uuid.UUID, in UpdateQuizInput) (*domain.Quiz, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	AddReview(dbc dbctx.Context, id uuid.UUID, q domain.Question) (*domain.Quiz, error)
	RemoveReview(dbc dbctx.Context, id uuid.UUID, prompt string) (*domain.Quiz, error)
	ListReviewQuestions(dbc dbctx.Context, groupID *uuid.UUID) ([]domain.Question, error)
}

type quizService struct {
	db         *gorm.DB
	log        *logger.Logger
	quizzes    repos.QuizRepo
	groups     repos.GroupRepo
	shareLinks repos.ShareLinkRepo
	attempts   repos.AttemptRepo
	scores     repos.ScoreRepo
	guestLimit int
}

func NewQuizService(db *gorm.DB, baseLog *logger.Logger, rs repos.Set, guestLimit int) QuizService {
	return &quizService{
		db:         db,
		log:        baseLog.With("service", "QuizService"),
		quizzes:    rs.Quizzes,
		groups:     rs.Groups,
		shareLinks: rs.ShareLinks,
		attempts:   rs.Attempts,
		scores:     rs.Scores,
		guestLimit: guestLimit,
	}
}

func (s *quizService) CheckQuota(dbc dbctx.Context) (quota.Decision, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return quota.Decision{}, err
	}
	if !rd.IsAnonymous {
		return quota.Check(false, 0, s.guestLimit), nil
	}
	n, err := s.quizzes.CountByOwner(dbc, rd.UserID)
	if err != nil {
		return quota.Decision{}, fmt.Errorf("count quizzes: %w", err)
	}
	return quota.Check(true, n, s.guestLimit), nil
}

func (s *quizService) Create(dbc dbctx.Context, in CreateQuizInput) (*domain.Quiz, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.BadRequest("Title is required")
	}
	if len([]rune(title)) > MaxTitleChars {
		title = string([]rune(title)[:MaxTitleChars])
	}
	questions := cleanQuestions(in.Questions)
	aiGrading := true
	if in.AIGrading != nil {
		aiGrading = *in.AIGrading
	}
	sourceType := in.SourceType
	if sourceType == "" {
		sourceType = domain.SourceManual
	}

	var created *domain.Quiz
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		decision, err := s.CheckQuota(inner)
		if err != nil {
			return err
		}
		if !decision.Allowed {
			return apierr.Forbidden(decision.Reason)
		}
		if in.GroupID != nil {
			if err := s.requireGroup(inner, rd.UserID, *in.GroupID); err != nil {
				return err
			}
		}
		created, err = s.quizzes.Create(inner, &domain.Quiz{
			OwnerID:      rd.UserID,
			GroupID:      in.GroupID,
			Title:        title,
			Questions:    questions,
			SourcePrompt: in.SourcePrompt,
			SourceFileID: in.SourceFileID,
			SourceType:   sourceType,
			AIGrading:    aiGrading,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Quiz created", "quiz_id", created.ID, "owner_id", rd.UserID, "questions", len(created.Questions), "source", sourceType)
	return created, nil
}

func (s *quizService) Get(dbc dbctx.Context, id uuid.UUID) (*domain.Quiz, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	return s.owned(dbc, rd.UserID, id)
}

func (s *quizService) List(dbc dbctx.Context, groupID *uuid.UUID) ([]*domain.Quiz, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	return s.quizzes.ListByOwner(dbc, rd.UserID, groupID)
}

func (s *quizService) Update(dbc dbctx.Context, id uuid.UUID, in UpdateQuizInput) (*domain.Quiz, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	var out *domain.Quiz
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.owned(inner, rd.UserID, id); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return apierr.BadRequest("Title is required")
			}
			updates["title"] = title
		}
		if in.Questions != nil {
			updates["questions"] = datatypes.JSONSlice[domain.Question](cleanQuestions(*in.Questions))
		}
		switch {
		case in.ClearGroup:
			updates["group_id"] = nil
		case in.GroupID != nil:
			if err := s.requireGroup(inner, rd.UserID, *in.GroupID); err != nil {
				return err
			}
			updates["group_id"] = *in.GroupID
		}
		if in.AIGrading != nil {
			updates["ai_grading"] = *in.AIGrading
		}
		if err := s.quizzes.UpdateFields(inner, id, updates); err != nil {
			return fmt.Errorf("update quiz: %w", err)
		}
		out, err = s.quizzes.GetByID(inner, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the quiz with its share links, attempts and score rows.
func (s *quizService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	rd, err := requireCaller(dbc)
	if err != nil {
		return err
	}
	return inTx(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.owned(inner, rd.UserID, id); err != nil {
			return err
		}
		if err := s.scores.DeleteByQuiz(inner, id); err != nil {
			return fmt.Errorf("delete scores: %w", err)
		}
		if err := s.attempts.DeleteByQuiz(inner, id); err != nil {
			return fmt.Errorf("delete attempts: %w", err)
		}
		if err := s.shareLinks.DeleteByQuiz(inner, id); err != nil {
			return fmt.Errorf("delete share links: %w", err)
		}
		return s.quizzes.Delete(inner, id)
	})
}

// AddReview copies q into the review list unless a question with the same
// normalized prompt is already there.
func (s *quizService) AddReview(dbc dbctx.Context, id uuid.UUID, q domain.Question) (*domain.Quiz, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	key := normalization.Normalize(q.Prompt)
	if key == "" {
		return nil, apierr.BadRequest("Question prompt is required")
	}
	var out *domain.Quiz
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		quiz, err := s.owned(inner, rd.UserID, id)
		if err != nil {
			return err
		}
		for _, existing := range quiz.ReviewQuestions {
			if normalization.Normalize(existing.Prompt) == key {
				out = quiz
				return nil
			}
		}
		review := append(datatypes.JSONSlice[domain.Question]{}, quiz.ReviewQuestions...)
		review = append(review, domain.Question{Prompt: q.Prompt, Answer: q.Answer})
		if err := s.quizzes.UpdateFields(inner, id, map[string]interface{}{"review_questions": review}); err != nil {
			return fmt.Errorf("update review: %w", err)
		}
		quiz.ReviewQuestions = review
		out = quiz
		return nil
	})
	return out, err
}

func (s *quizService) RemoveReview(dbc dbctx.Context, id uuid.UUID, prompt string) (*domain.Quiz, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	key := normalization.Normalize(prompt)
	var out *domain.Quiz
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		quiz, err := s.owned(inner, rd.UserID, id)
		if err != nil {
			return err
		}
		kept := datatypes.JSONSlice[domain.Question]{}
		for _, existing := range quiz.ReviewQuestions {
			if normalization.Normalize(existing.Prompt) != key {
				kept = append(kept, existing)
			}
		}
		if len(kept) != len(quiz.ReviewQuestions) {
			if err := s.quizzes.UpdateFields(inner, id, map[string]interface{}{"review_questions": kept}); err != nil {
				return fmt.Errorf("update review: %w", err)
			}
		}
		quiz.ReviewQuestions = kept
		out = quiz
		return nil
	})
	return out, err
}

// ListReviewQuestions merges review lists across the caller's quizzes,
// first occurrence of each normalized prompt wins.
func (s *quizService) ListReviewQuestions(dbc dbctx.Context, groupID *uuid.UUID) ([]domain.Question, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	rows, err := s.quizzes.ListByOwner(dbc, rd.UserID, groupID)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := []domain.Question{}
	for _, quiz := range rows {
		for _, q := range quiz.ReviewQuestions {
			key := normalization.Normalize(q.Prompt)
			if _, dup := seen[key]; dup || key == "" {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *quizService) owned(dbc dbctx.Context, ownerID, id uuid.UUID) (*domain.Quiz, error) {
	quiz, err := s.quizzes.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if quiz == nil || quiz.OwnerID != ownerID {
		return nil, apierr.NotFound("Quiz not found")
	}
	return quiz, nil
}

func (s *quizService) requireGroup(dbc dbctx.Context, ownerID, groupID uuid.UUID) error {
	g, err := s.groups.GetByID(dbc, groupID)
	if err != nil {
		return fmt.Errorf("load group: %w", err)
	}
	if g == nil || g.OwnerID != ownerID {
		return apierr.BadRequest("Invalid group")
	}
	return nil
}

func cleanQuestions(in []domain.Question) datatypes.JSONSlice[domain.Question] {
	out := make(datatypes.JSONSlice[domain.Question], 0, len(in))
	for _, q := range in {
		q.Prompt = strings.TrimSpace(q.Prompt)
		q.Answer = strings.TrimSpace(q.Answer)
		if q.Prompt == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}
