package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/data/repos"
	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

const (
	SlugLength             = 10
	MaxParticipantNameChar = 80
)

// SharedQuiz is the public view of a shared quiz. It carries no owner data.
type SharedQuiz struct {
	Title     string            `json:"title"`
	Questions []domain.Question `json:"questions"`
}

type RecordAttemptInput struct {
	ParticipantName   string     `json:"participant_name"`
	ParticipantUserID *uuid.UUID `json:"participant_user_id,omitempty"`
	Score             float64    `json:"score"`
}

type AttemptResult struct {
	Attempt   *domain.ShareAttempt   `json:"attempt"`
	Aggregate *domain.ScoreAggregate `json:"aggregate,omitempty"`
}

type ScoreBoard struct {
	Scores   []*domain.ScoreAggregate `json:"scores"`
	Attempts []*domain.ShareAttempt   `json:"attempts"`
}

type ShareService interface {
	CreateOrGetLink(dbc dbctx.Context, quizID uuid.UUID) (*domain.ShareLink, error)
	SetEnabled(dbc dbctx.Context, linkID uuid.UUID, enabled bool) (*domain.ShareLink, error)
	GetShared(dbc dbctx.Context, slug string) (*SharedQuiz, error)
	RecordAttempt(dbc dbctx.Context, slug string, in RecordAttemptInput) (*AttemptResult, error)
	ListScores(dbc dbctx.Context, quizID uuid.UUID) (*ScoreBoard, error)
}

type shareService struct {
	db       *gorm.DB
	log      *logger.Logger
	quizzes  repos.QuizRepo
	links    repos.ShareLinkRepo
	attempts repos.AttemptRepo
	scores   repos.ScoreRepo
	newSlug  func() (string, error)
}

func NewShareService(db *gorm.DB, baseLog *logger.Logger, rs repos.Set) ShareService {
	return &shareService{
		db:       db,
		log:      baseLog.With("service", "ShareService"),
		quizzes:  rs.Quizzes,
		links:    rs.ShareLinks,
		attempts: rs.Attempts,
		scores:   rs.Scores,
		newSlug:  func() (string, error) { return gonanoid.New(SlugLength) },
	}
}

func (s *shareService) CreateOrGetLink(dbc dbctx.Context, quizID uuid.UUID) (*domain.ShareLink, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	var out *domain.ShareLink
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.ownedQuiz(inner, rd.UserID, quizID); err != nil {
			return err
		}
		existing, err := s.links.GetEnabledByQuiz(inner, quizID)
		if err != nil {
			return fmt.Errorf("load share link: %w", err)
		}
		if existing != nil {
			out = existing
			return nil
		}
		slug, err := s.newSlug()
		if err != nil {
			return fmt.Errorf("generate slug: %w", err)
		}
		out, err = s.links.Create(inner, &domain.ShareLink{
			QuizID:    quizID,
			OwnerID:   rd.UserID,
			Slug:      slug,
			IsEnabled: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *shareService) SetEnabled(dbc dbctx.Context, linkID uuid.UUID, enabled bool) (*domain.ShareLink, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	link, err := s.links.GetByID(dbc, linkID)
	if err != nil {
		return nil, fmt.Errorf("load share link: %w", err)
	}
	if link == nil || link.OwnerID != rd.UserID {
		return nil, apierr.NotFound("Share link not found")
	}
	if err := s.links.SetEnabled(dbc, linkID, enabled); err != nil {
		return nil, fmt.Errorf("update share link: %w", err)
	}
	link.IsEnabled = enabled
	return link, nil
}

// GetShared is public; it resolves an enabled slug to the quiz questions.
func (s *shareService) GetShared(dbc dbctx.Context, slug string) (*SharedQuiz, error) {
	_, quiz, err := s.resolve(dbc, slug)
	if err != nil {
		return nil, err
	}
	return &SharedQuiz{Title: quiz.Title, Questions: quiz.Questions}, nil
}

// RecordAttempt appends an attempt numbered per participant and, when the
// participant is signed in, upserts their score aggregate.
func (s *shareService) RecordAttempt(dbc dbctx.Context, slug string, in RecordAttemptInput) (*AttemptResult, error) {
	name := clip(strings.TrimSpace(in.ParticipantName), MaxParticipantNameChar)
	if name == "" {
		return nil, apierr.BadRequest("Participant name is required")
	}
	if math.IsNaN(in.Score) || math.IsInf(in.Score, 0) {
		return nil, apierr.BadRequest("Invalid score")
	}
	score := int(math.Round(in.Score))
	if in.ParticipantUserID != nil && *in.ParticipantUserID == uuid.Nil {
		in.ParticipantUserID = nil
	}

	out := &AttemptResult{}
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		link, quiz, err := s.resolve(inner, slug)
		if err != nil {
			return err
		}
		last, err := s.attempts.MaxAttemptNumber(inner, link.OwnerID, quiz.ID, in.ParticipantUserID, name)
		if err != nil {
			return fmt.Errorf("load attempt number: %w", err)
		}
		out.Attempt, err = s.attempts.Create(inner, &domain.ShareAttempt{
			OwnerID:           link.OwnerID,
			QuizID:            quiz.ID,
			ParticipantName:   name,
			ParticipantUserID: in.ParticipantUserID,
			AttemptNumber:     last + 1,
			Score:             score,
		})
		if err != nil {
			return fmt.Errorf("record attempt: %w", err)
		}
		if in.ParticipantUserID == nil {
			return nil
		}
		out.Aggregate, err = s.scores.RecordAttempt(inner, link.OwnerID, quiz.ID, *in.ParticipantUserID, name, score)
		if err != nil {
			return fmt.Errorf("update score: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *shareService) ListScores(dbc dbctx.Context, quizID uuid.UUID) (*ScoreBoard, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedQuiz(dbc, rd.UserID, quizID); err != nil {
		return nil, err
	}
	scores, err := s.scores.ListByQuiz(dbc, quizID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListByQuiz(dbc, quizID)
	if err != nil {
		return nil, err
	}
	return &ScoreBoard{Scores: scores, Attempts: attempts}, nil
}

func (s *shareService) resolve(dbc dbctx.Context, slug string) (*domain.ShareLink, *domain.Quiz, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil, apierr.BadRequest("Invalid share link")
	}
	link, err := s.links.GetBySlug(dbc, slug)
	if err != nil {
		return nil, nil, fmt.Errorf("load share link: %w", err)
	}
	if link == nil || !link.IsEnabled {
		return nil, nil, apierr.BadRequest("Invalid share link")
	}
	quiz, err := s.quizzes.GetByID(dbc, link.QuizID)
	if err != nil {
		return nil, nil, fmt.Errorf("load quiz: %w", err)
	}
	if quiz == nil {
		return nil, nil, apierr.BadRequest("Invalid share link")
	}
	return link, quiz, nil
}

func (s *shareService) ownedQuiz(dbc dbctx.Context, ownerID, quizID uuid.UUID) (*domain.Quiz, error) {
	quiz, err := s.quizzes.GetByID(dbc, quizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if quiz == nil || quiz.OwnerID != ownerID {
		return nil, apierr.NotFound("Quiz not found")
	}
	return quiz, nil
}
