package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/data/repos"
	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

const MaxGroupNameChars = 80

// GroupView is a group with its emptiness derived at read time.
type GroupView struct {
	*domain.Group
	QuizCount int64 `json:"quiz_count"`
	IsEmpty   bool  `json:"is_empty"`
}

type GroupService interface {
	Create(dbc dbctx.Context, name string) (*domain.Group, error)
	List(dbc dbctx.Context) ([]GroupView, error)
	Rename(dbc dbctx.Context, id uuid.UUID, name string) (*domain.Group, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	IsEmpty(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type groupService struct {
	db      *gorm.DB
	log     *logger.Logger
	groups  repos.GroupRepo
	quizzes repos.QuizRepo
}

func NewGroupService(db *gorm.DB, baseLog *logger.Logger, rs repos.Set) GroupService {
	return &groupService{
		db:      db,
		log:     baseLog.With("service", "GroupService"),
		groups:  rs.Groups,
		quizzes: rs.Quizzes,
	}
}

func cleanGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apierr.BadRequest("Group name is required")
	}
	if r := []rune(name); len(r) > MaxGroupNameChars {
		name = string(r[:MaxGroupNameChars])
	}
	return name, nil
}

func (s *groupService) Create(dbc dbctx.Context, name string) (*domain.Group, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	name, err = cleanGroupName(name)
	if err != nil {
		return nil, err
	}
	return s.groups.Create(dbc, &domain.Group{OwnerID: rd.UserID, Name: name})
}

func (s *groupService) List(dbc dbctx.Context) ([]GroupView, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	rows, err := s.groups.ListByOwner(dbc, rd.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]GroupView, 0, len(rows))
	for _, g := range rows {
		n, err := s.quizzes.CountByGroup(dbc, g.ID)
		if err != nil {
			return nil, fmt.Errorf("count group quizzes: %w", err)
		}
		out = append(out, GroupView{Group: g, QuizCount: n, IsEmpty: n == 0})
	}
	return out, nil
}

func (s *groupService) Rename(dbc dbctx.Context, id uuid.UUID, name string) (*domain.Group, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	name, err = cleanGroupName(name)
	if err != nil {
		return nil, err
	}
	g, err := s.owned(dbc, rd.UserID, id)
	if err != nil {
		return nil, err
	}
	if err := s.groups.Rename(dbc, id, name); err != nil {
		return nil, fmt.Errorf("rename group: %w", err)
	}
	g.Name = name
	return g, nil
}

// Delete removes the group and detaches its quizzes.
func (s *groupService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	rd, err := requireCaller(dbc)
	if err != nil {
		return err
	}
	return inTx(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.owned(inner, rd.UserID, id); err != nil {
			return err
		}
		if err := s.quizzes.DetachGroup(inner, id); err != nil {
			return fmt.Errorf("detach quizzes: %w", err)
		}
		return s.groups.Delete(inner, id)
	})
}

func (s *groupService) IsEmpty(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return false, err
	}
	if _, err := s.owned(dbc, rd.UserID, id); err != nil {
		return false, err
	}
	n, err := s.quizzes.CountByGroup(dbc, id)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (s *groupService) owned(dbc dbctx.Context, ownerID, id uuid.UUID) (*domain.Group, error) {
	g, err := s.groups.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}
	if g == nil || g.OwnerID != ownerID {
		return nil, apierr.NotFound("Group not found")
	}
	return g, nil
}
