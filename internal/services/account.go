package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/data/repos"
	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/identity"
	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/quota"
)

type AdoptInput struct {
	OldID         uuid.UUID `json:"old_id"`
	DeleteOldAuth *bool     `json:"delete_old_auth,omitempty"`
}

type AdoptResult struct {
	Moved              map[string]int64 `json:"moved"`
	Before             OwnedCounts      `json:"before"`
	After              OwnedCounts      `json:"after"`
	DeletedOldIdentity bool             `json:"deleted_old_identity"`
	Warning            string           `json:"warning,omitempty"`
	Note               string           `json:"note,omitempty"`
}

type OwnedCounts struct {
	Old map[string]int64 `json:"old"`
	New map[string]int64 `json:"new"`
}

type Me struct {
	Identity *domain.Identity `json:"identity"`
	Quota    quota.Decision   `json:"quota"`
}

type CleanupResult struct {
	Scanned int   `json:"scanned"`
	Deleted int   `json:"deleted"`
	Rows    int64 `json:"rows"`
}

type AccountService interface {
	// Touch mirrors a verified caller into the identities table.
	Touch(ctx context.Context, c *identity.Caller) error
	Me(dbc dbctx.Context) (*Me, error)
	Adopt(dbc dbctx.Context, in AdoptInput) (*AdoptResult, error)
	DeleteAccount(dbc dbctx.Context) (map[string]int64, error)
	CleanupGuests(ctx context.Context, maxAge time.Duration, maxDeletes int) (*CleanupResult, error)
}

type accountService struct {
	db         *gorm.DB
	log        *logger.Logger
	identities repos.IdentityRepo
	ownership  repos.OwnershipRepo
	quizzes    QuizService
	now        func() time.Time
}

func NewAccountService(db *gorm.DB, baseLog *logger.Logger, rs repos.Set, quizzes QuizService) AccountService {
	return &accountService{
		db:         db,
		log:        baseLog.With("service", "AccountService"),
		identities: rs.Identities,
		ownership:  rs.Ownership,
		quizzes:    quizzes,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *accountService) Touch(ctx context.Context, c *identity.Caller) error {
	if c == nil || c.ID == uuid.Nil {
		return apierr.Unauthorized("Unauthorized")
	}
	return s.identities.Upsert(dbctx.Context{Ctx: ctx}, &domain.Identity{
		ID:          c.ID,
		Email:       c.Email,
		Provider:    c.Provider,
		IsAnonymous: c.IsAnonymous,
	})
}

func (s *accountService) Me(dbc dbctx.Context) (*Me, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	ident, err := s.identities.GetByID(dbc, rd.UserID)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		ident = &domain.Identity{ID: rd.UserID, Email: rd.Email, IsAnonymous: rd.IsAnonymous}
	}
	decision, err := s.quizzes.CheckQuota(dbc)
	if err != nil {
		return nil, err
	}
	return &Me{Identity: ident, Quota: decision}, nil
}

// Adopt moves every row owned by a guest identity to the caller. Re-running
// it moves nothing. The old identity is deleted only when the mirror shows it
// was anonymous, and a failed delete is reported as a warning.
func (s *accountService) Adopt(dbc dbctx.Context, in AdoptInput) (*AdoptResult, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	if in.OldID == uuid.Nil {
		return nil, apierr.BadRequest("Missing old_id")
	}
	newID := rd.UserID
	if in.OldID == newID {
		return &AdoptResult{Moved: map[string]int64{}, Note: "old and new identity are the same"}, nil
	}
	deleteOld := true
	if in.DeleteOldAuth != nil {
		deleteOld = *in.DeleteOldAuth
	}

	before, err := s.countBoth(dbc, in.OldID, newID)
	if err != nil {
		return nil, err
	}

	var moved map[string]int64
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		moved, err = s.ownership.Reassign(inner, in.OldID, newID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reassign ownership: %w", err)
	}

	out := &AdoptResult{Moved: moved, Before: before}
	if deleteOld {
		out.DeletedOldIdentity, out.Warning = s.deleteGuest(dbc, in.OldID)
	}

	after, err := s.countBoth(dbc, in.OldID, newID)
	if err != nil {
		return nil, err
	}
	out.After = after
	s.log.Info("Guest adopted", "old_id", in.OldID, "user_id", newID, "moved", moved, "deleted_old", out.DeletedOldIdentity)
	return out, nil
}

func (s *accountService) deleteGuest(dbc dbctx.Context, oldID uuid.UUID) (bool, string) {
	ident, err := s.identities.GetByID(dbc, oldID)
	if err != nil {
		s.log.Warn("Adoption guest lookup failed", "old_id", oldID, "error", err)
		return false, "could not verify old identity; not deleted"
	}
	if ident == nil || !ident.IsAnonymous {
		return false, "old identity is not a guest; not deleted"
	}
	if err := s.identities.Delete(dbc, oldID); err != nil {
		s.log.Warn("Adoption guest delete failed", "old_id", oldID, "error", err)
		return false, "data moved but old guest identity could not be deleted"
	}
	return true, ""
}

func (s *accountService) countBoth(dbc dbctx.Context, oldID, newID uuid.UUID) (OwnedCounts, error) {
	var out OwnedCounts
	if dbc.Tx != nil {
		var err error
		if out.Old, err = s.ownership.CountOwned(dbc, oldID); err != nil {
			return out, err
		}
		out.New, err = s.ownership.CountOwned(dbc, newID)
		return out, err
	}
	g, ctx := errgroup.WithContext(dbc.Ctx)
	g.Go(func() error {
		var err error
		out.Old, err = s.ownership.CountOwned(dbctx.Context{Ctx: ctx}, oldID)
		return err
	})
	g.Go(func() error {
		var err error
		out.New, err = s.ownership.CountOwned(dbctx.Context{Ctx: ctx}, newID)
		return err
	})
	if err := g.Wait(); err != nil {
		return OwnedCounts{}, fmt.Errorf("count owned rows: %w", err)
	}
	return out, nil
}

func (s *accountService) DeleteAccount(dbc dbctx.Context) (map[string]int64, error) {
	rd, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	var deleted map[string]int64
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		return s.purge(inner, rd.UserID, &deleted)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Account deleted", "user_id", rd.UserID, "rows", deleted)
	return deleted, nil
}

// CleanupGuests deletes anonymous identities created more than maxAge ago,
// oldest first, together with everything they own.
func (s *accountService) CleanupGuests(ctx context.Context, maxAge time.Duration, maxDeletes int) (*CleanupResult, error) {
	if maxAge <= 0 {
		return nil, apierr.BadRequest("age must be positive")
	}
	cutoff := s.now().Add(-maxAge)
	stale, err := s.identities.ListStaleAnonymous(dbctx.Context{Ctx: ctx}, cutoff, maxDeletes)
	if err != nil {
		return nil, fmt.Errorf("list stale guests: %w", err)
	}
	res := &CleanupResult{Scanned: len(stale)}
	for _, ident := range stale {
		var deleted map[string]int64
		err := inTx(s.db, dbctx.Context{Ctx: ctx}, func(inner dbctx.Context) error {
			return s.purge(inner, ident.ID, &deleted)
		})
		if err != nil {
			s.log.Warn("Guest cleanup failed", "user_id", ident.ID, "error", err)
			continue
		}
		res.Deleted++
		for _, n := range deleted {
			res.Rows += n
		}
	}
	s.log.Info("Guest cleanup finished", "scanned", res.Scanned, "deleted", res.Deleted, "rows", res.Rows)
	return res, nil
}

func (s *accountService) purge(dbc dbctx.Context, id uuid.UUID, deleted *map[string]int64) error {
	rows, err := s.ownership.DeleteOwned(dbc, id)
	if err != nil {
		return err
	}
	if err := s.identities.Delete(dbc, id); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	*deleted = rows
	return nil
}
