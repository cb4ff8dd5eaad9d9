package accounts

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

// ownedTable is a table with a column naming the owning identity.
type ownedTable struct {
	Name   string
	Column string
	Model  any
}

var ownedTables = []ownedTable{
	{Name: "groups", Column: "owner_id", Model: &domain.Group{}},
	{Name: "quizzes", Column: "owner_id", Model: &domain.Quiz{}},
	{Name: "share_links", Column: "owner_id", Model: &domain.ShareLink{}},
	{Name: "quiz_attempts", Column: "owner_id", Model: &domain.ShareAttempt{}},
	{Name: "quiz_scores", Column: "owner_id", Model: &domain.ScoreAggregate{}},
	{Name: "file_chunks", Column: "user_id", Model: &domain.FileChunk{}},
}

// OwnedTableNames lists the logical table names reported in counts.
func OwnedTableNames() []string {
	out := make([]string, 0, len(ownedTables))
	for _, t := range ownedTables {
		out = append(out, t.Name)
	}
	return out
}

type OwnershipRepo interface {
	CountOwned(dbc dbctx.Context, ownerID uuid.UUID) (map[string]int64, error)
	// Reassign moves every row owned by from to to. Callers wrap it in a
	// transaction; rerunning it finds nothing left to move.
	Reassign(dbc dbctx.Context, from, to uuid.UUID) (map[string]int64, error)
	DeleteOwned(dbc dbctx.Context, ownerID uuid.UUID) (map[string]int64, error)
}

type ownershipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOwnershipRepo(db *gorm.DB, baseLog *logger.Logger) OwnershipRepo {
	repoLog := baseLog.With("repo", "OwnershipRepo")
	return &ownershipRepo{db: db, log: repoLog}
}

func (r *ownershipRepo) CountOwned(dbc dbctx.Context, ownerID uuid.UUID) (map[string]int64, error) {
	out := make(map[string]int64, len(ownedTables))
	for _, t := range ownedTables {
		var n int64
		if err := dbc.DB(r.db).Model(t.Model).Where(t.Column+" = ?", ownerID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", t.Name, err)
		}
		out[t.Name] = n
	}
	return out, nil
}

func (r *ownershipRepo) Reassign(dbc dbctx.Context, from, to uuid.UUID) (map[string]int64, error) {
	out := make(map[string]int64, len(ownedTables))
	for _, t := range ownedTables {
		res := dbc.DB(r.db).Model(t.Model).Where(t.Column+" = ?", from).Update(t.Column, to)
		if res.Error != nil {
			return nil, fmt.Errorf("reassign %s: %w", t.Name, res.Error)
		}
		out[t.Name] = res.RowsAffected
	}
	return out, nil
}

func (r *ownershipRepo) DeleteOwned(dbc dbctx.Context, ownerID uuid.UUID) (map[string]int64, error) {
	out := make(map[string]int64, len(ownedTables))
	// Children first so nothing is left pointing at a deleted quiz.
	for i := len(ownedTables) - 1; i >= 0; i-- {
		t := ownedTables[i]
		res := dbc.DB(r.db).Where(t.Column+" = ?", ownerID).Delete(t.Model)
		if res.Error != nil {
			return nil, fmt.Errorf("delete %s: %w", t.Name, res.Error)
		}
		out[t.Name] = res.RowsAffected
	}
	return out, nil
}
