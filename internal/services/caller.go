package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
	"github.com/yungbote/quizlab-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizlab-backend/internal/platform/dbctx"
)

// requireCaller returns the authenticated caller attached by the auth
// middleware.
func requireCaller(dbc dbctx.Context) (*ctxutil.RequestData, error) {
	if dbc.Ctx == nil {
		return nil, apierr.Unauthorized("Unauthorized")
	}
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("Unauthorized")
	}
	return rd, nil
}

// inTx runs fn in the caller's transaction, or opens one.
func inTx(db *gorm.DB, dbc dbctx.Context, fn func(inner dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	ctx := ctxutil.Default(dbc.Ctx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
