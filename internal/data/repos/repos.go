package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/data/repos/accounts"
	"github.com/yungbote/quizlab-backend/internal/data/repos/quizzes"
	"github.com/yungbote/quizlab-backend/internal/data/repos/sharing"
	"github.com/yungbote/quizlab-backend/internal/data/repos/sources"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

type QuizRepo = quizzes.QuizRepo
type GroupRepo = quizzes.GroupRepo

type ShareLinkRepo = sharing.ShareLinkRepo
type AttemptRepo = sharing.AttemptRepo
type ScoreRepo = sharing.ScoreRepo

type FileChunkRepo = sources.FileChunkRepo

type IdentityRepo = accounts.IdentityRepo
type OwnershipRepo = accounts.OwnershipRepo

// Set is every repository the services need, built over one connection.
type Set struct {
	Quizzes    QuizRepo
	Groups     GroupRepo
	ShareLinks ShareLinkRepo
	Attempts   AttemptRepo
	Scores     ScoreRepo
	Chunks     FileChunkRepo
	Identities IdentityRepo
	Ownership  OwnershipRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Quizzes:    quizzes.NewQuizRepo(db, log),
		Groups:     quizzes.NewGroupRepo(db, log),
		ShareLinks: sharing.NewShareLinkRepo(db, log),
		Attempts:   sharing.NewAttemptRepo(db, log),
		Scores:     sharing.NewScoreRepo(db, log),
		Chunks:     sources.NewFileChunkRepo(db, log),
		Identities: accounts.NewIdentityRepo(db, log),
		Ownership:  accounts.NewOwnershipRepo(db, log),
	}
}
