package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/domain"
)

func SeedIdentity(tb testing.TB, tx *gorm.DB, anonymous bool, createdAt time.Time) *domain.Identity {
	tb.Helper()
	ident := &domain.Identity{
		ID:          uuid.New(),
		IsAnonymous: anonymous,
		CreatedAt:   createdAt,
		LastSeenAt:  createdAt,
	}
	if !anonymous {
		ident.Email = ident.ID.String()[:8] + "@example.com"
		ident.Provider = "email"
	}
	if err := tx.Create(ident).Error; err != nil {
		tb.Fatalf("seed identity: %v", err)
	}
	return ident
}

func SeedGroup(tb testing.TB, tx *gorm.DB, ownerID uuid.UUID, name string) *domain.Group {
	tb.Helper()
	g := &domain.Group{OwnerID: ownerID, Name: name}
	if err := tx.Create(g).Error; err != nil {
		tb.Fatalf("seed group: %v", err)
	}
	return g
}

func SeedQuiz(tb testing.TB, tx *gorm.DB, ownerID uuid.UUID, groupID *uuid.UUID, questions ...domain.Question) *domain.Quiz {
	tb.Helper()
	q := &domain.Quiz{
		OwnerID:   ownerID,
		GroupID:   groupID,
		Title:     "quiz",
		Questions: questions,
		AIGrading: true,
	}
	if err := tx.Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedChunk(tb testing.TB, tx *gorm.DB, userID uuid.UUID, fileID string, index int, content string, embedding []float32) *domain.FileChunk {
	tb.Helper()
	c := &domain.FileChunk{
		UserID:     userID,
		FileID:     fileID,
		ChunkIndex: index,
		Content:    content,
		Embedding:  embedding,
	}
	if err := tx.Create(c).Error; err != nil {
		tb.Fatalf("seed chunk: %v", err)
	}
	return c
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
