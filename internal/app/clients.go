package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/quizlab-backend/internal/data/db"
	"github.com/yungbote/quizlab-backend/internal/grading"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/platform/openai"
	"github.com/yungbote/quizlab-backend/internal/platform/redisx"
	"github.com/yungbote/quizlab-backend/internal/ratelimit"
)

var errAIUnavailable = errors.New("AI provider is not configured")

// unavailableAI stands in for the model client when no key is set, so
// grading still works locally and model-backed endpoints fail cleanly.
type unavailableAI struct{}

func (unavailableAI) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errAIUnavailable
}

func (unavailableAI) GenerateText(context.Context, string, string) (string, error) {
	return "", errAIUnavailable
}

type Clients struct {
	DB    *gorm.DB
	Redis *goredis.Client
	AI    openai.Client
	// AIConfigured is false when AI is the unavailable stand-in.
	AIConfigured bool
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	dbService, err := db.Open(log, cfg.DB)
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		return Clients{}, fmt.Errorf("automigrate: %w", err)
	}

	rdb, err := redisx.Open(ctx, log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	out := Clients{DB: dbService.DB(), Redis: rdb, AI: unavailableAI{}}
	ai, err := openai.NewClient(log, cfg.OpenAI)
	if err != nil {
		log.Warn("OpenAI client disabled", "error", err)
	} else {
		out.AI = ai
		out.AIConfigured = true
	}
	return out, nil
}

// rateLimitStore prefers Redis when configured.
func rateLimitStore(c Clients) ratelimit.Store {
	if c.Redis != nil {
		return ratelimit.NewRedisStore(c.Redis)
	}
	return ratelimit.NewGormStore(c.DB)
}

// judge picks the remote judge when JUDGE_URL is set, else the model judge.
func judge(cfg Config, c Clients) grading.Judge {
	if cfg.JudgeURL != "" {
		return grading.NewHTTPJudge(cfg.JudgeURL, cfg.JudgeToken, nil)
	}
	if !c.AIConfigured {
		return nil
	}
	return grading.NewLLMJudge(c.AI)
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
