package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/quizlab-backend/internal/data/db"
	"github.com/yungbote/quizlab-backend/internal/platform/envutil"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/platform/openai"
	"github.com/yungbote/quizlab-backend/internal/platform/redisx"
	"github.com/yungbote/quizlab-backend/internal/ratelimit"
)

type Config struct {
	Env     string
	Port    string
	LogMode string

	DB     db.Config
	Redis  redisx.Config
	OpenAI openai.Config

	JWTSecretKey string

	JudgeURL     string
	JudgeToken   string
	JudgeTimeout time.Duration
	LexiconPath  string

	GuestQuizLimit     int
	GradeLimitGuest    int
	GradeLimitUser     int
	GenerateLimitGuest int
	GenerateLimitUser  int
	RateLimitWindow    time.Duration
	UnknownKeyPolicy   string

	AllowedOrigins []string

	GuestMaxAge     time.Duration
	GuestMaxDeletes int
}

// LoadEnvFile reads .env outside production. A missing file is fine.
func LoadEnvFile() {
	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		return
	}
	_ = godotenv.Load()
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Env:     envutil.String("APP_ENV", "development"),
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		DB: db.ConfigFromEnv(),
		Redis: redisx.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		OpenAI: openai.ConfigFromEnv(),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),

		JudgeURL:     envutil.String("JUDGE_URL", ""),
		JudgeToken:   envutil.String("JUDGE_TOKEN", ""),
		JudgeTimeout: time.Duration(envutil.Int("JUDGE_TIMEOUT_MS", 2500)) * time.Millisecond,
		LexiconPath:  envutil.String("GRADING_LEXICON_PATH", ""),

		GuestQuizLimit:     envutil.Int("GUEST_QUIZ_LIMIT", 2),
		GradeLimitGuest:    envutil.Int("GRADE_LIMIT_GUEST", 5),
		GradeLimitUser:     envutil.Int("GRADE_LIMIT_USER", 20),
		GenerateLimitGuest: envutil.Int("GENERATE_LIMIT_GUEST", 5),
		GenerateLimitUser:  envutil.Int("GENERATE_LIMIT_USER", 30),
		RateLimitWindow:    envutil.Duration("RATE_LIMIT_WINDOW", ratelimit.DefaultWindow),
		UnknownKeyPolicy:   envutil.String("RATE_LIMIT_UNKNOWN_POLICY", ratelimit.PolicyAllow),

		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),

		GuestMaxAge:     envutil.Duration("GUEST_MAX_AGE", 24*time.Hour),
		GuestMaxDeletes: envutil.Int("GUEST_MAX_DELETES", 200),
	}
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY is not set; every authenticated request will be rejected")
	}
	return cfg
}
