package app

import (
	"github.com/gin-gonic/gin"

	httpX "github.com/yungbote/quizlab-backend/internal/http"
	httpH "github.com/yungbote/quizlab-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quizlab-backend/internal/http/middleware"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, clients Clients, svc Services) *httpX.Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return httpX.NewServer(httpX.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,

		AuthMiddleware:      httpMW.NewAuthMiddleware(log, svc.Verifier, svc.Accounts),
		RateLimitMiddleware: httpMW.NewRateLimitMiddleware(log, svc.Limiter),
		GradeLimits: httpMW.Limits{
			Guest:  cfg.GradeLimitGuest,
			User:   cfg.GradeLimitUser,
			Window: cfg.RateLimitWindow,
		},
		GenerateLimits: httpMW.Limits{
			Guest:  cfg.GenerateLimitGuest,
			User:   cfg.GenerateLimitUser,
			Window: cfg.RateLimitWindow,
		},

		QuizHandler:       httpH.NewQuizHandler(log, svc.Quizzes),
		GroupHandler:      httpH.NewGroupHandler(log, svc.Groups),
		GenerationHandler: httpH.NewGenerationHandler(log, svc.Generation, svc.Sources, svc.Assist),
		GradingHandler:    httpH.NewGradingHandler(log, svc.Grading),
		ShareHandler:      httpH.NewShareHandler(log, svc.Share),
		AccountHandler:    httpH.NewAccountHandler(log, svc.Accounts),
		HealthHandler:     httpH.NewHealthHandler(clients.DB),
	})
}
