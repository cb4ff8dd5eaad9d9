package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/quizlab-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quizlab-backend/internal/http/middleware"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/ratelimit"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware      *httpMW.AuthMiddleware
	RateLimitMiddleware *httpMW.RateLimitMiddleware
	GradeLimits         httpMW.Limits
	GenerateLimits      httpMW.Limits

	QuizHandler       *httpH.QuizHandler
	GroupHandler      *httpH.GroupHandler
	GenerationHandler *httpH.GenerationHandler
	GradingHandler    *httpH.GradingHandler
	ShareHandler      *httpH.ShareHandler
	AccountHandler    *httpH.AccountHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Sharing (public)
		if cfg.ShareHandler != nil {
			api.GET("/share/:slug", cfg.ShareHandler.GetShared)
			api.POST("/share/:slug/attempts", cfg.ShareHandler.RecordAttempt)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		limit := func(endpoint string, limits httpMW.Limits) gin.HandlerFunc {
			if cfg.RateLimitMiddleware == nil {
				return func(c *gin.Context) { c.Next() }
			}
			return cfg.RateLimitMiddleware.Limit(endpoint, limits)
		}

		// Account
		if cfg.AccountHandler != nil {
			protected.GET("/me", cfg.AccountHandler.GetMe)
			protected.POST("/adopt", cfg.AccountHandler.Adopt)
			protected.DELETE("/account", cfg.AccountHandler.DeleteAccount)
		}

		// Quizzes
		if cfg.QuizHandler != nil {
			protected.GET("/quizzes", cfg.QuizHandler.ListQuizzes)
			protected.POST("/quizzes", cfg.QuizHandler.CreateQuiz)
			protected.GET("/quizzes/:id", cfg.QuizHandler.GetQuiz)
			protected.PATCH("/quizzes/:id", cfg.QuizHandler.UpdateQuiz)
			protected.DELETE("/quizzes/:id", cfg.QuizHandler.DeleteQuiz)
			protected.POST("/quizzes/:id/review", cfg.QuizHandler.AddReview)
			protected.DELETE("/quizzes/:id/review", cfg.QuizHandler.RemoveReview)
			protected.GET("/review", cfg.QuizHandler.ListReview)
		}

		// Groups
		if cfg.GroupHandler != nil {
			protected.GET("/groups", cfg.GroupHandler.ListGroups)
			protected.POST("/groups", cfg.GroupHandler.CreateGroup)
			protected.PATCH("/groups/:id", cfg.GroupHandler.RenameGroup)
			protected.DELETE("/groups/:id", cfg.GroupHandler.DeleteGroup)
		}

		// Generation
		if cfg.GenerationHandler != nil {
			protected.POST("/quizzes/generate", limit(ratelimit.EndpointGenerateQuiz, cfg.GenerateLimits), cfg.GenerationHandler.GenerateQuiz)
			protected.POST("/sources", cfg.GenerationHandler.IndexSource)
			protected.POST("/hints", cfg.GenerationHandler.Hint)
			protected.POST("/prompt-suggestions", cfg.GenerationHandler.PromptSuggestions)
		}

		// Grading
		if cfg.GradingHandler != nil {
			protected.POST("/grade-answer", limit(ratelimit.EndpointGradeAnswer, cfg.GradeLimits), cfg.GradingHandler.GradeAnswer)
			protected.POST("/quizzes/:id/grade", cfg.GradingHandler.GradeQuizQuestion)
		}

		// Sharing (owner)
		if cfg.ShareHandler != nil {
			protected.POST("/quizzes/:id/share", cfg.ShareHandler.CreateLink)
			protected.PATCH("/share-links/:id", cfg.ShareHandler.SetEnabled)
			protected.GET("/quizzes/:id/scores", cfg.ShareHandler.ListScores)
		}
	}

	return r
}
