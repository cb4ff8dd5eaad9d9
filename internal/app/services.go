package app

import (
	"fmt"

	"github.com/yungbote/quizlab-backend/internal/data/repos"
	"github.com/yungbote/quizlab-backend/internal/generation"
	"github.com/yungbote/quizlab-backend/internal/grading"
	"github.com/yungbote/quizlab-backend/internal/identity"
	"github.com/yungbote/quizlab-backend/internal/novelty"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/ratelimit"
	"github.com/yungbote/quizlab-backend/internal/services"
)

type Services struct {
	Quizzes    services.QuizService
	Groups     services.GroupService
	Generation services.GenerationService
	Sources    services.SourceService
	Assist     services.AssistService
	Grading    services.GradingService
	Share      services.ShareService
	Accounts   services.AccountService

	Verifier *identity.Verifier
	Limiter  *ratelimit.Limiter
	Grader   *grading.Grader
}

func wireServices(log *logger.Logger, cfg Config, c Clients, rs repos.Set) (Services, error) {
	lexicon := grading.DefaultLexicon()
	if cfg.LexiconPath != "" {
		lx, err := grading.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return Services{}, fmt.Errorf("load grading lexicon: %w", err)
		}
		lexicon = lx
	}
	grader := grading.NewGrader(log, judge(cfg, c),
		grading.WithJudgeTimeout(cfg.JudgeTimeout),
		grading.WithLexicon(lexicon),
	)

	filter := novelty.NewFilter(log, c.AI)
	generator := generation.NewGenerator(log, c.AI, filter)
	retriever := generation.NewRetriever(log, c.AI, rs.Chunks)

	quizzes := services.NewQuizService(c.DB, log, rs, cfg.GuestQuizLimit)
	return Services{
		Quizzes:    quizzes,
		Groups:     services.NewGroupService(c.DB, log, rs),
		Generation: services.NewGenerationService(log, rs, quizzes, generator, retriever),
		Sources:    services.NewSourceService(log, rs, c.AI),
		Assist:     services.NewAssistService(log, generation.NewAssistant(c.AI)),
		Grading:    services.NewGradingService(log, rs, grader),
		Share:      services.NewShareService(c.DB, log, rs),
		Accounts:   services.NewAccountService(c.DB, log, rs, quizzes),

		Verifier: identity.NewVerifier(cfg.JWTSecretKey),
		Limiter: ratelimit.NewLimiter(log, rateLimitStore(c),
			ratelimit.WithUnknownPolicy(cfg.UnknownKeyPolicy),
		),
		Grader: grader,
	}, nil
}
