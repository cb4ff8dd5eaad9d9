package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/quizlab-backend/internal/data/repos"
	httpX "github.com/yungbote/quizlab-backend/internal/http"
	"github.com/yungbote/quizlab-backend/internal/observability"
	"github.com/yungbote/quizlab-backend/internal/platform/envutil"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
)

const serviceName = "quizlab-backend"

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    repos.Set
	Services Services
	Server   *httpX.Server

	shutdownOTel func(context.Context) error
}

// New loads configuration and wires every dependency. The server is built
// too, so CLI callers can use Services without serving.
func New(ctx context.Context) (*App, error) {
	LoadEnvFile()
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Env,
	})

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	reposet := repos.NewSet(clients.DB, log)
	serviceset, err := wireServices(log, cfg, clients, reposet)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       wireServer(log, cfg, clients, serviceset),
		shutdownOTel: shutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.shutdownOTel(ctx)
		cancel()
	}
	a.Clients.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
