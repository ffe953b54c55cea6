package bootstrap

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"

	"resume-optimizer/internal/analyses"
	"resume-optimizer/internal/llm"
	"resume-optimizer/internal/llm/groq"
	"resume-optimizer/internal/shared/auth"
	"resume-optimizer/internal/shared/config"
	"resume-optimizer/internal/shared/metrics"
	"resume-optimizer/internal/shared/server"
	"resume-optimizer/internal/shared/storage/db"
	"resume-optimizer/internal/shared/telemetry"
	"resume-optimizer/internal/usage"
	"resume-optimizer/internal/users"
)

// App holds the wired application.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
}

// Build wires every dependency from configuration. With no DATABASE_URL the
// app runs on in-memory stores, which is enough for local development.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			telemetry.Warn("db.connect_failed", map[string]any{"error": err.Error()})
		} else if err := db.RunMigrations(ctx, conn); err != nil {
			telemetry.Warn("db.migrate_failed", map[string]any{"error": err.Error()})
			_ = conn.Close()
		} else {
			sqlDB = conn
		}
	}
	if sqlDB == nil {
		telemetry.Info("storage.memory", map[string]any{"reason": "no database connection"})
	}

	var userRepo users.Repo
	var usageSvc *usage.Service
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(sqlDB), cfg.AnalysisLimit)
	} else {
		userRepo = users.NewMemoryRepo()
		usageSvc = usage.NewService(cfg.AnalysisLimit)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	llmClient := buildLLMClient(cfg)
	collector := metrics.NewCollector()

	userSvc := users.NewService(userRepo)
	userHandler := users.NewHandler(userSvc, tokens, usageSvc)

	analysisSvc := analyses.NewService(usageSvc, analyses.NewAnalyzer(llmClient), collector)
	analysisHandler := analyses.NewHandler(analysisSvc)

	router := server.NewRouter(server.Deps{
		Config:   cfg,
		Tokens:   tokens,
		Users:    userHandler,
		Analyses: analysisHandler,
		Metrics:  collector,
		DB:       sqlDB,
	})

	return &App{Config: cfg, Router: router, DB: sqlDB}, nil
}

func buildLLMClient(cfg config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "groq":
		client, err := groq.NewClient(cfg.LLMAPIKey, cfg.LLMModel)
		if err != nil {
			telemetry.Warn("llm.unconfigured", map[string]any{"error": err.Error()})
			return llm.PlaceholderClient{}
		}
		return client
	default:
		telemetry.Warn("llm.unknown_provider", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}
	}
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
