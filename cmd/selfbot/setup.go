package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/selfbot/internal/config"
	"github.com/sandevgo/selfbot/internal/providers/directory"
	"github.com/sandevgo/selfbot/internal/providers/llm"
	"github.com/sandevgo/selfbot/internal/service/chat"
	"github.com/sandevgo/selfbot/internal/service/intent"
	"github.com/sandevgo/selfbot/internal/service/memory"
	"github.com/sandevgo/selfbot/internal/storage/sqlite"
	"github.com/sandevgo/selfbot/internal/transport/cli"
	"github.com/sandevgo/selfbot/internal/transport/telegram"
	"github.com/sandevgo/selfbot/pkg/log"
	"github.com/sandevgo/selfbot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	ollamaCfg := config.NewOllamaConfig(ctx)
	dirCfg := config.NewDirectoryConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	memoryRepo := sqlite.NewMemoryRepo(db)
	sessionRepo := sqlite.NewSessionRepo(db)
	identityRepo := sqlite.NewIdentityRepo(db)
	if err := identityRepo.EnsureDefault(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed identity profile")
	}

	// 3. Providers
	aiProvider := llm.NewOllama(ollamaCfg.BaseURL)
	if models, err := aiProvider.Models(ctx); err != nil {
		logger.Warn().Err(err).Msg("generation backend unreachable, replies will fail until it comes up")
	} else {
		logger.Info().Strs("models", models).Msg("generation backend is up")
	}
	dirClient := directory.NewClient(dirCfg.BaseURL)

	// 4. Orchestrator
	orchestrator := chat.NewOrchestrator(chat.Deps{
		Memories:  memoryRepo,
		Sessions:  sessionRepo,
		Directory: dirClient,
		AI:        aiProvider,
		Commands:  memory.NewCommandDetector(memoryRepo),
		Intents:   intent.NewDetector(dirClient),
		Observer:  memory.NewObserver(memoryRepo),
		Prompts:   chat.NewPromptBuilder(ctx, identityRepo, appCfg.HistoryWindowSize, appCfg.PromptTokenBudget),
		Model:     ollamaCfg.Model,
	})

	// 5. Transports
	if appCfg.EnableCLI {
		rl, err := cli.NewReadLine(cli.Deps{
			Cfg:       appCfg,
			Orch:      orchestrator,
			Memories:  memoryRepo,
			Sessions:  sessionRepo,
			AI:        aiProvider,
			OwnerID:   dirCfg.OwnerIDString(),
			OwnerName: dirCfg.OwnerName,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize CLI transport")
		}
		services = append(services, rl)
	}

	if appCfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, orchestrator, dirCfg.OwnerIDString(), dirCfg.OwnerName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
