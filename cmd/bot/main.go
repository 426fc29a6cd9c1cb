package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xaenox/heartmatch/internal/bot"
	"github.com/xaenox/heartmatch/internal/chat"
	"github.com/xaenox/heartmatch/internal/models"
	"github.com/xaenox/heartmatch/internal/replier"
	"github.com/xaenox/heartmatch/internal/session"
	"github.com/xaenox/heartmatch/internal/storage"
	"github.com/xaenox/heartmatch/pkg/config"
)

const defaultConfigPath = "config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to the YAML config file (empty to skip)")
	flag.Parse()

	// Load configuration. Only an explicitly passed file has to exist.
	load := config.LoadConfigIfExists
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			load = config.LoadConfig
		}
	})
	cfg, err := load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	// Initialize logger
	logger, _ := zap.NewProduction()
	if cfg.Log.Development {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	defer store.Close()

	// Bot replies come from the chat model when an API key is configured.
	var rep replier.Replier = replier.NewCannedReplier()
	if cfg.OpenAI.Enabled() {
		logger.Info("Using GPT bot replies", zap.String("model", cfg.OpenAI.Model))
		rep = replier.NewGPTReplier(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			rep,
			logger,
		)
	}

	var b *bot.Bot
	sessions := session.NewManager(store, logger,
		func(id int64, from models.ChatBot, msg models.Message) { b.NotifyReply(id, from, msg) },
		[]chat.Option{
			chat.WithReplyDelay(cfg.Chat.ReplyDelay),
			chat.WithRecentLimit(cfg.Chat.RecentLimit),
			chat.WithReplier(rep),
		},
	)
	defer sessions.Close()

	b, err = bot.New(cfg.Telegram.Token, sessions, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	if err := b.Start(ctx); err != nil {
		logger.Error("Bot error", zap.Error(err))
	}
	// In-flight handlers may still send; drain them before sessions and storage close.
	b.Wait()
	logger.Info("Shutting down")
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		logger.Info("Using SQLite storage", zap.String("path", cfg.Storage.SQLitePath))
		return storage.NewSQLiteStorage(ctx, cfg.Storage.SQLitePath, logger)
	case config.DriverPostgres:
		logger.Info("Using PostgreSQL storage", zap.String("host", cfg.Database.Host))
		return storage.NewPostgresStorage(ctx, storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, logger)
	default:
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}
}
