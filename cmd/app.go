package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/ai"
	"github.com/spigell/tradematch/internal/ai/gemini"
	"github.com/spigell/tradematch/internal/board"
	"github.com/spigell/tradematch/internal/identity"
	"github.com/spigell/tradematch/internal/logger"
	"github.com/spigell/tradematch/internal/matching"
	"github.com/spigell/tradematch/internal/model"
	"github.com/spigell/tradematch/internal/secrets"
	"github.com/spigell/tradematch/internal/storage"
)

// application is everything a command needs to act on the board.
type application struct {
	config   *Config
	logger   *zap.Logger
	store    *storage.Store
	board    *board.Service
	resolver *identity.Static
}

func (a *application) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing storage", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// caller resolves token the same way the HTTP API does.
func (a *application) caller(ctx context.Context, token string) (model.Caller, error) {
	return a.resolver.Resolve(ctx, strings.TrimSpace(token))
}

// setup builds the logger, reads the config and loads the board from storage.
// Failures are fatal.
func setup(ctx context.Context) *application {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	store, err := storage.NewStore(config.Database.Path)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err), zap.String("path", config.Database.Path))
	}

	assistant, err := newAssistant(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping AI assistant", zap.Error(err))
	}

	svc, err := board.New(store, boardConfig(config), assistant, logger)
	if err != nil {
		logger.Fatal("creating the board", zap.Error(err))
	}
	if err := svc.Load(ctx); err != nil {
		logger.Fatal("loading the board", zap.Error(err))
	}

	resolver, err := identity.NewStatic(config.Identity.Callers)
	if err != nil {
		logger.Fatal("loading callers", zap.Error(err))
	}

	return &application{
		config:   config,
		logger:   logger,
		store:    store,
		board:    svc,
		resolver: resolver,
	}
}

func boardConfig(config *Config) board.Config {
	m := config.Matching
	cfg := board.Config{
		Matching: matching.Config{
			TargetExperience: m.TargetExperience,
			Weights:          m.Weights,
		},
		DefaultLimit: m.DefaultLimit,
		ExcludeFile:  m.ExcludeFile,
		Filters:      m.Filters,
	}
	if config.AI != nil && config.AI.Enabled {
		cfg.EnrichMatches = config.AI.EnrichMatches
	}
	return cfg
}

// newAssistant returns a nil assistant without error when AI is disabled.
func newAssistant(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Assistant, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithAIFields(log, "gemini", cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAssistant(generator, cfg.Gemini.MaxLogLength, logger.WithAIFields(log, "gemini", generator.Model())), nil
}

// redacted returns a copy of config safe for debug output.
func redacted(config *Config) Config {
	out := *config
	if config.Identity != nil {
		callers := make([]identity.Entry, len(config.Identity.Callers))
		for i, c := range config.Identity.Callers {
			if c.Token != "" {
				c.Token = "***"
			}
			callers[i] = c
		}
		out.Identity = &IdentityConfig{Callers: callers}
	}
	if config.AI != nil && config.AI.Gemini != nil {
		aiCfg := *config.AI
		gem := *config.AI.Gemini
		if gem.APIKey != "" {
			gem.APIKey = "***"
		}
		aiCfg.Gemini = &gem
		out.AI = &aiCfg
	}
	return out
}
