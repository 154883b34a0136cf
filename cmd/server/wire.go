package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/health-insights/internal/api"
	"github.com/Rrens/health-insights/internal/api/handler"
	"github.com/Rrens/health-insights/internal/config"
	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/engine"
	"github.com/Rrens/health-insights/internal/engine/anthropic"
	"github.com/Rrens/health-insights/internal/engine/deepseek"
	"github.com/Rrens/health-insights/internal/engine/gemini"
	"github.com/Rrens/health-insights/internal/engine/ollama"
	"github.com/Rrens/health-insights/internal/engine/openai"
	"github.com/Rrens/health-insights/internal/identity"
	"github.com/Rrens/health-insights/internal/ratelimit"
	"github.com/Rrens/health-insights/internal/report"
	"github.com/Rrens/health-insights/internal/repository/mongo"
	"github.com/Rrens/health-insights/internal/repository/postgres"
	"github.com/Rrens/health-insights/internal/repository/redis"
	"github.com/Rrens/health-insights/internal/repository/sqlstore"
	"github.com/Rrens/health-insights/internal/security"
	"github.com/Rrens/health-insights/internal/service"
	"github.com/Rrens/health-insights/internal/usersession"
)

type application struct {
	services api.Services
	closers  []func()
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// storage is the durable half of the backend
type storage struct {
	conversations domain.ConversationStore
	users         domain.UserRepository
	credentials   identity.CredentialRepository
	pinger        handler.Pinger
}

func build(ctx context.Context, cfg *config.Config) (*application, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret (JWT_SECRET) must be set")
	}

	app := &application{}
	fail := func(err error) (*application, error) {
		app.Close()
		return nil, err
	}

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, closeStore)
	ready := map[string]handler.Pinger{"store": store.pinger}

	// Ephemeral state: Redis when enabled, process memory otherwise
	var (
		limiter  ratelimit.Limiter
		tokens   identity.TokenRegistry
		sessions usersession.Store
		cache    service.ProfileCache
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to redis: %w", err))
		}
		app.closers = append(app.closers, func() { redisClient.Close() })
		ready["redis"] = redisClient

		limiter = redis.NewRateLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		tokens = redis.NewTokenRegistry(redisClient)
		sessions = redis.NewUserSessionStore(redisClient, cfg.Auth.AccessTokenTTL)
		cache = redis.NewProfileCache(redisClient)
	} else {
		log.Warn().Msg("Redis disabled, keeping rate limits and session state in memory")
		limiter = ratelimit.NewMemory(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		tokens = identity.NewMemoryRegistry()
		sessions = usersession.NewMemory()
	}

	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	provider := identity.NewResilient(
		identity.NewLocal(store.credentials, tokens, jwtManager),
		cfg.Auth.ProviderTimeout,
		cfg.Auth.ProviderRetries,
	)

	router, err := newEngine(cfg.Engine)
	if err != nil {
		return fail(err)
	}

	var archive service.HistoryArchive
	if cfg.Archive.Enabled {
		enc, err := security.NewEncryptorFromSecret(cfg.Archive.EncryptionKey)
		if err != nil {
			return fail(fmt.Errorf("failed to create archive encryptor: %w", err))
		}
		arch, err := mongo.NewArchive(ctx, cfg.Archive, enc)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to archive: %w", err))
		}
		app.closers = append(app.closers, func() { arch.Close(context.Background()) })
		archive = arch
	}

	authService := service.NewAuthService(provider, store.users, sessions, cache)
	conversationService := service.NewConversationService(store.conversations, sessions)
	analysisService := service.NewAnalysisService(
		conversationService,
		store.conversations,
		limiter,
		router,
		sessions,
		cfg.Engine.Timeout,
	).WithMaxReportBytes(cfg.Report.MaxUploadBytes())

	app.services = api.Services{
		Auth:          authService,
		Conversations: conversationService,
		Analyses:      analysisService,
		Archive:       service.NewArchiveService(archive, analysisService),
		Reports:       report.NewLoader(cfg.Report.MaxUploadBytes(), report.PDFExtractor{}),
		Engine:        router,
		Ready:         ready,
	}
	return app, nil
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		if err := postgres.RunMigrations(cfg.Database.DSN()); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &storage{
			conversations: postgres.NewConversationStore(db.Pool),
			users:         postgres.NewUserRepository(db.Pool),
			credentials:   postgres.NewCredentialRepository(db.Pool),
			pinger:        db,
		}, db.Close, nil

	case "sqlite", "mysql":
		var (
			db  *sqlstore.DB
			err error
		)
		if cfg.Store.Driver == "sqlite" {
			if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
			db, err = sqlstore.OpenSQLite(ctx, cfg.Store.SQLitePath)
		} else {
			db, err = sqlstore.OpenMySQL(ctx, cfg.Store.MySQLDSN)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate %s store: %w", cfg.Store.Driver, err)
		}
		return &storage{
			conversations: sqlstore.NewConversationStore(db),
			users:         sqlstore.NewUserRepository(db),
			credentials:   sqlstore.NewCredentialRepository(db),
			pinger:        db,
		}, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %q", cfg.Store.Driver)
	}
}

func newEngine(cfg config.EngineConfig) (*engine.Router, error) {
	profile, err := engine.LookupProfile(cfg.PromptProfile)
	if err != nil {
		return nil, err
	}

	router := engine.NewRouter(cfg.DefaultProvider, cfg.Fallbacks, profile)

	log.Info().Msgf("Initializing analysis providers. Default: %s", cfg.DefaultProvider)

	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		router.RegisterProvider(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel))
	}
	if cfg.OpenAI.APIKey != "" {
		router.RegisterProvider(openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL))
	}
	if cfg.Anthropic.APIKey != "" {
		router.RegisterProvider(anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.RegisterProvider(deepseek.NewProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model))
	}
	if cfg.Gemini.APIKey != "" {
		router.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	} else {
		log.Warn().Msg("Gemini API key is empty, skipping registration")
	}

	return router, nil
}
