package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lingua-api/internal/api"
	"github.com/phrazzld/lingua-api/internal/config"
	"github.com/phrazzld/lingua-api/internal/domain/srs"
	"github.com/phrazzld/lingua-api/internal/generation"
	"github.com/phrazzld/lingua-api/internal/platform/filestore"
	"github.com/phrazzld/lingua-api/internal/platform/gemini"
	"github.com/phrazzld/lingua-api/internal/platform/memory"
	"github.com/phrazzld/lingua-api/internal/platform/postgres"
	"github.com/phrazzld/lingua-api/internal/service"
	"github.com/phrazzld/lingua-api/internal/service/auth"
	"github.com/phrazzld/lingua-api/internal/service/vocabulary"
	"github.com/phrazzld/lingua-api/internal/store"
)

// stores groups the persistence backends the services are built on.
type stores struct {
	users   store.UserStore
	words   store.WordStore
	sources store.ContentSourceStore
	journal store.JournalStore
	lessons store.LessonStore
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is only set for the postgres driver.
	db     *sql.DB
	stores stores

	jwtService auth.JWTService
	scheduler  srs.Service

	userService      service.UserService
	vocabService     vocabulary.Service
	contentService   service.ContentService
	journalService   service.JournalService
	lessonService    service.LessonService
	writingService   service.WritingService
	immersionService service.ImmersionService
}

// newApplication creates an application with every dependency initialized
// from cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if err := app.openStorage(ctx); err != nil {
		return nil, err
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	// The generation-backed services take nil interfaces when no key is
	// configured and then answer generation.ErrUnavailable.
	var (
		translator vocabulary.Translator
		feedback   service.FeedbackGenerator
		lessonGen  service.LessonGenerator
		writing    service.WritingAssistant
		guides     service.StudyGuideGenerator
		immersion  service.ImmersionWriter
	)
	if cfg.LLM.Enabled() {
		gen, err := gemini.New(ctx, logger, cfg.LLM)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
		}
		assistant := generation.NewAssistant(gen, logger)
		translator, feedback, lessonGen, writing = assistant, assistant, assistant, assistant
		guides, immersion = assistant, assistant
		logger.Info("LLM generator initialized", slog.String("model", cfg.LLM.ModelName))
	} else {
		logger.Warn("no Gemini API key configured, generation-backed endpoints are disabled")
	}

	app.scheduler = srs.NewDefaultService()

	app.userService = service.NewUserService(app.stores.users, auth.NewBcryptHasher(cfg.Auth.BCryptCost), logger)
	app.vocabService = vocabulary.NewService(app.stores.words, app.scheduler, translator, logger,
		vocabulary.WithLimits(vocabulary.Limits{
			DefaultDue: cfg.Review.DefaultDueLimit,
			MaxDue:     cfg.Review.MaxDueLimit,
		}))
	app.contentService = service.NewContentService(app.stores.sources, app.stores.words, guides, logger)
	app.journalService = service.NewJournalService(app.stores.journal, feedback, logger)
	app.lessonService = service.NewLessonService(app.stores.lessons, app.stores.users, lessonGen, logger)
	app.writingService = service.NewWritingService(app.stores.users, writing, logger)
	app.immersionService = service.NewImmersionService(app.stores.users, immersion, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// openStorage builds the stores for the configured driver.
func (app *application) openStorage(ctx context.Context) error {
	cfg := app.config.Storage
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := openDatabase(ctx, app.config.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		app.stores = stores{
			users:   postgres.NewUserStore(db),
			words:   postgres.NewWordStore(db),
			sources: postgres.NewContentSourceStore(db),
			journal: postgres.NewJournalStore(db),
			lessons: postgres.NewLessonStore(db),
		}
	case config.DriverFile:
		fs, err := filestore.Open(cfg.FilePath, app.logger)
		if err != nil {
			return fmt.Errorf("failed to open file store: %w", err)
		}
		app.stores = memoryStores(fs.DB())
	case config.DriverMemory:
		app.stores = memoryStores(memory.NewDB())
		app.logger.Warn("using in-memory storage, data is lost on restart")
	default:
		return fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}

	app.logger.Info("storage initialized", slog.String("driver", cfg.Driver))
	return nil
}

func memoryStores(db *memory.DB) stores {
	return stores{
		users:   memory.NewUserStore(db),
		words:   memory.NewWordStore(db),
		sources: memory.NewContentSourceStore(db),
		journal: memory.NewJournalStore(db),
		lessons: memory.NewLessonStore(db),
	}
}

// healthHandler reports the storage driver and pings the database if there
// is one.
func (app *application) healthHandler() *api.HealthHandler {
	var pinger api.Pinger
	if app.db != nil {
		pinger = app.db
	}
	return api.NewHealthHandler(app.config.Storage.Driver, pinger, app.config.LLM.Enabled(), app.logger)
}

// Run starts the HTTP server and blocks until it shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
