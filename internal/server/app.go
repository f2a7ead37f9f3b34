// Package server initializes and runs the application: configuration, storage,
// cache and recommender clients, the HTTP endpoint, and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dsmirnov/bookshelf/internal/logging"
	"github.com/dsmirnov/bookshelf/internal/server/auth"
	"github.com/dsmirnov/bookshelf/internal/server/cache"
	"github.com/dsmirnov/bookshelf/internal/server/config"
	"github.com/dsmirnov/bookshelf/internal/server/httpapi"
	"github.com/dsmirnov/bookshelf/internal/server/recommender"
	"github.com/dsmirnov/bookshelf/internal/server/repositories/repomanager"
	"github.com/dsmirnov/bookshelf/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	ratingCache cache.RatingCache
	handlers    httpapi.Handlers
	filter      *httpapi.IdentityFilter
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var ratingCache cache.RatingCache = cache.NewNop()
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("cache init error: %w", err)
		}
		ratingCache = rc
	}

	reco := recommender.NewClient(cfg.RecommenderBaseURL, cfg.RecommenderTimeout)
	if !reco.Healthy(ctx) {
		logger.Warn(ctx, "recommender unreachable at startup", "url", cfg.RecommenderBaseURL)
	}

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	authService := services.NewAuthService(db, rm, hasher, cfg)
	bookService := services.NewBookService(db, rm, ratingCache, reco, cfg)
	ratingService := services.NewRatingService(db, rm, ratingCache)
	userService := services.NewUserService(db, rm)

	handlers := httpapi.Handlers{
		Auth:    httpapi.NewAuthHandlers(authService),
		Books:   httpapi.NewBookHandlers(bookService),
		Ratings: httpapi.NewRatingHandlers(ratingService),
		Users:   httpapi.NewUserHandlers(userService),
	}

	filter := httpapi.NewIdentityFilter(db, rm, []byte(cfg.SecretKey), logger)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		ratingCache: ratingCache,
		handlers:    handlers,
		filter:      filter,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(app.handlers, app.filter, app.logger)
	s := httpapi.NewServer(app.config, router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if closer, ok := app.ratingCache.(*cache.RedisCache); ok {
		if err := closer.Close(); err != nil {
			app.logger.Warn(ctx, "cache close error", "error", err.Error())
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err.Error())
	}
}
