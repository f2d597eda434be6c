// @title                      Kanso Calendar API
// @version                    1.0
// @description                Habit calendars, completions and the yearly contribution heat map.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-calendar/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-calendar/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-calendar/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-calendar/internal/config"
	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
	"github.com/comitanigiacomo/kanso-calendar/internal/core/services"
	"github.com/comitanigiacomo/kanso-calendar/internal/core/workers"
	"github.com/comitanigiacomo/kanso-calendar/internal/i18n"
	"github.com/comitanigiacomo/kanso-calendar/internal/logger"
)

type repositories struct {
	users       domain.UserRepository
	calendars   domain.CalendarRepository
	habits      domain.HabitRepository
	completions domain.CompletionRepository
}

type app struct {
	router *gin.Engine
	worker *workers.OverviewWorker
	close  func()
}

// buildApp wires storage, caches, services and the HTTP router from cfg.
func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var repos repositories
	var dbPinger adapterHTTP.Pinger

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		log.Info("connecting to database", zap.String("host", cfg.DB.Host), zap.String("name", cfg.DB.Name))

		db, err := repository.NewPostgresDB(ctx, cfg.DB.DSN())
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() { db.Close() })

		if err := repository.Migrate(ctx, db); err != nil {
			closeAll()
			return nil, err
		}

		repos = repositories{
			users:       repository.NewPostgresUserRepository(db),
			calendars:   repository.NewPostgresCalendarRepository(db),
			habits:      repository.NewPostgresHabitRepository(db),
			completions: repository.NewPostgresCompletionRepository(db),
		}
		dbPinger = db

	default:
		log.Warn("using in-memory storage, data is lost on restart")

		store := repository.NewMemoryStore()
		repos = repositories{
			users:       store.Users,
			calendars:   store.Calendars,
			habits:      store.Habits,
			completions: store.Completions,
		}
	}

	var rdb *redis.Client
	var counts services.CountCache
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			closers = append(closers, func() { client.Close() })

			rdb = client
			repos.calendars = repository.NewCachedCalendarRepository(repos.calendars, rdb, log)
			counts = cache.NewOverviewCache(rdb, cache.DefaultOverviewTTL, log)
			log.Info("redis cache enabled", zap.String("host", cfg.Redis.Host))
		}
	}

	catalog, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		closeAll()
		return nil, err
	}

	loc := cfg.Location()

	overviewService := services.NewOverviewService(repos.completions, counts, catalog)
	worker := workers.NewOverviewWorker(overviewService, log)
	overviewService.WithWarmer(worker)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, repos.users)
	authService := services.NewAuthService(repos.users, tokenService)
	calendarService := services.NewCalendarService(repos.calendars, overviewService)
	habitService := services.NewHabitService(repos.habits, repos.calendars, overviewService)
	completionService := services.NewCompletionService(repos.completions, repos.habits, overviewService)
	viewService := services.NewCalendarViewService(repos.calendars, repos.habits, repos.completions, catalog)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:       adapterHTTP.NewAuthHandler(authService, tokenService.TTL()),
		CalendarHandler:   adapterHTTP.NewCalendarHandler(calendarService, viewService, loc),
		HabitHandler:      adapterHTTP.NewHabitHandler(habitService),
		CompletionHandler: adapterHTTP.NewCompletionHandler(completionService, loc),
		OverviewHandler:   adapterHTTP.NewOverviewHandler(overviewService, loc),
		Tokens:            tokenService,
		Logger:            log,
		DB:                dbPinger,
		Redis:             rdb,
		RateLimit:         cfg.RateLimit,
		RateWindow:        cfg.RateWindow,
		StartTime:         time.Now(),
	})

	return &app{router: router, worker: worker, close: closeAll}, nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	workerDone := a.worker.Start(workerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("kanso calendar running", zap.String("addr", srv.Addr), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		cancelWorker()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("stop signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		cancelWorker()
		return fmt.Errorf("forced shutdown: %w", err)
	}

	cancelWorker()
	<-workerDone

	log.Info("server stopped gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kanso: %v\n", err)
		os.Exit(1)
	}
}
