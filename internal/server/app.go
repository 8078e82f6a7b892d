// Package server wires the RecipeBook server together: storage, services,
// the public HTTP API and the gRPC health endpoint, plus graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/recipebook/internal/logging"
	"github.com/dmitrijs2005/recipebook/internal/server/auth"
	"github.com/dmitrijs2005/recipebook/internal/server/config"
	"github.com/dmitrijs2005/recipebook/internal/server/httpapi"
	"github.com/dmitrijs2005/recipebook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipebook/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/recipebook/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	runMigrations = func(ctx context.Context, m repomanager.RepositoryManager, db *sql.DB) error {
		return m.RunMigrations(ctx, db)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	http   *httpapi.Server
	health *gs.HealthServer
}

// NewApp connects to storage, applies migrations and builds the servers.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var opts []repomanager.Option
	checks := []gs.Pinger{db}

	if c.SessionStore == config.SessionStoreRedis {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		opts = append(opts, repomanager.WithRedisSessions(app.redis, c.RedisPrefix, c.TokenValidityDuration))
		checks = append(checks, gs.PingFunc(func(ctx context.Context) error {
			return app.redis.Ping(ctx).Err()
		}))
	}

	rm := repomanager.NewPostgresRepositoryManager(opts...)
	if err := runMigrations(ctx, rm, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	tokens := auth.NewTokenManager([]byte(c.SecretKey), c.Issuer, c.TokenValidityDuration)
	sessions := services.NewSessionService(db, rm, tokens, logger)
	users := services.NewUserService(db, rm, sessions, auth.NewPasswordHasher(c.PasswordScheme), logger)
	recipes := services.NewRecipeService(db, rm, c, logger)

	app.http = httpapi.NewServer(c.EndpointAddrHTTP, c.StaticDir, logger, users, sessions, recipes)
	app.http.SetShutdownTimeout(c.ShutdownTimeout)
	app.health = gs.NewHealthServer(c.EndpointAddrGRPC, logger, c.HealthCheckInterval, checks...)

	logger.Info(ctx, "app initialized",
		"session_store", c.SessionStore,
		"password_scheme", c.PasswordScheme,
		"image_uploads", c.ImageUploadsEnabled(),
	)

	return app, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "signal received", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// run starts a server and cancels everything else when it fails.
func (app *App) run(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or one
// of the servers fails, then waits for both servers to stop.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.run(ctx, cancelFunc, "http", app.http.Run)
	}()
	go func() {
		defer wg.Done()
		app.run(ctx, cancelFunc, "grpc", app.health.Run)
	}()

	wg.Wait()

	app.logger.Info(ctx, "app stopped")
}

// Close releases storage connections.
func (app *App) Close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}
