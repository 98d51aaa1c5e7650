package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	httpapi "github.com/cataloghq/catalog/internal/catalog/http"
	"github.com/cataloghq/catalog/internal/catalog/service"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/internal/catalog/store/drivers/redis"
	"github.com/cataloghq/catalog/internal/catalog/store/drivers/sqlite"
	"github.com/cataloghq/catalog/pkg/jwtx"
	"github.com/cataloghq/catalog/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the catalog service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	registry store.Tokens
	codec    *jwtx.Codec

	// Optional redis client, only when the registry backend is redis
	redisClient *goredis.Client

	// Services
	authService         *service.AuthService
	userService         *service.UserService
	roleService         *service.RoleService
	categoryService     *service.CategoryService
	productService      *service.ProductService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "catalog-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCodec(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initRegistry(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	if err := app.seed(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("catalog service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down catalog service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("catalog service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCodec loads the Ed25519 signing key, or generates an ephemeral one when
// no key file is configured. Ephemeral keys invalidate all tokens on restart.
func (app *Application) initCodec() error {
	if app.cfg.SigningKeyFile == "" {
		codec, err := jwtx.NewEphemeralCodec("catalog-ephemeral", app.cfg.Issuer)
		if err != nil {
			return fmt.Errorf("failed to generate signing key: %w", err)
		}
		app.codec = codec
		app.logger.Warn("using ephemeral signing key, tokens will not survive restarts")
		return nil
	}

	pem, err := os.ReadFile(app.cfg.SigningKeyFile)
	if err != nil {
		return fmt.Errorf("failed to read signing key file: %w", err)
	}
	codec, err := jwtx.NewCodec("catalog-1", pem, app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}
	app.codec = codec
	return nil
}

// initRegistry selects the token registry backend. The sqlite store shares
// the main database; redis keeps records with a native TTL.
func (app *Application) initRegistry() error {
	switch app.cfg.RegistryBackend {
	case "", "sqlite":
		app.registry = app.db.Tokens()
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
		}
		app.redisClient = client
		app.registry = redis.NewTokensStore(client, app.cfg.RefreshTTL)
		app.logger.Info("token registry backed by redis", "addr", app.cfg.RedisAddr)
	default:
		return fmt.Errorf("unknown registry backend %q", app.cfg.RegistryBackend)
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Registry:   app.registry,
		Codec:      app.codec,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.userService = &service.UserService{Store: app.db}
	app.roleService = &service.RoleService{Store: app.db}
	app.categoryService = &service.CategoryService{Store: app.db}
	app.productService = &service.ProductService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.registry,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.RefreshTTL,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.registry,
		app.logger,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.RoleService = app.roleService
	router.CategoryService = app.categoryService
	router.ProductService = app.productService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// seed creates the application roles and, on an empty database, the admin
// account from ADMIN_EMAIL/ADMIN_PASSWORD.
func (app *Application) seed(ctx context.Context) error {
	for _, name := range domain.AppRoles() {
		if _, err := app.roleService.Create(ctx, name); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
	}

	empty, err := app.db.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	if app.cfg.AdminEmail == "" || app.cfg.AdminPassword == "" {
		app.logger.Warn("no users exist and no admin seed configured, set ADMIN_EMAIL and ADMIN_PASSWORD")
		return nil
	}

	admin, err := app.userService.Create(ctx, service.CreateUserInput{
		Name:            "Administrator",
		Email:           app.cfg.AdminEmail,
		Password:        app.cfg.AdminPassword,
		ConfirmPassword: app.cfg.AdminPassword,
		Roles:           []string{domain.RoleAdmin},
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	app.logger.Info("seeded admin user", "user_id", admin.ID, "email", admin.Email)
	return nil
}
