package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/ribat/admissions/internal/app/auth"
	appControllers "github.com/ribat/admissions/internal/app/controllers"
	appMigrations "github.com/ribat/admissions/internal/app/migrations"
	appRepos "github.com/ribat/admissions/internal/app/repositories"
	appRoutes "github.com/ribat/admissions/internal/app/routes"
	appServices "github.com/ribat/admissions/internal/app/services"
	"github.com/ribat/admissions/internal/config"
	"github.com/ribat/admissions/internal/db"
	appMiddleware "github.com/ribat/admissions/internal/middleware"
	pkgAuth "github.com/ribat/admissions/internal/pkg/auth"
	"github.com/ribat/admissions/internal/pkg/helpers"
	"github.com/ribat/admissions/internal/pkg/logger"
	"github.com/ribat/admissions/internal/pkg/websocket"
	"github.com/ribat/admissions/internal/seed"
)

// DefaultConfigPath is used when no config path is given
const DefaultConfigPath = "configs/config.yaml"

// Storage holds the repositories of the configured driver and the pool behind them, if any
type Storage struct {
	Repos  *appRepos.Repositories
	DBPool *pgxpool.Pool
}

// Close releases the database pool
func (s *Storage) Close() {
	if s != nil && s.DBPool != nil {
		s.DBPool.Close()
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Storage          *Storage
	AdmissionService *appServices.AdmissionService
	SessionService   *appServices.SessionService
	JWTService       *pkgAuth.JWTService
	AuthzService     *appAuth.AuthorizationService
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Hub              *websocket.Hub
	Controllers      appRoutes.Controllers
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// A nil output logs to stdout.
func LoadConfigAndSetupLogger(configPath string, output io.Writer) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
		Output: output,
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured storage driver, runs migrations for postgres and seeds default data
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	storage := &Storage{}

	switch cfg.StorageDriver() {
	case config.DriverPostgres:
		pool, err := setupDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, err
		}
		storage.DBPool = pool
		storage.Repos = appRepos.NewPostgresRepositories(pool)
	default:
		lgr.Info().Msg("Using in-memory storage; data is lost on exit")
		storage.Repos = appRepos.NewMemoryRepositories()
	}

	if cfg.Seed.Enabled {
		err := seed.CreateDefaultData(ctx, storage.Repos, seed.Options{
			SampleApplications: cfg.Seed.SampleApplications,
		}, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return storage, nil
}

// setupDatabase establishes the database connection and runs migrations.
func setupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database.Pool, nil
}

// NewJWTService builds the token service from configuration
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes services, the dashboard hub and controllers.
// The hub is started here and stopped by the server on shutdown.
func BuildDependencies(ctx context.Context, cfg *config.Config, storage *Storage, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Storage: storage, Logger: lgr}

	slot, err := appRepos.NewFileSessionSlot(cfg.Session.SlotDir)
	if err != nil {
		return nil, err
	}

	authz, err := appAuth.NewAuthorizationService()
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize RBAC")
		return nil, err
	}
	deps.AuthzService = authz

	deps.Hub = websocket.NewHub(lgr)
	go deps.Hub.Run()

	deps.JWTService = NewJWTService(cfg)
	deps.AdmissionService = appServices.NewAdmissionService(storage.Repos.Applications, lgr,
		appServices.WithPublisher(deps.Hub))
	deps.SessionService = appServices.NewSessionService(storage.Repos.Identities, slot, deps.JWTService, lgr)

	if err := deps.SessionService.Restore(ctx); err != nil {
		lgr.Warn().Err(err).Str("path", slot.Path()).Msg("Failed to restore session, starting signed out")
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService, lgr)

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.SessionService, lgr),
		Applications: appControllers.NewApplicationController(deps.AdmissionService, lgr),
		Catalog:      appControllers.NewCatalogController(),
		Dashboard:    websocket.NewHandler(deps.Hub, deps.AdmissionService, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
