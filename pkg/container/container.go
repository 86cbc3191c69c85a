package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-api/internal/config"
	infraCache "library-api/internal/infrastructure/cache"
	"library-api/internal/infrastructure/database"
	"library-api/internal/infrastructure/storage"
	"library-api/pkg/cache"
	"library-api/pkg/jwt"

	catalogHandler "library-api/internal/domains/catalog/handler"
	"library-api/internal/domains/catalog/query"
	catalogRepo "library-api/internal/domains/catalog/repository"
	catalogService "library-api/internal/domains/catalog/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Every component is a
// singleton built once at startup.
type Container struct {
	// Infrastructure, shared across domains.
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Storage     *storage.MinIOStorage
	AsynqClient *asynq.Client
	JWTManager  *jwt.Manager

	// Query plan components. The registry and validator share one
	// instance so every key that validates also resolves.
	SortRegistry *query.SortRegistry
	Validator    *query.Validator

	// Repository layer.
	CatalogRepo catalogRepo.Interface

	// Service layer.
	CatalogService   *catalogService.CatalogService
	ReconcileService *catalogService.ReconcileService
	ImportService    *catalogService.ImportService
	ExportService    *catalogService.ExportService

	// Handler layer.
	CatalogHandler *catalogHandler.CatalogHandler
	AdminHandler   *catalogHandler.AdminHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer builds the dependency graph in order: config, then
// infrastructure, then repositories, services and handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("config loaded")

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	c.initCatalog()

	log.Info().Msg("container initialized")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	db := database.NewPostgresDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Info().Msg("database connected")

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(context.Background()); err != nil {
		// Cache misses degrade to database reads, so a down Redis is
		// not fatal.
		log.Warn().Err(err).Msg("redis connection failed, continuing without cache")
	} else {
		log.Info().Msg("redis connected")
	}
	c.Cache = redisCache

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = minioStorage
	log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("object storage ready")

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	return nil
}

func (c *Container) initCatalog() {
	cfg := c.Config

	c.SortRegistry = query.NewSortRegistry()
	c.Validator = query.NewValidator(c.SortRegistry)

	c.CatalogRepo = catalogRepo.NewPostgresRepository(c.DB.Pool, c.SortRegistry)

	c.CatalogService = catalogService.NewCatalogService(c.CatalogRepo, c.Cache, c.Validator)
	c.ReconcileService = catalogService.NewReconcileService(c.CatalogRepo, c.Cache)
	c.ImportService = catalogService.NewImportService(
		c.ReconcileService,
		c.Storage,
		c.AsynqClient,
		cfg.Catalog.MaxImportRows,
		cfg.Catalog.ArchiveImports,
	)
	c.ExportService = catalogService.NewExportService(c.CatalogRepo, cfg.Catalog.ExportRowLimit)

	defaultPolicy := catalogService.Policy(cfg.Catalog.ReconcilePolicy)

	c.CatalogHandler = catalogHandler.NewCatalogHandler(c.CatalogService)
	c.AdminHandler = catalogHandler.NewAdminHandler(
		c.ReconcileService,
		c.ImportService,
		c.ExportService,
		defaultPolicy,
	)
}

// ========================================
// CLEANUP
// ========================================

// Close releases infrastructure connections in reverse order of
// creation.
func (c *Container) Close() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close asynq client")
		}
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Info().Msg("container closed")
}
