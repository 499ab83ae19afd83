package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/config"
	"storefront/internal/fallback"
	"storefront/internal/handlers"
	"storefront/internal/jobs/background"
	"storefront/internal/menu"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/database"
)

const version = "1.0.0"

type stores struct {
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
	content    repositories.ContentRepository
	activity   repositories.ActivityLogRepository
	db         handlers.Pinger
	close      func()
}

func openStores(ctx context.Context, cfg *config.Config, dataset *fallback.Dataset) (*stores, error) {
	if cfg.Store.Backend == config.BackendMemory {
		categoryRepo := repositories.NewMemoryCategoryRepo()
		productRepo := repositories.NewMemoryProductRepo()
		result, err := fallback.Seed(ctx, dataset, categoryRepo, productRepo)
		if err != nil {
			return nil, err
		}
		log.Printf("Memory backend seeded: %d rows", result.Created)
		return &stores{
			categories: categoryRepo,
			products:   productRepo,
			content:    repositories.NewMemoryContentRepo(),
			activity:   repositories.NewMemoryActivityLogRepo(),
			close:      func() {},
		}, nil
	}

	pool, err := database.NewPool(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Printf("WARN: %v", err)
	}
	return &stores{
		categories: repositories.NewCategoryRepo(pool),
		products:   repositories.NewProductRepo(pool),
		content:    repositories.NewContentRepo(pool),
		activity:   repositories.NewActivityLogRepo(pool),
		db:         pool,
		close:      pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataset, err := fallback.Load(cfg.Catalog.FallbackTreePath)
	if err != nil {
		log.Fatalf("Failed to load fallback tree: %v", err)
	}

	st, err := openStores(ctx, cfg, dataset)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.close()

	// Create cache service
	var cacheSvc caching.CacheService
	if cfg.Redis.Addr != "" {
		cacheSvc = caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	} else {
		log.Printf("WARN: REDIS_ADDR not set, using process-local cache")
		cacheSvc = caching.NewMemoryCache()
	}

	// Create MinIO image service
	var imageSvc services.ImageService
	if cfg.Minio.Endpoint != "" {
		imageSvc, err = services.NewMinioImageService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey,
			cfg.Minio.UseSSL, cfg.Minio.Bucket, cfg.Minio.URLExpiry.Duration)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO service: %v", err)
		}
		if err := imageSvc.EnsureBucketExists(ctx); err != nil {
			log.Printf("WARN: image bucket check failed: %v", err)
		}
	}

	// Create services
	policy := menu.NewPolicy(cfg.Catalog.GenerationSubcategories, cfg.Catalog.GenerationTokens)
	hierarchySvc := services.NewHierarchyService(st.categories, cacheSvc, dataset, policy, services.HierarchyOptions{
		Timeout:     cfg.Server.RequestTimeout.Duration,
		CacheTTL:    cfg.Catalog.HierarchyCacheTTL.Duration,
		Concurrency: cfg.Catalog.FanOut,
	})
	productSvc := services.NewProductService(st.products, cacheSvc, cfg.Server.RequestTimeout.Duration, cfg.Catalog.ProductCacheTTL.Duration)
	contentSvc := services.NewContentService(st.content, cacheSvc, 0)
	activitySvc := services.NewActivityLogService(st.activity)
	adminSvc := services.NewCatalogAdminService(st.categories, st.products, hierarchySvc, cacheSvc)

	adminAuth, err := middleware.NewAdminAuth(middleware.AuthConfig{
		JWKSURL:   cfg.Auth.JWKSURL,
		Secret:    cfg.Auth.JWTSecret,
		AdminRole: cfg.Auth.AdminRole,
	})
	if err != nil {
		log.Fatalf("Failed to initialize admin auth: %v", err)
	}
	defer adminAuth.Close()

	// Background jobs
	scheduler, err := background.NewJobScheduler(hierarchySvc, cfg.Catalog.HierarchyRefresh.Duration)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("WARN: scheduler shutdown: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = common.NewRequestValidator()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{AllowOrigins: cfg.Server.AllowOrigins}))
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.BodyLimit("1M"))
	e.Use(middleware.VersionHeader("v1", version))

	router := &handlers.Router{
		Categories: handlers.NewCategoryHandlers(hierarchySvc),
		Products:   handlers.NewProductHandlers(productSvc),
		Content:    handlers.NewContentHandlers(contentSvc),
		Health:     handlers.NewHealthHandlers(st.db, cacheSvc, imageSvc, version),
		Admin:      handlers.NewAdminHandlers(adminSvc, activitySvc),
		AdminAuth:  adminAuth,
		Jobs:       handlers.NewJobHandlers(scheduler, hierarchySvc),
		Activity:   middleware.NewActivityMiddleware(activitySvc),
	}
	if imageSvc != nil {
		router.Images = handlers.NewImageHandlers(imageSvc)
	}
	router.RegisterRoutes(e)

	go func() {
		log.Printf("Storefront server v%s starting on port %d (backend=%s)", version, cfg.Server.Port, cfg.Store.Backend)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: shutdown: %v", err)
	}
}
