// Command seed writes the fallback catalog into Postgres. Rows that already
// exist are skipped, so it can be re-run safely.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"storefront/internal/config"
	"storefront/internal/fallback"
	"storefront/internal/repositories"
	"storefront/pkg/database"
)

func main() {
	treePath := flag.String("tree", "", "fallback tree TOML file (defaults to the embedded tree)")
	withProducts := flag.Bool("products", true, "also insert the sample products")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Store.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	path := *treePath
	if path == "" {
		path = cfg.Catalog.FallbackTreePath
	}
	dataset, err := fallback.Load(path)
	if err != nil {
		log.Fatalf("Failed to load tree: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	var products repositories.ProductRepository
	if *withProducts {
		products = repositories.NewProductRepo(pool)
	}
	result, err := fallback.Seed(ctx, dataset, repositories.NewCategoryRepo(pool), products)
	if err != nil {
		log.Fatalf("Seed failed after %d rows: %v", result.Created, err)
	}
	log.Printf("Seed complete: %d created, %d skipped", result.Created, result.Skipped)
}
