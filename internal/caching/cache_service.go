package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"storefront/internal/models"
)

const keyPrefix = "storefront:"

// CacheService stores rendered catalog reads. Get methods return (nil, nil)
// on a miss. The hierarchy is kept twice: a fresh copy with a short TTL and
// a stale copy without expiry that serves as last-known-good when the
// database is unreachable.
type CacheService interface {
	// Hierarchy caching
	GetHierarchy(ctx context.Context, scope string) ([]*models.Category, error)
	SetHierarchy(ctx context.Context, scope string, tree []*models.Category, ttl time.Duration) error
	GetStaleHierarchy(ctx context.Context, scope string) ([]*models.Category, error)
	InvalidateHierarchy(ctx context.Context) error

	// Product caching
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	SetProductBySlug(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProductBySlug(ctx context.Context, slug string) error
	InvalidateProducts(ctx context.Context) error

	// Page content caching
	GetContent(ctx context.Context, pageKey string) (*models.PageContent, error)
	SetContent(ctx context.Context, content *models.PageContent, ttl time.Duration) error
	DeleteContent(ctx context.Context, pageKey string) error

	Ping(ctx context.Context) error
}

// Keys use the slug exactly as given. Store lookups are case-sensitive, so
// folding case here would let a cached entry answer a slug the store rejects.
func hierarchyKey(scope string) string {
	if scope == "" {
		scope = "all"
	}
	return keyPrefix + "hierarchy:fresh:" + scope
}

func staleHierarchyKey(scope string) string {
	if scope == "" {
		scope = "all"
	}
	return keyPrefix + "hierarchy:stale:" + scope
}

func productSlugKey(slug string) string {
	return keyPrefix + "product:slug:" + slug
}

func contentKey(pageKey string) string {
	return keyPrefix + "content:" + pageKey
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	log.Printf("DEBUG: Creating Redis client with address: %s", parsedAddr)

	client := redis.NewClient(&redis.Options{
		Addr:         parsedAddr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Printf("DEBUG: Redis connection established successfully")
	}

	return NewRedisCacheServiceFromClient(client)
}

// NewRedisCacheServiceFromClient wraps an existing client.
func NewRedisCacheServiceFromClient(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetHierarchy(ctx context.Context, scope string) ([]*models.Category, error) {
	var tree []*models.Category
	ok, err := r.getJSON(ctx, hierarchyKey(scope), &tree)
	if !ok || err != nil {
		return nil, err
	}
	return tree, nil
}

// SetHierarchy writes the fresh copy with ttl and the stale copy without expiry.
func (r *redisCacheService) SetHierarchy(ctx context.Context, scope string, tree []*models.Category, ttl time.Duration) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, hierarchyKey(scope), data, ttl)
	pipe.Set(ctx, staleHierarchyKey(scope), data, 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisCacheService) GetStaleHierarchy(ctx context.Context, scope string) ([]*models.Category, error) {
	var tree []*models.Category
	ok, err := r.getJSON(ctx, staleHierarchyKey(scope), &tree)
	if !ok || err != nil {
		return nil, err
	}
	return tree, nil
}

// InvalidateHierarchy drops every fresh copy. Stale copies are kept so an
// outage right after an admin write still has something to serve.
func (r *redisCacheService) InvalidateHierarchy(ctx context.Context) error {
	return r.deletePattern(ctx, keyPrefix+"hierarchy:fresh:*")
}

func (r *redisCacheService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	ok, err := r.getJSON(ctx, productSlugKey(slug), &product)
	if !ok || err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProductBySlug(ctx context.Context, product *models.Product, ttl time.Duration) error {
	return r.setJSON(ctx, productSlugKey(product.Slug), product, ttl)
}

func (r *redisCacheService) DeleteProductBySlug(ctx context.Context, slug string) error {
	return r.client.Del(ctx, productSlugKey(slug)).Err()
}

func (r *redisCacheService) InvalidateProducts(ctx context.Context) error {
	return r.deletePattern(ctx, keyPrefix+"product:*")
}

func (r *redisCacheService) GetContent(ctx context.Context, pageKey string) (*models.PageContent, error) {
	var content models.PageContent
	ok, err := r.getJSON(ctx, contentKey(pageKey), &content)
	if !ok || err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *redisCacheService) SetContent(ctx context.Context, content *models.PageContent, ttl time.Duration) error {
	return r.setJSON(ctx, contentKey(content.PageKey), content, ttl)
}

func (r *redisCacheService) DeleteContent(ctx context.Context, pageKey string) error {
	return r.client.Del(ctx, contentKey(pageKey)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) deletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}
