package caching

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is a process-local CacheService used by the in-memory backend
// and in tests. Values are stored JSON-encoded so callers never share
// pointers with the cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryCache) get(key string, dst any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.data, dst)
}

func (m *MemoryCache) set(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) deletePrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
}

func (m *MemoryCache) GetHierarchy(_ context.Context, scope string) ([]*models.Category, error) {
	var tree []*models.Category
	ok, err := m.get(hierarchyKey(scope), &tree)
	if !ok || err != nil {
		return nil, err
	}
	return tree, nil
}

func (m *MemoryCache) SetHierarchy(_ context.Context, scope string, tree []*models.Category, ttl time.Duration) error {
	if err := m.set(hierarchyKey(scope), tree, ttl); err != nil {
		return err
	}
	return m.set(staleHierarchyKey(scope), tree, 0)
}

func (m *MemoryCache) GetStaleHierarchy(_ context.Context, scope string) ([]*models.Category, error) {
	var tree []*models.Category
	ok, err := m.get(staleHierarchyKey(scope), &tree)
	if !ok || err != nil {
		return nil, err
	}
	return tree, nil
}

func (m *MemoryCache) InvalidateHierarchy(_ context.Context) error {
	m.deletePrefix(keyPrefix + "hierarchy:fresh:")
	return nil
}

func (m *MemoryCache) GetProductBySlug(_ context.Context, slug string) (*models.Product, error) {
	var product models.Product
	ok, err := m.get(productSlugKey(slug), &product)
	if !ok || err != nil {
		return nil, err
	}
	return &product, nil
}

func (m *MemoryCache) SetProductBySlug(_ context.Context, product *models.Product, ttl time.Duration) error {
	return m.set(productSlugKey(product.Slug), product, ttl)
}

func (m *MemoryCache) DeleteProductBySlug(_ context.Context, slug string) error {
	m.mu.Lock()
	delete(m.entries, productSlugKey(slug))
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) InvalidateProducts(_ context.Context) error {
	m.deletePrefix(keyPrefix + "product:")
	return nil
}

func (m *MemoryCache) GetContent(_ context.Context, pageKey string) (*models.PageContent, error) {
	var content models.PageContent
	ok, err := m.get(contentKey(pageKey), &content)
	if !ok || err != nil {
		return nil, err
	}
	return &content, nil
}

func (m *MemoryCache) SetContent(_ context.Context, content *models.PageContent, ttl time.Duration) error {
	return m.set(contentKey(content.PageKey), content, ttl)
}

func (m *MemoryCache) DeleteContent(_ context.Context, pageKey string) error {
	m.mu.Lock()
	delete(m.entries, contentKey(pageKey))
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Ping(context.Context) error { return nil }

var _ CacheService = (*MemoryCache)(nil)
