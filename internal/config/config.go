package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Duration decodes TOML strings such as "5m" or "3s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config represents the complete service configuration. Values come from
// defaults, then the optional TOML file named by CONFIG_FILE, then the
// environment.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Store   StoreConfig   `toml:"store"`
	Redis   RedisConfig   `toml:"redis"`
	Minio   MinioConfig   `toml:"minio"`
	Auth    AuthConfig    `toml:"auth"`
	Catalog CatalogConfig `toml:"catalog"`
}

type ServerConfig struct {
	Port           int      `toml:"port"`
	RequestTimeout Duration `toml:"request_timeout"`
	AllowOrigins   []string `toml:"allow_origins"`
}

// StoreConfig selects the backend: "postgres" or "memory".
type StoreConfig struct {
	Backend     string `toml:"backend"`
	DatabaseURL string `toml:"database_url"`
}

// RedisConfig with an empty Addr disables the shared cache.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MinioConfig with an empty Endpoint disables image redirects.
type MinioConfig struct {
	Endpoint  string   `toml:"endpoint"`
	AccessKey string   `toml:"access_key"`
	SecretKey string   `toml:"secret_key"`
	UseSSL    bool     `toml:"use_ssl"`
	Bucket    string   `toml:"bucket"`
	URLExpiry Duration `toml:"url_expiry"`
}

type AuthConfig struct {
	JWKSURL   string `toml:"jwks_url"`
	JWTSecret string `toml:"jwt_secret"`
	AdminRole string `toml:"admin_role"`
}

type CatalogConfig struct {
	HierarchyCacheTTL       Duration `toml:"hierarchy_cache_ttl"`
	HierarchyRefresh        Duration `toml:"hierarchy_refresh_interval"`
	ProductCacheTTL         Duration `toml:"product_cache_ttl"`
	FanOut                  int      `toml:"fan_out"`
	FallbackTreePath        string   `toml:"fallback_tree_path"`
	GenerationSubcategories []string `toml:"generation_subcategories"`
	GenerationTokens        []string `toml:"generation_tokens"`
}

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: Duration{3 * time.Second},
			AllowOrigins:   []string{"*"},
		},
		Store: StoreConfig{Backend: BackendPostgres},
		Minio: MinioConfig{Bucket: "catalog-images", URLExpiry: Duration{15 * time.Minute}},
		Auth:  AuthConfig{AdminRole: "admin"},
		Catalog: CatalogConfig{
			HierarchyCacheTTL:       Duration{5 * time.Minute},
			HierarchyRefresh:        Duration{5 * time.Minute},
			ProductCacheTTL:         Duration{15 * time.Minute},
			FanOut:                  4,
			GenerationSubcategories: []string{"iphone"},
		},
	}
}

// Load reads .env (when present), the CONFIG_FILE TOML file and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN: failed to read .env: %v", err)
	}
	return LoadFrom(os.Getenv("CONFIG_FILE"), os.LookupEnv)
}

// LoadFrom applies the TOML file at path (skipped when empty) and then the
// variables visible through lookup.
func LoadFrom(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	applyEnv(cfg, lookup)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("WARN: invalid %s=%q, keeping %d", key, v, *dst)
			return
		}
		*dst = n
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("WARN: invalid %s=%q, keeping %t", key, v, *dst)
			return
		}
		*dst = b
	}
	duration := func(key string, dst *Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Printf("WARN: invalid %s=%q, keeping %s", key, v, dst.Duration)
			return
		}
		dst.Duration = d
	}
	list := func(key string, dst *[]string) {
		v, ok := lookup(key)
		if !ok {
			return
		}
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*dst = out
	}

	num("PORT", &cfg.Server.Port)
	duration("REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	list("CORS_ALLOW_ORIGINS", &cfg.Server.AllowOrigins)

	str("STORE_BACKEND", &cfg.Store.Backend)
	str("DATABASE_URL", &cfg.Store.DatabaseURL)

	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	num("REDIS_DB", &cfg.Redis.DB)

	str("MINIO_ENDPOINT", &cfg.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &cfg.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &cfg.Minio.SecretKey)
	boolean("MINIO_USE_SSL", &cfg.Minio.UseSSL)
	str("MINIO_BUCKET", &cfg.Minio.Bucket)
	duration("MINIO_URL_EXPIRY", &cfg.Minio.URLExpiry)

	str("AUTH_JWKS_URL", &cfg.Auth.JWKSURL)
	str("JWT_SECRET", &cfg.Auth.JWTSecret)
	str("ADMIN_ROLE", &cfg.Auth.AdminRole)

	duration("HIERARCHY_CACHE_TTL", &cfg.Catalog.HierarchyCacheTTL)
	duration("HIERARCHY_REFRESH_INTERVAL", &cfg.Catalog.HierarchyRefresh)
	duration("PRODUCT_CACHE_TTL", &cfg.Catalog.ProductCacheTTL)
	num("HIERARCHY_FAN_OUT", &cfg.Catalog.FanOut)
	str("FALLBACK_TREE_PATH", &cfg.Catalog.FallbackTreePath)
	list("GENERATION_SUBCATEGORIES", &cfg.Catalog.GenerationSubcategories)
	list("GENERATION_TOKENS", &cfg.Catalog.GenerationTokens)
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}
