package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-showcase/pkg/showcase"
	"github.com/tendant/simple-showcase/pkg/showcase/chat"
	"github.com/tendant/simple-showcase/pkg/showcase/storage/fs"
	memorystorage "github.com/tendant/simple-showcase/pkg/showcase/storage/memory"
	s3storage "github.com/tendant/simple-showcase/pkg/showcase/storage/s3"
	dualstore "github.com/tendant/simple-showcase/pkg/showcase/store/dual"
	"github.com/tendant/simple-showcase/pkg/showcase/store/localfile"
	memorystore "github.com/tendant/simple-showcase/pkg/showcase/store/memory"
	pgstore "github.com/tendant/simple-showcase/pkg/showcase/store/postgres"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:                  "8080",
		Environment:           "development",
		DatabaseType:          "memory",
		DBSchema:              "showcase",
		FallbackDir:           "./data/fallback",
		PrimaryTimeout:        dualstore.DefaultPrimaryTimeout,
		DefaultStorageBackend: "memory",
		StorageBackends: []StorageBackendConfig{
			{
				Name:   "memory",
				Type:   "memory",
				Config: map[string]interface{}{},
			},
		},
		BootstrapAdminUsername: "xion",
		ChatModel:              "gemini-2.0-flash",
	}
}

// ServerConfig represents server configuration for the showcase service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Primary database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: showcase)

	// Local fallback store
	FallbackDir    string
	PrimaryTimeout time.Duration

	// Thumbnail storage configuration
	DefaultStorageBackend string
	StorageBackends       []StorageBackendConfig

	// Bootstrap admin account
	BootstrapAdminUsername string
	BootstrapAdminPassword string

	// Auth
	JWTSecret string

	// Chat assistant
	ChatAPIKey string
	ChatModel  string
}

// StorageBackendConfig represents configuration for a thumbnail storage backend
type StorageBackendConfig struct {
	Name   string
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.FallbackDir == "" {
		return errors.New("fallback_dir is required")
	}

	if c.PrimaryTimeout <= 0 {
		return errors.New("primary_timeout must be positive")
	}

	// Ensure default storage backend exists in configured backends
	found := false
	for _, backend := range c.StorageBackends {
		if backend.Name == c.DefaultStorageBackend {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("default storage backend '%s' not found in configured backends", c.DefaultStorageBackend)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
// The resulting service reads and writes through a dual store: the
// configured primary backend first, with a file-backed local fallback.
func (c *ServerConfig) BuildService(logger *slog.Logger) (showcase.Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	primary, err := c.buildPrimaryStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build primary store: %w", err)
	}

	fallback, err := localfile.New(localfile.Config{
		BaseDir: c.FallbackDir,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build fallback store: %w", err)
	}

	store, err := dualstore.New(dualstore.Config{
		Primary:        primary,
		Fallback:       fallback,
		PrimaryTimeout: c.PrimaryTimeout,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build dual store: %w", err)
	}

	options := []showcase.Option{
		showcase.WithStore(store),
		showcase.WithLogger(logger),
	}
	if c.BootstrapAdminPassword != "" {
		options = append(options, showcase.WithBootstrapAdmin(c.BootstrapAdminUsername, c.BootstrapAdminPassword))
	}

	return showcase.New(options...)
}

// buildPrimaryStore creates the primary Store based on the configuration
func (c *ServerConfig) buildPrimaryStore() (showcase.Store, error) {
	switch c.DatabaseType {
	case "memory":
		return memorystore.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		// Optionally set search_path for the connection
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return pgstore.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// BuildBlobStore creates the default thumbnail BlobStore from the configuration
func (c *ServerConfig) BuildBlobStore() (showcase.BlobStore, error) {
	for _, backend := range c.StorageBackends {
		if backend.Name == c.DefaultStorageBackend {
			return c.buildStorageBackend(backend)
		}
	}
	return nil, fmt.Errorf("default storage backend '%s' not found", c.DefaultStorageBackend)
}

// BuildStreamer creates the chat Streamer, or returns nil when no chat
// API key is configured (the chat endpoint then reports unavailable).
func (c *ServerConfig) BuildStreamer() (chat.Streamer, error) {
	if c.ChatAPIKey == "" {
		return nil, nil
	}
	return chat.NewGemini(chat.GeminiConfig{
		APIKey: c.ChatAPIKey,
		Model:  c.ChatModel,
	})
}

// PingPostgres verifies connectivity to Postgres and optionally sets search_path for the session.
// It fails if the schema (when provided) does not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildStorageBackend creates a BlobStore based on the backend configuration
func (c *ServerConfig) buildStorageBackend(config StorageBackendConfig) (showcase.BlobStore, error) {
	switch config.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		fsConfig := fs.Config{
			BaseDir: getString(config.Config, "base_dir", "./data/uploads"),
		}
		return fs.New(fsConfig)

	case "s3":
		s3Config := s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		}
		return s3storage.New(s3Config)

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}
