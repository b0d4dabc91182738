package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the primary database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithFallbackDir sets the directory for the file-backed fallback store
func WithFallbackDir(dir string) Option {
	return func(c *ServerConfig) error {
		if dir == "" {
			return fmt.Errorf("fallback directory cannot be empty")
		}
		c.FallbackDir = dir
		return nil
	}
}

// WithPrimaryTimeout sets the per-call timeout for the primary store
func WithPrimaryTimeout(d time.Duration) Option {
	return func(c *ServerConfig) error {
		if d <= 0 {
			return fmt.Errorf("primary timeout must be positive, got: %s", d)
		}
		c.PrimaryTimeout = d
		return nil
	}
}

// WithDefaultStorage sets the default thumbnail storage backend name
func WithDefaultStorage(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("default storage backend name cannot be empty")
		}
		c.DefaultStorageBackend = name
		return nil
	}
}

// WithFilesystemStorage adds a filesystem thumbnail storage backend.
// If name is empty, defaults to "fs".
func WithFilesystemStorage(name, baseDir string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "fs"
		}
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		backend := StorageBackendConfig{
			Name: name,
			Type: "fs",
			Config: map[string]interface{}{
				"base_dir": baseDir,
			},
		}
		c.StorageBackends = upsertStorageBackend(c.StorageBackends, backend)
		return nil
	}
}

// WithS3Storage adds an S3 thumbnail storage backend.
// If name is empty, defaults to "s3".
func WithS3Storage(name, bucket, region string, extra map[string]interface{}) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "s3"
		}
		if bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
		cfg := map[string]interface{}{
			"bucket": bucket,
		}
		if region != "" {
			cfg["region"] = region
		}
		for k, v := range extra {
			cfg[k] = v
		}
		backend := StorageBackendConfig{
			Name:   name,
			Type:   "s3",
			Config: cfg,
		}
		c.StorageBackends = upsertStorageBackend(c.StorageBackends, backend)
		return nil
	}
}

// WithBootstrapAdmin sets the bootstrap admin credentials
func WithBootstrapAdmin(username, password string) Option {
	return func(c *ServerConfig) error {
		if username == "" {
			return fmt.Errorf("bootstrap admin username cannot be empty")
		}
		c.BootstrapAdminUsername = username
		c.BootstrapAdminPassword = password
		return nil
	}
}

// WithJWTSecret sets the secret used to sign admin session tokens
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		if secret == "" {
			return fmt.Errorf("jwt secret cannot be empty")
		}
		c.JWTSecret = secret
		return nil
	}
}

// WithChat configures the chat assistant upstream
func WithChat(apiKey, model string) Option {
	return func(c *ServerConfig) error {
		c.ChatAPIKey = apiKey
		if model != "" {
			c.ChatModel = model
		}
		return nil
	}
}
