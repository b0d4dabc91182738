package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/simple-showcase/pkg/showcase/api"
	"github.com/tendant/simple-showcase/pkg/showcase/config"
)

// Config is the environment-driven server configuration
type Config struct {
	Port           string        `env:"PORT" env-default:"8080"`
	Environment    string        `env:"ENVIRONMENT" env-default:"development"`
	DatabaseURL    string        `env:"DATABASE_URL" env-default:""`
	DBSchema       string        `env:"DB_SCHEMA" env-default:"showcase"`
	FallbackDir    string        `env:"FALLBACK_DIR" env-default:"./data/fallback"`
	PrimaryTimeout time.Duration `env:"PRIMARY_TIMEOUT" env-default:"3s"`
	StorageURL     string        `env:"STORAGE_URL" env-default:"memory://"`
	AdminUsername  string        `env:"ADMIN_USERNAME" env-default:"xion"`
	AdminPassword  string        `env:"ADMIN_PASSWORD" env-default:""`
	JWTSecret      string        `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY" env-default:""`
	GeminiModel    string        `env:"GEMINI_MODEL" env-default:"gemini-2.0-flash"`
}

func main() {
	// Load .env if present; real environment wins
	godotenv.Load()

	var envCfg Config
	if err := cleanenv.ReadEnv(&envCfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	serverConfig, err := buildServerConfig(envCfg)
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		os.Exit(1)
	}

	svc, err := serverConfig.BuildService(logger)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	blobs, err := serverConfig.BuildBlobStore()
	if err != nil {
		slog.Error("Failed to build thumbnail storage", "err", err)
		os.Exit(1)
	}

	streamer, err := serverConfig.BuildStreamer()
	if err != nil {
		slog.Error("Failed to build chat client", "err", err)
		os.Exit(1)
	}
	if streamer == nil {
		slog.Warn("GEMINI_API_KEY not set; chat assistant disabled")
	}

	// Create the bootstrap admin before accepting traffic
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	admin, err := svc.EnsureBootstrapAdmin(ctx)
	cancel()
	if err != nil {
		slog.Error("Failed to ensure bootstrap admin", "err", err)
		os.Exit(1)
	}
	slog.Info("Bootstrap admin ready", "username", admin.Username)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS for development
	if serverConfig.Environment == "development" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				if req.Method == "OPTIONS" {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, req)
			})
		})
	}

	r.Mount("/", api.NewRouter(api.RouterConfig{
		Service:   svc,
		BlobStore: blobs,
		Streamer:  streamer,
		JWTSecret: envCfg.JWTSecret,
	}))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: r,
	}

	go func() {
		slog.Info("Showcase server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"storage", serverConfig.DefaultStorageBackend)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

func buildServerConfig(envCfg Config) (*config.ServerConfig, error) {
	opts := []config.Option{
		config.WithPort(envCfg.Port),
		config.WithEnvironment(envCfg.Environment),
		config.WithFallbackDir(envCfg.FallbackDir),
		config.WithPrimaryTimeout(envCfg.PrimaryTimeout),
		config.WithDatabaseSchema(envCfg.DBSchema),
		config.WithJWTSecret(envCfg.JWTSecret),
		config.WithChat(envCfg.GeminiAPIKey, envCfg.GeminiModel),
	}

	if envCfg.DatabaseURL != "" && envCfg.DatabaseURL != "memory" {
		opts = append(opts, config.WithDatabase("postgres", envCfg.DatabaseURL))
	}
	if envCfg.AdminPassword != "" {
		opts = append(opts, config.WithBootstrapAdmin(envCfg.AdminUsername, envCfg.AdminPassword))
	}

	switch {
	case envCfg.StorageURL == "" || envCfg.StorageURL == "memory" || envCfg.StorageURL == "memory://":
		// default memory backend
	case strings.HasPrefix(envCfg.StorageURL, "file://"):
		opts = append(opts,
			config.WithFilesystemStorage("fs", strings.TrimPrefix(envCfg.StorageURL, "file://")),
			config.WithDefaultStorage("fs"))
	case strings.HasPrefix(envCfg.StorageURL, "s3://"):
		bucket := strings.TrimPrefix(envCfg.StorageURL, "s3://")
		if i := strings.IndexByte(bucket, '?'); i >= 0 {
			bucket = bucket[:i]
		}
		opts = append(opts,
			config.WithS3Storage("s3", bucket, os.Getenv("AWS_REGION"), map[string]interface{}{
				"access_key_id":     os.Getenv("AWS_ACCESS_KEY_ID"),
				"secret_access_key": os.Getenv("AWS_SECRET_ACCESS_KEY"),
			}),
			config.WithDefaultStorage("s3"))
	default:
		return nil, fmt.Errorf("unsupported STORAGE_URL format: %s", envCfg.StorageURL)
	}

	return config.Load(opts...)
}
