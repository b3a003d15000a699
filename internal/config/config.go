package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region                string
	S3Bucket                string
	S3AccessKey             string
	S3SecretKey             string
	S3Endpoint              string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3Timeout               time.Duration // Per-call timeout for S3 requests
	S3EnsureBucket          bool          // Create the bucket at startup if missing
	S3PresignExpiryUpload   time.Duration // Lifetime of upload (PUT) URLs
	S3PresignExpiryDownload time.Duration // Lifetime of download (GET) URLs, capped by the share window

	// Uploads & shares
	UploadMaxSize       int64
	UploadDefaultFolder string
	ShareMaxDuration    int // minutes

	// Background jobs
	SweepInterval time.Duration // 0 disables the in-process expiry sweep

	// Rate limiting (download endpoint, per IP)
	DownloadRateLimit  int
	DownloadRateWindow time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "sfss"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envRequired("APP_URL"), // Required: base URL for email links
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/sfss.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:                envRequired("S3_REGION"),
		S3Bucket:                envRequired("S3_BUCKET"),
		S3AccessKey:             envRequired("S3_ACCESS_KEY"),
		S3SecretKey:             envRequired("S3_SECRET_KEY"),
		S3Endpoint:              envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3Timeout:               envDuration("S3_TIMEOUT", 10*time.Second),
		S3EnsureBucket:          envBool("S3_ENSURE_BUCKET", true),
		S3PresignExpiryUpload:   envDuration("S3_PRESIGN_EXPIRY_UPLOAD", 15*time.Minute),
		S3PresignExpiryDownload: envDuration("S3_PRESIGN_EXPIRY_DOWNLOAD", 1*time.Hour),

		// Uploads & shares
		UploadMaxSize:       envInt64("UPLOAD_MAX_SIZE", 100<<20), // 100MB
		UploadDefaultFolder: envString("UPLOAD_DEFAULT_FOLDER", "uploads"),
		ShareMaxDuration:    int(envInt64("SHARE_MAX_DURATION", 30*24*60)), // 30 days

		// Background jobs
		SweepInterval: envDuration("SWEEP_INTERVAL", 5*time.Minute),

		// Rate limiting
		DownloadRateLimit:  int(envInt64("DOWNLOAD_RATE_LIMIT", 20)),
		DownloadRateWindow: envDuration("DOWNLOAD_RATE_WINDOW", 1*time.Minute),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows email to run in log mode for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires JWT_SECRET of at least 32 characters")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
