package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SwaggerHost string
	ResetDB     bool

	SessionBackend       string
	SessionCookieName    string
	SessionTTL           time.Duration
	SessionCookieSecure  bool
	SessionSweepSchedule string

	BcryptCost int

	PublicDir      string
	UploadPDFDir   string
	UploadVideoDir string
	UploadMaxBytes int64

	ProtectContentPosts    bool
	LegacyLoginFailure     bool
	CleanupOrphanedUploads bool

	// Zero means no deadline beyond the request's own.
	StoreTimeout  time.Duration
	UploadTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Session backends.
const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Load builds Config from environment with sensible defaults. Values from a
// .env file in the working directory are applied first without overriding
// variables already set in the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "3000"),
		MySQLDSN:    getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/coursehub?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		ResetDB:     getEnvBool("RESET_DB", false),

		SessionBackend:       getEnv("SESSION_BACKEND", SessionBackendRedis),
		SessionCookieName:    getEnv("SESSION_COOKIE_NAME", "coursehub.sid"),
		SessionTTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionCookieSecure:  getEnvBool("SESSION_COOKIE_SECURE", false),
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 5m"),

		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		PublicDir:      getEnv("PUBLIC_DIR", "public"),
		UploadPDFDir:   getEnv("UPLOAD_PDF_DIR", "uploads/pdfs"),
		UploadVideoDir: getEnv("UPLOAD_VIDEO_DIR", "uploads/videos"),
		UploadMaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 500<<20)),

		ProtectContentPosts:    getEnvBool("PROTECT_CONTENT_POSTS", true),
		LegacyLoginFailure:     getEnvBool("LEGACY_LOGIN_FAILURE", false),
		CleanupOrphanedUploads: getEnvBool("CLEANUP_ORPHANED_UPLOADS", true),

		StoreTimeout:  getEnvDuration("STORE_TIMEOUT", 0),
		UploadTimeout: getEnvDuration("UPLOAD_TIMEOUT", 0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
