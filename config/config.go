package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port string
	Env  string

	DBDriver   string
	DBDSN      string
	DBDebug    bool
	Migrations bool

	LogLevel string
	LogFile  string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	MediaRoot string
	MediaURL  string
	S3Bucket  string
	S3Region  string

	SchedulerPollInterval time.Duration
	SchedulerWorkers      int
	SchedulerMaxAttempts  int
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file > default.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using system environment variables.")
	}

	cfg := Config{}
	cfg.Port = getEnv("PORT", "8000")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.DBDriver = getEnv("DB_DRIVER", "postgres")
	cfg.DBDSN = os.Getenv("DATABASE_DSN")
	if cfg.DBDSN == "" {
		cfg.DBDSN = postgresDSNFromParts()
	}
	cfg.DBDebug = ParseBool("DB_DEBUG", false)
	cfg.Migrations = ParseBool("MIGRATIONS", false)
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFile = os.Getenv("LOG_FILE")
	cfg.AccessTokenTTL = ParseDuration("ACCESS_TOKEN_TTL", 30*time.Minute)
	cfg.RefreshTokenTTL = ParseDuration("REFRESH_TOKEN_TTL", 24*time.Hour)
	cfg.MediaRoot = getEnv("MEDIA_ROOT", "media")
	cfg.MediaURL = getEnv("MEDIA_URL", "/media/")
	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3Region = getEnv("S3_REGION", "eu-central-1")
	cfg.SchedulerPollInterval = ParseDuration("SCHEDULER_POLL_INTERVAL", 5*time.Second)
	cfg.SchedulerWorkers = ParseInt("SCHEDULER_WORKERS", 4)
	cfg.SchedulerMaxAttempts = ParseInt("SCHEDULER_MAX_ATTEMPTS", 3)
	return cfg
}

// postgresDSNFromParts builds a URL DSN from DB_HOST, DB_PORT, DB_USER,
// DB_PASSWORD, DB_NAME and DB_SSLMODE.
func postgresDSNFromParts() string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%s", getEnv("DB_HOST", "localhost"), getEnv("DB_PORT", "5432")),
		User:   url.UserPassword(getEnv("DB_USER", "postgres"), getEnv("DB_PASSWORD", "postgres")),
		Path:   "/" + getEnv("DB_NAME", "social_media"),
	}
	q := url.Values{}
	q.Set("sslmode", getEnv("DB_SSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logrus.Warnf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}

func ParseInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			logrus.Warnf("invalid positive integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}

func ParseDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			logrus.Warnf("invalid duration for %s: %s", key, v)
			return def
		}
		return d
	}
	return def
}
