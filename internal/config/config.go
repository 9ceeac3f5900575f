package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"task_manager/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort        string
	AppVersion     string
	DatabaseURL    string
	JWTSecret      string
	JWTTTL         time.Duration
	UploadDir      string
	AllowedOrigins []string

	LogLevel  string
	LogFormat string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration
	// per-user cap on task, comment and business writes
	UserWriteLimit  int
	UserWriteWindow time.Duration

	AllowAdminSignup     bool
	StrictConflictStatus bool
	MaxTaskDepth         int

	DeadlineWatcherEnabled bool
	DeadlineScanInterval   time.Duration

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// Enabled reports whether outgoing mail is configured.
func (s SMTPConfig) Enabled() bool { return s.Host != "" }

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	cfg := FromEnv()
	cfg.DatabaseURL = dbURL
	cfg.JWTSecret = jwtSecret
	return cfg
}

// FromEnv builds a Config from the environment without enforcing required keys.
func FromEnv() *Config {
	// ALLOWED_ORIGINS через запятую; пусто = любой origin
	var origins []string
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		AppPort:        envString("APP_PORT", "5000"),
		AppVersion:     envString("APP_VERSION", "dev"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTTL:         envDuration("JWT_TTL", time.Hour),
		UploadDir:      envString("UPLOAD_DIR", "uploads"),
		AllowedOrigins: origins,

		LogLevel:  envString("LOG_LEVEL", "info"),
		LogFormat: os.Getenv("LOG_FORMAT"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		APIRateLimit:   envInt("API_RATE_LIMIT", 100),
		APIRateWindow:  time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow: time.Duration(envInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,

		UserWriteLimit:  envInt("USER_WRITE_LIMIT", 60),
		UserWriteWindow: time.Duration(envInt("USER_WRITE_WINDOW_SECONDS", 60)) * time.Second,

		AllowAdminSignup:     envBool("ALLOW_ADMIN_SIGNUP", false),
		StrictConflictStatus: envBool("STRICT_CONFLICT_STATUS", false),
		MaxTaskDepth:         envInt("MAX_TASK_DEPTH", 0),

		DeadlineWatcherEnabled: envBool("DEADLINE_WATCHER_ENABLED", true),
		DeadlineScanInterval:   envDuration("DEADLINE_SCAN_INTERVAL", 30*time.Second),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envString("SMTP_PORT", "587"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("MAIL_FROM"),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt ignores malformed and negative values.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// envDuration accepts Go durations ("45s") or a bare number of seconds.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
