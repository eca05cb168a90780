package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBDriver          string // sqlite | postgres
	DBDSN             string
	SessionStore      string // sql | redis
	RedisURL          string
	SessionTTL        time.Duration
	CookieSecure      bool
	PasswordMinLength int
	BcryptCost        int
	AdminUsername     string
	AdminPassword     string
	LogLevel          string
	LogFile           string
	TemplatesDir      string
	StaticDir         string
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Load reads an optional .env file, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	driver := strings.ToLower(getenv("DB_DRIVER", "sqlite"))
	if driver != "postgres" {
		driver = "sqlite"
	}
	store := strings.ToLower(getenv("SESSION_STORE", "sql"))
	if store != "redis" {
		store = "sql"
	}
	minLen := getenvInt("PASSWORD_MIN_LENGTH", 0)
	if minLen < 0 {
		minLen = 0
	}

	cfg := Config{
		Port:              getenv("PORT", "8080"),
		DBDriver:          driver,
		DBDSN:             getenv("DB_DSN", "authentiq.db"), // sqlite file in project root
		SessionStore:      store,
		RedisURL:          getenv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:        getenvDuration("SESSION_TTL", 14*24*time.Hour),
		CookieSecure:      getenvBool("COOKIE_SECURE", false),
		PasswordMinLength: minLen,
		BcryptCost:        getenvInt("BCRYPT_COST", 12),
		AdminUsername:     getenv("ADMIN_USERNAME", ""),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFile:           getenv("LOG_FILE", ""),
		TemplatesDir:      getenv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:         getenv("STATIC_DIR", "./web/static"),
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s SESSION_STORE=%s SESSION_TTL=%s PASSWORD_MIN_LENGTH=%d LOG_LEVEL=%s",
		cfg.Port, cfg.DBDriver, cfg.SessionStore, cfg.SessionTTL, cfg.PasswordMinLength, cfg.LogLevel)
	return cfg
}
