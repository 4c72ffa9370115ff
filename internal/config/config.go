package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	DBType    string // postgres | file
	DBDSN     string
	DataDir   string
	JWTSecret string
	TokenTTL  int // minutes

	GeminiAPIKey string
	GeminiModel  string

	RedisAddr     string
	RedisPassword string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string

	CORSOrigins []string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv()
		cfg = &Config{
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
			Port:     getEnv("PORT", "8080"),

			DBType:    getEnv("STORAGE_BACKEND", "file"),
			DBDSN:     getEnv("POSTGRES_DSN", ""),
			DataDir:   getEnv("DATA_DIR", "data"),
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvInt("TOKEN_TTL_MINUTES", 1440),

			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),

			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/calendar/callback"),
			FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),

			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && c.DataDir == "" {
		return errors.New("File storage requires DATA_DIR to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env == "production" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL_MINUTES must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadDotEnv() error {
	data, err := os.ReadFile(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, "="); ok {
			os.Setenv(strings.TrimSpace(k), strings.TrimSpace(v))
		}
	}
	return nil
}
