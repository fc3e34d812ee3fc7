package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvPort           = "PORT"
	EnvAppEnv         = "APP_ENV"
	EnvDatabaseURL    = "DATABASE_URL"
	EnvAIAPIKey       = "AI_API_KEY"
	EnvGroqAPIKey     = "GROQ_API_KEY"
	EnvAIBaseURL      = "AI_BASE_URL"
	EnvAITextModel    = "AI_TEXT_MODEL"
	EnvAIVisionModel  = "AI_VISION_MODEL"
	EnvAITipModel     = "AI_TIP_MODEL"
	EnvUserKeySecret  = "USER_KEY_SECRET"
	EnvEncryptionKey  = "DATA_ENCRYPTION_KEY"
	EnvAllowedOrigins = "CORS_ALLOWED_ORIGINS"
)

const (
	DefaultPort          = "8080"
	DefaultDatabasePath  = "gymlog.db"
	DefaultAIBaseURL     = "https://api.groq.com/openai/v1"
	DefaultAITextModel   = "llama-3.3-70b-versatile"
	DefaultAIVisionModel = "meta-llama/llama-4-maverick-17b-128e-instruct"
	DefaultAITipModel    = "llama-3.1-8b-instant"
)

type Config struct {
	Port           string
	Development    bool
	DatabaseDriver string
	DatabaseDSN    string
	AIAPIKey       string
	AIBaseURL      string
	AITextModel    string
	AIVisionModel  string
	AITipModel     string
	UserKeySecret  []byte
	EncryptionKey  []byte
	AllowedOrigins []string
}

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:          getenv(EnvPort, DefaultPort),
		Development:   strings.EqualFold(getenv(EnvAppEnv, ""), "development"),
		AIAPIKey:      getenv(EnvAIAPIKey, getenv(EnvGroqAPIKey, "")),
		AIBaseURL:     getenv(EnvAIBaseURL, DefaultAIBaseURL),
		AITextModel:   getenv(EnvAITextModel, DefaultAITextModel),
		AIVisionModel: getenv(EnvAIVisionModel, DefaultAIVisionModel),
		AITipModel:    getenv(EnvAITipModel, DefaultAITipModel),
	}
	cfg.DatabaseDriver, cfg.DatabaseDSN = ResolveDatabase(getenv(EnvDatabaseURL, ""))

	if s := getenv(EnvUserKeySecret, ""); s != "" {
		cfg.UserKeySecret = []byte(s)
	}
	if s := getenv(EnvEncryptionKey, ""); s != "" {
		key, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return Config{}, fmt.Errorf("%s must be base64: %w", EnvEncryptionKey, err)
		}
		cfg.EncryptionKey = key
	}

	origins := getenv(EnvAllowedOrigins, "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg, nil
}

// ResolveDatabase picks the sql driver for a DATABASE_URL value. Postgres
// URLs go to pgx; anything else is treated as a SQLite path.
func ResolveDatabase(url string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url
	case url == "":
		return "sqlite", DefaultDatabasePath
	default:
		return "sqlite", strings.TrimPrefix(url, "sqlite://")
	}
}
