package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	Store       StoreConfig
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
}

type StoreConfig struct {
	Driver   string // "sqlite" or "mongo"
	DBPath   string
	MongoURI string
	MongoDB  string
}

// Load reads configuration from the environment. Values from a .env file
// in the working directory fill in keys the environment leaves unset.
func Load() Config {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile is Load with an explicit dotenv path. A missing file is an error.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, err
	}
	return fromEnv(), nil
}

func fromEnv() Config {
	addr := envString("QUILL_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}
	return Config{
		Addr: addr,
		Store: StoreConfig{
			Driver:   strings.ToLower(envString("QUILL_STORE", "sqlite")),
			DBPath:   envString("QUILL_DB", "quill.db"),
			MongoURI: envString("QUILL_MONGO_URI", "mongodb://localhost:27017"),
			MongoDB:  envString("QUILL_MONGO_DB", "quill"),
		},
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    envDuration("QUILL_TOKEN_TTL", 24*time.Hour),
		BcryptCost:  envInt("QUILL_BCRYPT_COST", 10),
		LogLevel:    envString("QUILL_LOG_LEVEL", "info"),
		LogFormat:   envString("QUILL_LOG_FORMAT", "console"),
		CORSOrigins: envList("QUILL_CORS_ORIGINS", []string{"*"}),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
