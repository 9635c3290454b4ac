package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort int

	DBDriver   string
	SQLitePath string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	CacheTTL      time.Duration

	BasicAuthUsername string
	BasicAuthPassword string
	BcryptCost        int
	RateLimitMax      int

	LogDir string
}

func LoadConfig() Config {
	// Load .env when present
	if err := godotenv.Load(); err != nil {
		// stay quiet in tests
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		AppPort:           getInt("APP_PORT", 3004),
		DBDriver:          getString("DB_DRIVER", "sqlite"),
		SQLitePath:        getString("SQLITE_PATH", "db.sqlite"),
		DBHost:            getString("DB_HOST", "localhost"),
		DBPort:            getInt("DB_PORT", 5432),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		RedisHost:         os.Getenv("REDIS_HOST"),
		RedisPort:         getInt("REDIS_PORT", 6379),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		CacheTTL:          getDuration("CACHE_TTL", time.Hour),
		BasicAuthUsername: getString("BASIC_AUTH_USERNAME", "username"),
		BasicAuthPassword: getString("BASIC_AUTH_PASSWORD", "password"),
		BcryptCost:        getInt("BCRYPT_COST", 0),
		RateLimitMax:      getInt("RATE_LIMIT_MAX", 100),
		LogDir:            getString("LOG_DIR", "logs"),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
