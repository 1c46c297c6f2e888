package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	TokenTTL    int // hours
	MongoURI    string
	DBName      string
	SkipAuth    bool
	DevUserID   string // Principal injected when SkipAuth is set; still goes through the permission gate
	Environment string
	AppId       string
	CORSOrigins string

	// Cron spec for the permission backfill job. Empty disables the schedule.
	BackfillSchedule string
	BackfillOnStart  bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		TokenTTL:         getEnvInt("TOKEN_TTL_HOURS", 72),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("DB_NAME", "go-cmms"),
		SkipAuth:         getEnv("SKIP_AUTH", "false") == "true",
		DevUserID:        getEnv("DEV_USER_ID", ""),
		Environment:      getEnv("ENVIRONMENT", "development"),
		AppId:            getEnv("APP_ID", "go-cmms"),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000, http://localhost:8000"),
		BackfillSchedule: getEnv("PERMISSION_BACKFILL_SCHEDULE", "@daily"),
		BackfillOnStart:  getEnv("PERMISSION_BACKFILL_ON_START", "true") == "true",
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}
