package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	MongoURI      string
	MongoDB       string
	PublicBaseURL string
	JWTSecret     string
	Geocode       GeocodeConfig
}

type GeocodeConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	geocodeTimeout, err := strconv.Atoi(getEnv("GEOCODE_TIMEOUT", "30"))
	if err != nil {
		geocodeTimeout = 30
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8083"),
		DatabaseURL:   dbURL,
		MongoURI:      mongoURI,
		MongoDB:       getEnv("MONGO_DB", "housing"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8083"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Geocode: GeocodeConfig{
			Endpoint: getEnv("GEOCODE_ENDPOINT", "https://maps.googleapis.com/maps/api/geocode/json"),
			APIKey:   os.Getenv("GEOCODE_API_KEY"),
			Timeout:  time.Duration(geocodeTimeout) * time.Second,
		},
	}

	return cfg, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
