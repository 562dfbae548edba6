package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort       string
	FirebaseProject  string
	FirebaseApiKey   string
	Environment      string
	StorageBucket    string
	SettlementURL    string
	SettlementAPIKey string
	BookingURL       string
	NotificationURL  string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		FirebaseProject:  getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:   getEnv("FIREBASE_API_KEY", ""),
		Environment:      getEnv("ENVIRONMENT", "development"),
		StorageBucket:    getEnv("STORAGE_BUCKET", ""),
		SettlementURL:    getEnv("SETTLEMENT_SERVICE_URL", ""),
		SettlementAPIKey: getEnv("SETTLEMENT_API_KEY", ""),
		BookingURL:       getEnv("BOOKING_SERVICE_URL", ""),
		NotificationURL:  getEnv("NOTIFICATION_SERVICE_URL", ""),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
