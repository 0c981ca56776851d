package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AppEnv         string
	MongoURI       string
	MongoDB        string
	ClassifierURL  string
	CloudName      string
	CloudAPIKey    string
	CloudAPISecret string
	CloudFolder    string
	JWTSecret      string
	JWTExpireHours int
	FrontendURL    string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "civicfix"),
		ClassifierURL:  getEnv("CLASSIFIER_URL", "http://127.0.0.1:5000"),
		CloudName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudFolder:    getEnv("CLOUDINARY_FOLDER", "reports"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
