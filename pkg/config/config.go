package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	FirebaseApiKey  string
	Environment     string

	// Media backend selection: "gcs" or "cdn"
	MediaBackend  string
	StorageBucket string
	CdnUploadURL  string
	CdnPreset     string
	CdnUserFolder bool

	MaxUploadSize int64

	Preview PreviewConfig
}

type PreviewConfig struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64
	MaxBytes  int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:  getEnv("FIREBASE_API_KEY", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),
		MediaBackend:    getEnv("MEDIA_BACKEND", "gcs"),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		CdnUploadURL:    getEnv("CDN_UPLOAD_URL", ""),
		CdnPreset:       getEnv("CDN_UPLOAD_PRESET", ""),
		CdnUserFolder:   getEnvAsBool("CDN_USER_FOLDER", true),
		MaxUploadSize:   getEnvAsInt64("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB
		Preview: PreviewConfig{
			MaxWidth:  getEnvAsInt("PREVIEW_MAX_WIDTH", 320),
			MaxHeight: getEnvAsInt("PREVIEW_MAX_HEIGHT", 320),
			Quality:   getEnvAsFloat("PREVIEW_QUALITY", 0.7),
			MaxBytes:  getEnvAsInt("PREVIEW_MAX_BYTES", 48*1024),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		floatValue, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
