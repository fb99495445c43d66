package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type GeneralConfig struct {
	Env      string
	LogLevel string
	Port     int
}

// BackendConfig describes the campaign generation API the UI talks to
type BackendConfig struct {
	BaseURL string
	// Timeout bounds reference-data, history and search calls
	Timeout time.Duration
	// GenerateTimeout bounds a single generation run, which has no UI cancel
	GenerateTimeout time.Duration
}

// UIConfig holds presentation knobs
type UIConfig struct {
	ProgressInterval time.Duration
	JobTTL           time.Duration
	HistoryLimit     int
	SearchTopK       int
}

type appConfig struct {
	GeneralConfig GeneralConfig
	BackendConfig BackendConfig
	UIConfig      UIConfig
}

// LoadConfigs loads the configurations from the environment variables
func LoadConfigs() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env files: %v", err)
	}

	loadGeneralConfigs()
	loadBackendConfigs()
	loadUIConfigs()
}

var AppConfigInstance appConfig

// loadGeneralConfigs loads the general configurations from the environment variables
func loadGeneralConfigs() {
	AppConfigInstance.GeneralConfig.Env = getEnv("APP_ENV", "dev")
	AppConfigInstance.GeneralConfig.LogLevel = getEnv("LOG_LEVEL", "info")
	AppConfigInstance.GeneralConfig.Port = getEnvInt("PORT", 8080)
}

func loadBackendConfigs() {
	AppConfigInstance.BackendConfig.BaseURL = getEnv("BACKEND_URL", "http://localhost:8000")
	AppConfigInstance.BackendConfig.Timeout = getEnvDuration("BACKEND_TIMEOUT", 15*time.Second)
	AppConfigInstance.BackendConfig.GenerateTimeout = getEnvDuration("GENERATE_TIMEOUT", 10*time.Minute)
}

func loadUIConfigs() {
	AppConfigInstance.UIConfig.ProgressInterval = getEnvDuration("PROGRESS_INTERVAL", 3*time.Second)
	AppConfigInstance.UIConfig.JobTTL = getEnvDuration("JOB_TTL", 30*time.Minute)
	AppConfigInstance.UIConfig.HistoryLimit = getEnvInt("HISTORY_LIMIT", 10)
	AppConfigInstance.UIConfig.SearchTopK = getEnvInt("SEARCH_TOP_K", 5)
}

// getEnv returns the environment variable value if it exists, otherwise returns the fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns the environment variable value as int if it exists, otherwise returns the fallback value
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
