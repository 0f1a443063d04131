// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Planning PlanningConfig
	Cache    CacheConfig
	Drive    DriveConfig
	Storage  StorageConfig
	Insight  InsightConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	IngestPort     string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PlanningConfig tunes the forecasting and planning engine.
type PlanningConfig struct {
	HorizonDays        int
	Workers            int
	IncludeTrend       bool
	IncludeSeasonality bool
	ConfidenceInterval bool
}

type CacheConfig struct {
	Enabled        bool
	RedisURL       string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	PlanTTLSeconds int
}

// DriveConfig configures Google Drive ingestion of sales/inventory exports.
type DriveConfig struct {
	CredentialsJSON string
	SalesFolderID   string
	DownloadDir     string
}

// StorageConfig configures the S3-compatible archive for plan exports.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// InsightConfig configures the narrative-insight collaborator.
type InsightConfig struct {
	Enabled   bool
	OpenAIKey string
	Model     string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("SERVER_INGEST_PORT", "8090")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "stockcast")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("PLAN_HORIZON_DAYS", 90)
		viper.SetDefault("PLAN_WORKERS", 0)
		viper.SetDefault("PLAN_INCLUDE_TREND", true)
		viper.SetDefault("PLAN_INCLUDE_SEASONALITY", true)
		viper.SetDefault("PLAN_CONFIDENCE_INTERVAL", true)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_PLAN_TTL_SECONDS", 300)
		viper.SetDefault("DRIVE_CREDENTIALS_JSON", "")
		viper.SetDefault("DRIVE_SALES_FOLDER_ID", "")
		viper.SetDefault("DRIVE_DOWNLOAD_DIR", "./data/downloads")
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "stockcast-plans")
		viper.SetDefault("STORAGE_REGION", "")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("INSIGHT_ENABLED", false)
		viper.SetDefault("OPENAI_API_KEY", "")
		viper.SetDefault("INSIGHT_MODEL", "gpt-4o")

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("DRIVE_DOWNLOAD_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
				IngestPort:     viper.GetString("SERVER_INGEST_PORT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Planning: PlanningConfig{
				HorizonDays:        viper.GetInt("PLAN_HORIZON_DAYS"),
				Workers:            viper.GetInt("PLAN_WORKERS"),
				IncludeTrend:       viper.GetBool("PLAN_INCLUDE_TREND"),
				IncludeSeasonality: viper.GetBool("PLAN_INCLUDE_SEASONALITY"),
				ConfidenceInterval: viper.GetBool("PLAN_CONFIDENCE_INTERVAL"),
			},
			Cache: CacheConfig{
				Enabled:        viper.GetBool("CACHE_ENABLED"),
				RedisURL:       viper.GetString("REDIS_URL"),
				RedisHost:      viper.GetString("REDIS_HOST"),
				RedisPort:      viper.GetString("REDIS_PORT"),
				RedisPassword:  viper.GetString("REDIS_PASSWORD"),
				RedisDB:        viper.GetInt("REDIS_DB"),
				PlanTTLSeconds: viper.GetInt("CACHE_PLAN_TTL_SECONDS"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("DRIVE_CREDENTIALS_JSON"),
				SalesFolderID:   viper.GetString("DRIVE_SALES_FOLDER_ID"),
				DownloadDir:     viper.GetString("DRIVE_DOWNLOAD_DIR"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Insight: InsightConfig{
				Enabled:   viper.GetBool("INSIGHT_ENABLED"),
				OpenAIKey: viper.GetString("OPENAI_API_KEY"),
				Model:     viper.GetString("INSIGHT_MODEL"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
