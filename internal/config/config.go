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
	Business BusinessConfig
	Cache    CacheConfig
	Drive    DriveConfig
	Storage  StorageConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// BusinessConfig holds the fixed commercial constants of the delivery
// operation. A unit is one 20-liter container sold at a flat price with
// tax already included.
type BusinessConfig struct {
	LocalName           string
	UnitPrice           float64
	LitersPerUnit       float64
	FixedCost           float64
	VariableCostPerUnit float64
	TaxRate             float64
	GoalMultiplier      float64
	CapacityTotalLiters float64
	ExtractTolerance    float64
	ValidateTolerance   float64
	GlobalTolerance     float64
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

type DriveConfig struct {
	CredentialsJSON string
	OrdersFolder    string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type AppConfig struct {
	DataDir string
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
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "aguavida")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("BUSINESS_LOCAL_NAME", "Aguas Ancud")
		viper.SetDefault("BUSINESS_UNIT_PRICE", 2000.0)
		viper.SetDefault("BUSINESS_LITERS_PER_UNIT", 20.0)
		viper.SetDefault("BUSINESS_FIXED_COST", 500000.0)
		viper.SetDefault("BUSINESS_VARIABLE_COST_PER_UNIT", 600.0)
		viper.SetDefault("BUSINESS_TAX_RATE", 0.19)
		viper.SetDefault("BUSINESS_GOAL_MULTIPLIER", 1.10)
		viper.SetDefault("BUSINESS_CAPACITY_TOTAL_LITERS", 60000.0)
		viper.SetDefault("BUSINESS_EXTRACT_TOLERANCE", 0.2)
		viper.SetDefault("BUSINESS_VALIDATE_TOLERANCE", 0.3)
		viper.SetDefault("BUSINESS_GLOBAL_TOLERANCE", 0.5)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
		viper.SetDefault("DRIVE_ORDERS_FOLDER", "aguavida/pedidos")
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_BUCKET", "aguavida-kpi-snapshots")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("APP_DATA_DIR", "./data/output")

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_DATA_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Business: BusinessConfig{
				LocalName:           viper.GetString("BUSINESS_LOCAL_NAME"),
				UnitPrice:           viper.GetFloat64("BUSINESS_UNIT_PRICE"),
				LitersPerUnit:       viper.GetFloat64("BUSINESS_LITERS_PER_UNIT"),
				FixedCost:           viper.GetFloat64("BUSINESS_FIXED_COST"),
				VariableCostPerUnit: viper.GetFloat64("BUSINESS_VARIABLE_COST_PER_UNIT"),
				TaxRate:             viper.GetFloat64("BUSINESS_TAX_RATE"),
				GoalMultiplier:      viper.GetFloat64("BUSINESS_GOAL_MULTIPLIER"),
				CapacityTotalLiters: viper.GetFloat64("BUSINESS_CAPACITY_TOTAL_LITERS"),
				ExtractTolerance:    viper.GetFloat64("BUSINESS_EXTRACT_TOLERANCE"),
				ValidateTolerance:   viper.GetFloat64("BUSINESS_VALIDATE_TOLERANCE"),
				GlobalTolerance:     viper.GetFloat64("BUSINESS_GLOBAL_TOLERANCE"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
				OrdersFolder:    viper.GetString("DRIVE_ORDERS_FOLDER"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			App: AppConfig{
				DataDir: viper.GetString("APP_DATA_DIR"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
