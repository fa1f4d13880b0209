package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	App struct {
		Env  string
		Port string
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}
	JWT struct {
		AccessTokenSecret        string
		AccessTokenExpiryMinutes int
	}
	Jobs struct {
		// ReminderLeadHours is how far before kickoff availability reminders
		// are sent. The sweep scans a one-hour window ending at this lead.
		ReminderLeadHours int
	}
}

// DB is the global database handle, set by Initialize.
var DB *gorm.DB

var (
	appConfig *Config
	once      sync.Once
)

// LoadConfig reads configuration from the environment (and .env if present).
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Info("no .env file found, relying on system environment variables")
	}

	cfg := &Config{}

	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.Port = getEnv("PORT", "8080")

	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "password")
	cfg.DB.Name = getEnv("DB_NAME", "golazo_db")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.JWT.AccessTokenSecret = getEnv("JWT_ACCESS_TOKEN_SECRET", "change-me")

	var err error
	cfg.JWT.AccessTokenExpiryMinutes, err = getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY_MINUTES: %w", err)
	}
	cfg.Jobs.ReminderLeadHours, err = getEnvAsInt("REMINDER_LEAD_HOURS", 48)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_LEAD_HOURS: %w", err)
	}

	if cfg.JWT.AccessTokenSecret == "change-me" && cfg.App.Env == "production" {
		zap.L().Warn("using default JWT secret in production, set JWT_ACCESS_TOKEN_SECRET")
	}

	appConfig = cfg
	return cfg, nil
}

// ConnectDB opens the gorm Postgres connection and sets the global DB handle.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port, cfg.DB.SSLMode,
	)

	gormConfig := &gorm.Config{}
	if cfg.App.Env == "development" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = gormDB
	zap.L().Info("connected to database", zap.String("name", cfg.DB.Name))
	return gormDB, nil
}

// InitLogger installs the global zap logger: human-readable in development,
// JSON in production.
func InitLogger(env string) error {
	var (
		log *zap.Logger
		err error
	)
	if env == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(log)
	return nil
}

// Initialize loads configuration, installs the logger and connects to the
// database exactly once.
func Initialize() error {
	var initErr error
	once.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			initErr = fmt.Errorf("failed to load configuration: %w", err)
			return
		}
		if err := InitLogger(cfg.App.Env); err != nil {
			initErr = err
			return
		}
		if _, err := ConnectDB(cfg); err != nil {
			initErr = err
		}
	})
	return initErr
}

// GetConfig returns the loaded configuration. Initialize must run first.
func GetConfig() *Config {
	if appConfig == nil {
		zap.L().Fatal("configuration not loaded, call config.Initialize first")
	}
	return appConfig
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected integer, got %q", key, valueStr)
	}
	return value, nil
}
