package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration. DBName is the main (registry)
// database; tenant partitions live in per-tenant schemas of the same server.
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string for the registry database.
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// TenantDSN returns the connection string for a tenant partition, pinning the
// connection's search_path to the tenant's schema.
func (c *DBConfig) TenantDSN(tenantKey string) string {
	return c.GetDSN() + " search_path=" + tenantKey
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           string
	Env            string
	FrontendOrigin string
}

// JWTConfig holds session token configuration.
type JWTConfig struct {
	SigningKey string
	ExpiresIn  time.Duration
}

// PusherConfig holds credentials for the external push channel.
type PusherConfig struct {
	AppID   string
	Key     string
	Secret  string
	Cluster string
	Timeout time.Duration
}

// Enabled reports whether push credentials are configured.
func (c *PusherConfig) Enabled() bool {
	return c.AppID != "" && c.Key != "" && c.Secret != ""
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Prefix string
}

// Config holds all configuration.
type Config struct {
	DB      DBConfig
	Server  ServerConfig
	JWT     JWTConfig
	Pusher  PusherConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// Load loads configuration from environment variables. It fails when
// JWT_SIGNING_KEY is unset: every token this process ever signed would be
// forgeable under a known default, so startup refuses instead.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "polling_main"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "5842"),
			Env:            getEnv("APP_ENV", "development"),
			FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:5843"),
		},
		JWT: JWTConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", ""),
			ExpiresIn:  getEnvAsDuration("JWT_EXPIRES_IN", 7*24*time.Hour),
		},
		Pusher: PusherConfig{
			AppID:   getEnv("PUSHER_APP_ID", ""),
			Key:     getEnv("PUSHER_KEY", ""),
			Secret:  getEnv("PUSHER_SECRET", ""),
			Cluster: getEnv("PUSHER_CLUSTER", "ap2"),
			Timeout: getEnvAsDuration("PUSHER_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "polling"),
		},
	}

	if config.JWT.SigningKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY must be set")
	}

	return config, nil
}

// LogConfig returns the configuration as zap fields for startup logging.
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.Bool("pusher_enabled", c.Pusher.Enabled()),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
