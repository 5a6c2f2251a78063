package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `json:"server" mapstructure:"server"`
	Storage   StorageConfig   `json:"storage" mapstructure:"storage"`
	Database  DatabaseConfig  `json:"database" mapstructure:"database"`
	Redis     RedisConfig     `json:"redis" mapstructure:"redis"`
	RateLimit RateLimitConfig `json:"rate_limit" mapstructure:"rate_limit"`
	Log       LogConfig       `json:"log" mapstructure:"log"`
	UI        UIConfig        `json:"ui" mapstructure:"ui"`
}

type ServerConfig struct {
	Host           string        `json:"host" mapstructure:"host"`
	Port           string        `json:"port" mapstructure:"port"`
	ReadTimeout    time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `json:"idle_timeout" mapstructure:"idle_timeout"`
	Environment    string        `json:"environment" mapstructure:"environment"`
	AllowedOrigins []string      `json:"allowed_origins" mapstructure:"allowed_origins"`
}

// Storage drivers understood by storage.Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type StorageConfig struct {
	Driver         string        `json:"driver" mapstructure:"driver"`
	Key            string        `json:"key" mapstructure:"key"`
	Dir            string        `json:"dir" mapstructure:"dir"`
	OpTimeout      time.Duration `json:"op_timeout" mapstructure:"op_timeout"`
	CircuitBreaker bool          `json:"circuit_breaker" mapstructure:"circuit_breaker"`
	MaxFailures    int           `json:"max_failures" mapstructure:"max_failures"`
	BreakerTimeout time.Duration `json:"breaker_timeout" mapstructure:"breaker_timeout"`
}

type DatabaseConfig struct {
	Path            string        `json:"path" mapstructure:"path"`
	Host            string        `json:"host" mapstructure:"host"`
	Port            string        `json:"port" mapstructure:"port"`
	User            string        `json:"user" mapstructure:"user"`
	Password        string        `json:"password" mapstructure:"password"`
	Name            string        `json:"name" mapstructure:"name"`
	SSLMode         string        `json:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
}

type RedisConfig struct {
	Host         string        `json:"host" mapstructure:"host"`
	Port         string        `json:"port" mapstructure:"port"`
	Password     string        `json:"password" mapstructure:"password"`
	DB           int           `json:"db" mapstructure:"db"`
	PoolSize     int           `json:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns" mapstructure:"min_idle_conns"`
	MaxRetries   int           `json:"max_retries" mapstructure:"max_retries"`
	DialTimeout  time.Duration `json:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
}

type RateLimitConfig struct {
	Enabled        bool `json:"enabled" mapstructure:"enabled"`
	RequestsPerMin int  `json:"requests_per_minute" mapstructure:"requests_per_minute"`
	BurstSize      int  `json:"burst_size" mapstructure:"burst_size"`
}

type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// UIConfig holds the defaults the presentation surfaces use for paging.
type UIConfig struct {
	PageSize         int `json:"page_size" mapstructure:"page_size"`
	ProgressPageSize int `json:"progress_page_size" mapstructure:"progress_page_size"`
	RecentCount      int `json:"recent_count" mapstructure:"recent_count"`
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:           getEnv("HOST", "localhost"),
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			Environment:    getEnv("ENVIRONMENT", "development"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", DriverFile),
			Key:            getEnv("STORAGE_KEY", "tasks"),
			Dir:            getEnv("STORAGE_DIR", ".tasktracker"),
			OpTimeout:      getEnvAsDuration("STORAGE_OP_TIMEOUT", 3*time.Second),
			CircuitBreaker: getEnvAsBool("STORAGE_CIRCUIT_BREAKER", true),
			MaxFailures:    getEnvAsInt("STORAGE_MAX_FAILURES", 5),
			BreakerTimeout: getEnvAsDuration("STORAGE_BREAKER_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Path:            getEnv("DB_PATH", "tasktracker.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "task_tracker"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			MaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMin: getEnvAsInt("RATE_LIMIT_RPM", 600),
			BurstSize:      getEnvAsInt("RATE_LIMIT_BURST", 50),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		UI: UIConfig{
			PageSize:         getEnvAsInt("UI_PAGE_SIZE", 5),
			ProgressPageSize: getEnvAsInt("UI_PROGRESS_PAGE_SIZE", 5),
			RecentCount:      getEnvAsInt("UI_RECENT_COUNT", 2),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFile loads the environment configuration and overlays the YAML file at
// path on top of it. Keys present in the file win.
func LoadFile(path string) (*Config, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("storage key must not be empty")
	}

	if c.Storage.Driver == DriverPostgres && c.Database.Password == "" && c.IsProduction() {
		return fmt.Errorf("database password is required in production")
	}

	if c.UI.PageSize < 1 || c.UI.ProgressPageSize < 1 {
		return fmt.Errorf("page sizes must be positive")
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
