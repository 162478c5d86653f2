package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration

	// MetricsPrefix namespaces every Prometheus metric name.
	MetricsPrefix string
	// CORSOrigins lists extra hosts allowed by the CORS middleware.
	CORSOrigins []string

	DB        DatabaseConfig
	Redis     RedisConfig
	Import    ImportConfig
	S3        S3Config
	Auth      AuthConfig
	Bootstrap BootstrapConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ImportConfig bounds bulk product imports.
type ImportConfig struct {
	MaxRows     int
	MaxUploadMB int
	LockTTL     time.Duration
	Timeout     time.Duration
	SummaryTTL  time.Duration
}

// MaxUploadBytes returns the upload limit in bytes.
func (c ImportConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// S3Config contains the bucket used to archive uploaded spreadsheets.
// Archiving is disabled when Bucket is empty.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether uploads should be archived.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// AuthConfig bounds failed login attempts per client IP.
type AuthConfig struct {
	MaxFailedLogins   int
	FailedLoginWindow time.Duration
}

// BootstrapConfig describes the first user, created at start-up when absent.
type BootstrapConfig struct {
	CompanyID string
	Email     string
	Password  string
	Name      string
}

// Enabled reports whether a bootstrap user is configured.
func (c BootstrapConfig) Enabled() bool {
	return c.CompanyID != "" && c.Email != "" && c.Password != ""
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.MetricsPrefix = getEnv("METRICS_PREFIX", "retail")
	if raw := getEnv("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		cfg.CORSOrigins = strings.Split(raw, ",")
	}

	// Database
	cfg.DB = DatabaseConfig{
		Host:         getEnv("DB_HOST", ""),
		Port:         getEnv("DB_PORT", "5432"),
		User:         getEnv("DB_USER", ""),
		Password:     getEnv("DB_PASSWORD", ""),
		Name:         getEnv("DB_NAME", ""),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Imports
	cfg.Import = ImportConfig{
		MaxRows:     getEnvInt("IMPORT_MAX_ROWS", 5000),
		MaxUploadMB: getEnvInt("IMPORT_MAX_UPLOAD_MB", 10),
	}

	// S3 archive of uploaded files
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "eu-west-3"),
		Bucket:          getEnv("S3_BUCKET", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		Prefix:          getEnv("S3_PREFIX", "imports"),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	cfg.Auth.MaxFailedLogins = getEnvInt("AUTH_MAX_FAILED_LOGINS", 5)

	cfg.Bootstrap = BootstrapConfig{
		CompanyID: getEnv("BOOTSTRAP_COMPANY_ID", ""),
		Email:     getEnv("BOOTSTRAP_EMAIL", ""),
		Password:  getEnv("BOOTSTRAP_PASSWORD", ""),
		Name:      getEnv("BOOTSTRAP_NAME", "Administrateur"),
	}

	// Durations
	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "12h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.DB.ConnMaxLifetime, err = parseDurationEnv("DB_CONN_MAX_LIFETIME", "5m"); err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}
	if cfg.Import.LockTTL, err = parseDurationEnv("IMPORT_LOCK_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid IMPORT_LOCK_TTL: %w", err)
	}
	if cfg.Import.Timeout, err = parseDurationEnv("IMPORT_TIMEOUT", "2m"); err != nil {
		return nil, fmt.Errorf("invalid IMPORT_TIMEOUT: %w", err)
	}
	if cfg.Import.SummaryTTL, err = parseDurationEnv("IMPORT_SUMMARY_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid IMPORT_SUMMARY_TTL: %w", err)
	}
	if cfg.Auth.FailedLoginWindow, err = parseDurationEnv("AUTH_FAILED_LOGIN_WINDOW", "15m"); err != nil {
		return nil, fmt.Errorf("invalid AUTH_FAILED_LOGIN_WINDOW: %w", err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	if cfg.Import.MaxRows <= 0 {
		return nil, errors.New("IMPORT_MAX_ROWS must be a positive number")
	}
	if cfg.Import.MaxUploadMB <= 0 {
		return nil, errors.New("IMPORT_MAX_UPLOAD_MB must be a positive number")
	}
	// The lock must outlive the import it guards.
	if cfg.Import.LockTTL < cfg.Import.Timeout {
		return nil, errors.New("IMPORT_LOCK_TTL must not be shorter than IMPORT_TIMEOUT")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
