package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	JWT        JWTConfig
	Auth       AuthConfig
	S3         S3Config
	Log        LogConfig
	Model      ModelConfig
	Raster     RasterConfig
	Extraction ExtractionConfig
	Session    SessionConfig
	Export     ExportConfig
	CORS       CORSConfig
	Email      EmailConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ModelConfig selects and configures the vision model provider.
type ModelConfig struct {
	Provider          string `mapstructure:"provider"`
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	BaseURL           string `mapstructure:"base_url"`
	MaxTokens         int    `mapstructure:"max_tokens"`
	TimeoutSecs       int    `mapstructure:"timeout_secs"` // HTTP transport timeout; 0 = none
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// RasterConfig holds page rendering settings.
type RasterConfig struct {
	Pdftoppm    string `mapstructure:"pdftoppm"`
	DPI         int    `mapstructure:"dpi"`
	MaxPages    int    `mapstructure:"max_pages"`
	MaxPixelDim int    `mapstructure:"max_pixel_dim"`
	TempDir     string `mapstructure:"temp_dir"`
}

// ExtractionConfig holds upload limits and the prompt override.
type ExtractionConfig struct {
	PromptFile    string `mapstructure:"prompt_file"`
	MaxFiles      int    `mapstructure:"max_files"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// SessionConfig controls how long an idle session batch is kept.
type SessionConfig struct {
	BatchTTL        time.Duration `mapstructure:"batch_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// ExportConfig holds spreadsheet rendering settings.
type ExportConfig struct {
	SheetName      string `mapstructure:"sheet_name"`
	MaxColumnWidth int    `mapstructure:"max_column_width"`
	PresignExpiry  int64  `mapstructure:"presign_expiry"`
	KeyPrefix      string `mapstructure:"key_prefix"`
}

// AuthConfig selects the user store and the optional seed account.
type AuthConfig struct {
	Store        string `mapstructure:"store"` // memory | postgres
	SeedUsername string `mapstructure:"seed_username"`
	SeedEmail    string `mapstructure:"seed_email"`
	SeedPassword string `mapstructure:"seed_password"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings. Storage features are off when Bucket is empty.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Enabled reports whether a bucket is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the OGARX_
// prefix. A .env file in the working directory is loaded first if present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromViper(NewViper()), nil
}

// NewViper returns a viper instance with defaults and env bindings applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("OGARX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "ogarx")
	v.SetDefault("db.password", "ogarx_secret")
	v.SetDefault("db.name", "ogarx_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "8h")
	v.SetDefault("jwt.issuer", "ogarx")

	// Auth defaults
	v.SetDefault("auth.store", "memory")
	v.SetDefault("auth.seed_username", "")
	v.SetDefault("auth.seed_email", "")
	v.SetDefault("auth.seed_password", "")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:8501")

	// Model defaults
	v.SetDefault("model.provider", "claude")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.model", "")
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.max_tokens", 0)
	v.SetDefault("model.timeout_secs", 120)
	v.SetDefault("model.requests_per_minute", 0)

	// Raster defaults
	v.SetDefault("raster.pdftoppm", "pdftoppm")
	v.SetDefault("raster.dpi", 200)
	v.SetDefault("raster.max_pages", 0)
	v.SetDefault("raster.max_pixel_dim", 0)
	v.SetDefault("raster.temp_dir", "")

	// Extraction defaults
	v.SetDefault("extraction.prompt_file", "")
	v.SetDefault("extraction.max_files", 20)
	v.SetDefault("extraction.max_file_size_mb", 25)

	// Session defaults
	v.SetDefault("session.batch_ttl", "2h")
	v.SetDefault("session.cleanup_interval", "10m")

	// Export defaults
	v.SetDefault("export.sheet_name", "Données OGAR")
	v.SetDefault("export.max_column_width", 50)
	v.SetDefault("export.presign_expiry", 86400)
	v.SetDefault("export.key_prefix", "exports")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-west-1")
	v.SetDefault("email.from_address", "noreply@ogar.local")
	v.SetDefault("email.from_name", "OGAR Extraction")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "OGARX_SERVER_PORT",
		"server.read_timeout":         "OGARX_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "OGARX_SERVER_WRITE_TIMEOUT",
		"server.environment":          "OGARX_SERVER_ENVIRONMENT",
		"db.host":                     "OGARX_DB_HOST",
		"db.port":                     "OGARX_DB_PORT",
		"db.user":                     "OGARX_DB_USER",
		"db.password":                 "OGARX_DB_PASSWORD",
		"db.name":                     "OGARX_DB_NAME",
		"db.sslmode":                  "OGARX_DB_SSLMODE",
		"db.max_open":                 "OGARX_DB_MAX_OPEN",
		"db.max_idle":                 "OGARX_DB_MAX_IDLE",
		"jwt.secret":                  "OGARX_JWT_SECRET",
		"jwt.access_expiry":           "OGARX_JWT_ACCESS_EXPIRY",
		"jwt.issuer":                  "OGARX_JWT_ISSUER",
		"auth.store":                  "OGARX_AUTH_STORE",
		"auth.seed_username":          "OGARX_AUTH_SEED_USERNAME",
		"auth.seed_email":             "OGARX_AUTH_SEED_EMAIL",
		"auth.seed_password":          "OGARX_AUTH_SEED_PASSWORD",
		"s3.region":                   "OGARX_S3_REGION",
		"s3.bucket":                   "OGARX_S3_BUCKET",
		"s3.endpoint":                 "OGARX_S3_ENDPOINT",
		"s3.access_key":               "OGARX_S3_ACCESS_KEY",
		"s3.secret_key":               "OGARX_S3_SECRET_KEY",
		"log.level":                   "OGARX_LOG_LEVEL",
		"log.format":                  "OGARX_LOG_FORMAT",
		"cors.allowed_origins":        "OGARX_CORS_ALLOWED_ORIGINS",
		"model.provider":              "OGARX_MODEL_PROVIDER",
		"model.api_key":               "OGARX_MODEL_API_KEY",
		"model.model":                 "OGARX_MODEL_MODEL",
		"model.base_url":              "OGARX_MODEL_BASE_URL",
		"model.max_tokens":            "OGARX_MODEL_MAX_TOKENS",
		"model.timeout_secs":          "OGARX_MODEL_TIMEOUT_SECS",
		"model.requests_per_minute":   "OGARX_MODEL_REQUESTS_PER_MINUTE",
		"raster.pdftoppm":             "OGARX_RASTER_PDFTOPPM",
		"raster.dpi":                  "OGARX_RASTER_DPI",
		"raster.max_pages":            "OGARX_RASTER_MAX_PAGES",
		"raster.max_pixel_dim":        "OGARX_RASTER_MAX_PIXEL_DIM",
		"raster.temp_dir":             "OGARX_RASTER_TEMP_DIR",
		"extraction.prompt_file":      "OGARX_EXTRACTION_PROMPT_FILE",
		"extraction.max_files":        "OGARX_EXTRACTION_MAX_FILES",
		"extraction.max_file_size_mb": "OGARX_EXTRACTION_MAX_FILE_SIZE_MB",
		"session.batch_ttl":           "OGARX_SESSION_BATCH_TTL",
		"session.cleanup_interval":    "OGARX_SESSION_CLEANUP_INTERVAL",
		"export.sheet_name":           "OGARX_EXPORT_SHEET_NAME",
		"export.max_column_width":     "OGARX_EXPORT_MAX_COLUMN_WIDTH",
		"export.presign_expiry":       "OGARX_EXPORT_PRESIGN_EXPIRY",
		"export.key_prefix":           "OGARX_EXPORT_KEY_PREFIX",
		"email.provider":              "OGARX_EMAIL_PROVIDER",
		"email.region":                "OGARX_EMAIL_REGION",
		"email.from_address":          "OGARX_EMAIL_FROM_ADDRESS",
		"email.from_name":             "OGARX_EMAIL_FROM_NAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// FromViper assembles a Config from an initialized viper instance.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if OGARX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("OGARX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.Auth = AuthConfig{
		Store:        v.GetString("auth.store"),
		SeedUsername: v.GetString("auth.seed_username"),
		SeedEmail:    v.GetString("auth.seed_email"),
		SeedPassword: v.GetString("auth.seed_password"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	// OGAR_API_KEY is the variable name older .env files use.
	apiKey := v.GetString("model.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OGAR_API_KEY")
	}
	cfg.Model = ModelConfig{
		Provider:          v.GetString("model.provider"),
		APIKey:            apiKey,
		Model:             v.GetString("model.model"),
		BaseURL:           v.GetString("model.base_url"),
		MaxTokens:         v.GetInt("model.max_tokens"),
		TimeoutSecs:       v.GetInt("model.timeout_secs"),
		RequestsPerMinute: v.GetInt("model.requests_per_minute"),
	}

	cfg.Raster = RasterConfig{
		Pdftoppm:    v.GetString("raster.pdftoppm"),
		DPI:         v.GetInt("raster.dpi"),
		MaxPages:    v.GetInt("raster.max_pages"),
		MaxPixelDim: v.GetInt("raster.max_pixel_dim"),
		TempDir:     v.GetString("raster.temp_dir"),
	}

	cfg.Extraction = ExtractionConfig{
		PromptFile:    v.GetString("extraction.prompt_file"),
		MaxFiles:      v.GetInt("extraction.max_files"),
		MaxFileSizeMB: v.GetInt64("extraction.max_file_size_mb"),
	}

	cfg.Session = SessionConfig{
		BatchTTL:        v.GetDuration("session.batch_ttl"),
		CleanupInterval: v.GetDuration("session.cleanup_interval"),
	}

	cfg.Export = ExportConfig{
		SheetName:      v.GetString("export.sheet_name"),
		MaxColumnWidth: v.GetInt("export.max_column_width"),
		PresignExpiry:  v.GetInt64("export.presign_expiry"),
		KeyPrefix:      v.GetString("export.key_prefix"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}

	return cfg
}
