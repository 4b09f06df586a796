// Package config loads the application configuration from command-line
// flags, environment variables and an optional .env file, and validates
// the result.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
// Environment variables take precedence over flags, flags over defaults.
type Config struct {
	RunAddr                    string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	PublicBaseURL              string        `env:"BASE_URL" validate:"url"`
	LogLevel                   string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName                 string        `env:"FILE_STORAGE_PATH" validate:"omitempty,filepath"`
	DatabaseDSN                string        `env:"DATABASE_DSN"`
	DBConnectionTimeout        time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir              string        `env:"MIGRATIONS_DIR"`
	MediaDir                   string        `env:"MEDIA_STORAGE_PATH"`
	MediaBucket                string        `env:"MEDIA_BUCKET"`
	AuthCookieName             string        `env:"AUTH_COOKIE_NAME"`
	AuthCookieSigningSecretKey string        `env:"AUTH_COOKIE_SIGNING_SECRET_KEY" validate:"base64url"`
	SaveDebounceDelay          time.Duration `env:"SAVE_DEBOUNCE_DELAY" validate:"min=1000000"`
	NoticeTTL                  time.Duration `env:"NOTICE_TTL" validate:"min=1000000"`
	MaxUploadSize              int64         `env:"MAX_UPLOAD_SIZE" validate:"min=1"`
	TrustedSubnet              string        `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	RequireEmailConfirmation   bool          `env:"REQUIRE_EMAIL_CONFIRMATION"`
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (cfg *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(cfg)
}

// InitOption customizes config loading.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing; tests use
// it because the testing package owns the flag set.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New loads, overlays and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	cfg := &Config{
		RunAddr:                    ":8080",
		PublicBaseURL:              "http://localhost:8080",
		LogLevel:                   "info",
		DBFileName:                 "",
		DatabaseDSN:                "",
		DBConnectionTimeout:        10 * time.Second,
		MigrationsDir:              "cmd/biolink/migrations",
		MediaDir:                   "media",
		MediaBucket:                "avatars",
		AuthCookieName:             "biolink_session",
		AuthCookieSigningSecretKey: "c3VwZXJzZWNyZXRrZXk=",
		SaveDebounceDelay:          time.Second,
		NoticeTTL:                  3 * time.Second,
		MaxUploadSize:              2 * 1024 * 1024,
		TrustedSubnet:              "",
		RequireEmailConfirmation:   false,
	}
	if !options.disableFlagsParsing {
		flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run server")
		flag.StringVar(&cfg.PublicBaseURL, "b", cfg.PublicBaseURL, "base address of the served public pages")
		flag.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "logger level")
		flag.StringVar(&cfg.DBFileName, "f", cfg.DBFileName, "JSON file name with database")
		flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "a string with the database connection details")
		flag.StringVar(&cfg.MediaDir, "m", cfg.MediaDir, "directory for the uploaded media files")
		flag.StringVar(&cfg.TrustedSubnet, "t", cfg.TrustedSubnet, "CIDR of the subnet trusted to read internal stats")
		flag.Parse()
	}

	valuesFromEnv := Config{}
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		cfg.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.PublicBaseURL != "" {
		cfg.PublicBaseURL = valuesFromEnv.PublicBaseURL
	}

	if valuesFromEnv.LogLevel != "" {
		cfg.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DBFileName != "" {
		cfg.DBFileName = valuesFromEnv.DBFileName
	}

	if valuesFromEnv.DatabaseDSN != "" {
		cfg.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		cfg.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.MigrationsDir != "" {
		cfg.MigrationsDir = valuesFromEnv.MigrationsDir
	}

	if valuesFromEnv.MediaDir != "" {
		cfg.MediaDir = valuesFromEnv.MediaDir
	}

	if valuesFromEnv.MediaBucket != "" {
		cfg.MediaBucket = valuesFromEnv.MediaBucket
	}

	if valuesFromEnv.AuthCookieName != "" {
		cfg.AuthCookieName = valuesFromEnv.AuthCookieName
	}

	if valuesFromEnv.AuthCookieSigningSecretKey != "" {
		cfg.AuthCookieSigningSecretKey = valuesFromEnv.AuthCookieSigningSecretKey
	}

	if valuesFromEnv.SaveDebounceDelay != 0 {
		cfg.SaveDebounceDelay = valuesFromEnv.SaveDebounceDelay
	}

	if valuesFromEnv.NoticeTTL != 0 {
		cfg.NoticeTTL = valuesFromEnv.NoticeTTL
	}

	if valuesFromEnv.MaxUploadSize != 0 {
		cfg.MaxUploadSize = valuesFromEnv.MaxUploadSize
	}

	if valuesFromEnv.TrustedSubnet != "" {
		cfg.TrustedSubnet = valuesFromEnv.TrustedSubnet
	}

	if valuesFromEnv.RequireEmailConfirmation {
		cfg.RequireEmailConfirmation = true
	}

	return cfg, cfg.validate()
}
