// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath = pflag.StringP("config", "c", ".", "Directory holding config.toml")
	genSecret  = pflag.Bool("gen-secret", false, "Prints a random JWT secret and exits")

	validLogLevels      = []string{"debug", "info", "warn", "error", "fatal"}
	validModes          = []string{"development", "production"}
	validStorageDrivers = []string{"sqlite", "postgres", "mongo"}
	validMailProviders  = []string{"smtp", "postmark", "log"}
)

func randomSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that. A missing config.toml is fine, everything can come from
// the environment.
func Setup() error {
	pflag.Parse()

	if *genSecret {
		fmt.Println(randomSecret())
		os.Exit(0)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	return Validate()
}

// setDefaults binds the environment and registers default values. Every key
// can be set as an environment variable, e.g. JWT_SECRET for jwt.secret.
func setDefaults() {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")
	v.BindEnv("app.mode", "APP_MODE")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.cors", "HOST_CORS")

	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.access_ttl", "JWT_ACCESS_TTL")

	v.BindEnv("reset.ttl", "RESET_TTL")
	v.BindEnv("reset.sweep_interval", "RESET_SWEEP_INTERVAL")

	v.BindEnv("frontend.base_url", "FRONTEND_BASE_URL")

	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.sqlite_path", "STORAGE_SQLITE_PATH")
	v.BindEnv("storage.postgres_dsn", "STORAGE_POSTGRES_DSN")
	v.BindEnv("storage.mongo_uri", "STORAGE_MONGO_URI")
	v.BindEnv("storage.mongo_database", "STORAGE_MONGO_DATABASE")

	v.BindEnv("cache.ttl", "CACHE_TTL")
	v.BindEnv("cache.redis_addr", "CACHE_REDIS_ADDR")

	v.BindEnv("mail.provider", "MAIL_PROVIDER")
	v.BindEnv("mail.sender", "MAIL_SENDER")
	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.username", "MAIL_USERNAME")
	v.BindEnv("mail.password", "MAIL_PASSWORD")
	v.BindEnv("mail.postmark_server_token", "MAIL_POSTMARK_SERVER_TOKEN")
	v.BindEnv("mail.postmark_account_token", "MAIL_POSTMARK_ACCOUNT_TOKEN")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")
	v.BindEnv("security.password_policy", "SECURITY_PASSWORD_POLICY")

	v.BindEnv("lists.default_title", "LISTS_DEFAULT_TITLE")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.mode", "development")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", []string{"http://localhost:5173"})

	v.SetDefault("jwt.access_ttl", time.Hour)

	v.SetDefault("reset.ttl", time.Hour)
	v.SetDefault("reset.sweep_interval", 24*time.Hour)

	v.SetDefault("frontend.base_url", "http://localhost:5173")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "database.db")
	v.SetDefault("storage.mongo_database", "lumo")

	v.SetDefault("cache.ttl", 30*time.Second)

	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.port", 587)

	v.SetDefault("security.rate_limit", 10)
	v.SetDefault("security.password_policy", false)

	v.SetDefault("lists.default_title", "General Tasks")
}

// Validate checks the loaded values.
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if !slices.Contains(validModes, v.GetString("app.mode")) {
		return errors.New("invalid app mode provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("jwt.secret") == "" {
		return errors.New("no JWT secret provided, run with --gen-secret to create one")
	}

	if v.GetDuration("jwt.access_ttl") <= 0 {
		return errors.New("jwt.access_ttl must be bigger than 0")
	}

	if v.GetDuration("reset.ttl") <= 0 {
		return errors.New("reset.ttl must be bigger than 0")
	}

	if v.GetDuration("reset.sweep_interval") <= 0 {
		return errors.New("reset.sweep_interval must be bigger than 0")
	}

	u, err := url.Parse(v.GetString("frontend.base_url"))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.New("frontend.base_url must be an absolute URL")
	}

	switch v.GetString("storage.driver") {
	case "sqlite":
		if v.GetString("storage.sqlite_path") == "" {
			return errors.New("sqlite path can't be empty")
		}
	case "postgres":
		if v.GetString("storage.postgres_dsn") == "" {
			return errors.New("postgres dsn can't be empty")
		}
	case "mongo":
		if v.GetString("storage.mongo_uri") == "" {
			return errors.New("mongo uri can't be empty")
		}
		if v.GetString("storage.mongo_database") == "" {
			return errors.New("mongo database can't be empty")
		}
	default:
		return fmt.Errorf("invalid storage driver provided, expected one of %v", validStorageDrivers)
	}

	if v.GetDuration("cache.ttl") < 0 {
		return errors.New("cache.ttl can't be negative")
	}

	provider := v.GetString("mail.provider")
	if !slices.Contains(validMailProviders, provider) {
		return fmt.Errorf("invalid mail provider provided, expected one of %v", validMailProviders)
	}

	if provider != "log" && v.GetString("mail.sender") == "" {
		return errors.New("mail sender can't be empty")
	}

	switch provider {
	case "smtp":
		if v.GetString("mail.host") == "" {
			return errors.New("smtp host can't be empty")
		}
		if v.GetInt("mail.port") <= 0 {
			return errors.New("invalid smtp port provided")
		}
	case "postmark":
		if v.GetString("mail.postmark_server_token") == "" {
			return errors.New("postmark server token can't be empty")
		}
	}

	if v.GetInt("security.rate_limit") < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	return nil
}
