package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/grocerlist/usdaimport/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envFiles are loaded in order before the environment is read. Values already
// present in the process environment are never overridden.
var envFiles = []string{".env.local", ".env"}

// Config holds all configuration for the application
type Config struct {
	USDA   USDAConfig
	Paths  PathsConfig
	Mirror MirrorConfig
	Server ServerConfig
	Search SearchConfig
	Log    LogConfig
}

// USDAConfig holds USDA FoodData Central API configuration
type USDAConfig struct {
	APIKey                 string        `mapstructure:"api_key"`
	BaseURL                string        `mapstructure:"base_url"`
	PageSize               int           `mapstructure:"page_size"`
	DataTypes              []string      `mapstructure:"data_types"`
	PageDelay              time.Duration `mapstructure:"page_delay"`
	Timeout                time.Duration `mapstructure:"timeout"`
	MaxPages               int           `mapstructure:"max_pages"`
	MaxConsecutiveFailures int           `mapstructure:"max_consecutive_failures"`
}

// PathsConfig holds the input and output file locations
type PathsConfig struct {
	Output      string `mapstructure:"output"`
	Schema      string `mapstructure:"schema"` // empty uses the embedded schema
	CategoryMap string `mapstructure:"category_map"`
	SeasonMap   string `mapstructure:"season_map"`
}

// MirrorConfig holds the optional SQL mirror configuration
type MirrorConfig struct {
	Driver string `mapstructure:"driver"` // "", "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchConfig holds catalogue search configuration
type SearchConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from .env files, environment variables and an
// optional config file
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/grocerlist/")

	v.SetEnvPrefix("GROCERLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// FDC_API_KEY is the variable name used by existing deployments
	if err := v.BindEnv("usda.api_key", "GROCERLIST_USDA_API_KEY", "FDC_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadImporter loads configuration and additionally requires the USDA
// credential. It fails before any network I/O can happen.
func LoadImporter() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.USDA.RequireCredential(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// RequireCredential returns an error when the API key is not set
func (c USDAConfig) RequireCredential() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w (set FDC_API_KEY or GROCERLIST_USDA_API_KEY)", domain.ErrMissingCredential)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// USDA defaults
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("usda.page_size", 200)
	v.SetDefault("usda.data_types", []string{"Foundation", "SR Legacy", "Branded"})
	v.SetDefault("usda.page_delay", "500ms")
	v.SetDefault("usda.timeout", "30s")
	v.SetDefault("usda.max_pages", 0)
	v.SetDefault("usda.max_consecutive_failures", 3)

	// Path defaults
	v.SetDefault("paths.output", "public/data/grocery_usda.json")
	v.SetDefault("paths.schema", "")
	v.SetDefault("paths.category_map", "data/category-map.json")
	v.SetDefault("paths.season_map", "data/season-map.json")

	// Mirror is off unless a driver is given
	v.SetDefault("mirror.driver", "")
	v.SetDefault("mirror.dsn", "")

	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("search.cache_ttl", "1m")
	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.USDA.PageSize < 1 || config.USDA.PageSize > 200 {
		return fmt.Errorf("USDA page size must be between 1 and 200, got: %d", config.USDA.PageSize)
	}

	if config.USDA.PageDelay < 0 {
		return fmt.Errorf("USDA page delay must not be negative, got: %s", config.USDA.PageDelay)
	}

	if config.USDA.MaxConsecutiveFailures < 1 {
		return fmt.Errorf("max consecutive failures must be at least 1, got: %d", config.USDA.MaxConsecutiveFailures)
	}

	if config.Paths.Output == "" {
		return errors.New("output path is required")
	}

	switch config.Mirror.Driver {
	case "":
	case "sqlite", "postgres":
		if config.Mirror.DSN == "" {
			return fmt.Errorf("mirror DSN is required when mirror driver is '%s'", config.Mirror.Driver)
		}
	default:
		return fmt.Errorf("mirror driver must be 'sqlite' or 'postgres', got: %s", config.Mirror.Driver)
	}

	return nil
}

// loadEnvFile loads variables from .env.local and .env if they exist
func loadEnvFile() error {
	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading %s: %w", name, err)
		}
	}
	return nil
}
