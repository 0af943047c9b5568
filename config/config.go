package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Ebay       EbayConfig       `mapstructure:"ebay"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port" validate:"required"`
	Environment    string   `mapstructure:"environment" validate:"required"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

// EbayConfig holds eBay API configuration
type EbayConfig struct {
	ClientID      string        `mapstructure:"client_id" validate:"required"`
	ClientSecret  string        `mapstructure:"client_secret" validate:"required"`
	OAuthURL      string        `mapstructure:"oauth_url" validate:"required,url"`
	SearchURL     string        `mapstructure:"search_url" validate:"required,url"`
	Scope         string        `mapstructure:"scope" validate:"required"`
	MarketplaceID string        `mapstructure:"marketplace_id"`
	ResultLimit   int           `mapstructure:"result_limit" validate:"gte=1,lte=200"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" validate:"gte=0"`
}

// OCRConfig holds OCR engine configuration
type OCRConfig struct {
	Language  string `mapstructure:"language" validate:"required"`
	MinHeight int    `mapstructure:"min_height" validate:"gte=0"`
}

// ExtractionConfig holds the card text heuristics
type ExtractionConfig struct {
	Denylist         []string `mapstructure:"denylist"`
	SetNumberPattern string   `mapstructure:"set_number_pattern" validate:"required"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type" validate:"oneof=memory redis"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url" validate:"required_if=Type redis"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip" validate:"gte=0"` // requests per minute, 0 disables
	Ebay  int `mapstructure:"ebay" validate:"gte=0"`   // requests per hour, 0 disables
}

// Load loads configuration from environment variables and config files.
// When configFile is empty, config.yaml is searched in the default paths.
func Load(configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/cardscan/")
	}

	// Environment variable settings: CARDSCAN_EBAY_CLIENT_ID -> ebay.client_id
	v.SetEnvPrefix("CARDSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
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

// loadEnvFile loads ./.env into the environment if present.
// Variables that are already set are not overridden.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values. Every key needs a default
// so that it can be overridden from the environment.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5001")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("server.max_upload_bytes", 5<<20)

	// eBay defaults (sandbox)
	v.SetDefault("ebay.client_id", "")
	v.SetDefault("ebay.client_secret", "")
	v.SetDefault("ebay.oauth_url", "https://api.sandbox.ebay.com/identity/v1/oauth2/token")
	v.SetDefault("ebay.search_url", "https://api.sandbox.ebay.com/buy/browse/v1/item_summary/search")
	v.SetDefault("ebay.scope", "https://api.ebay.com/oauth/api_scope")
	v.SetDefault("ebay.marketplace_id", "EBAY_US")
	v.SetDefault("ebay.result_limit", 5)
	v.SetDefault("ebay.token_ttl", "110m") // tokens are issued for 2h

	// OCR defaults
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.min_height", 1200)

	// Extraction defaults
	v.SetDefault("extraction.denylist", []string{
		"hp", "trainer", "basic", "item", "stage",
		"basc", "utem", "iten", "splash", "typhoon", "basis", "basig",
		"ability", "attack", "damage", "weakness", "resistance", "cd",
	})
	v.SetDefault("extraction.set_number_pattern", `\d{1,3}/\d{1,5}`)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.ebay", 5000)
}

// validate validates the configuration
func validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return describe(validationErrs[0])
		}
		return err
	}

	if _, err := regexp.Compile(config.Extraction.SetNumberPattern); err != nil {
		return fmt.Errorf("extraction.set_number_pattern is not a valid regular expression: %w", err)
	}

	return nil
}

// describe turns a validation failure into a message naming the env var to set
func describe(fe validator.FieldError) error {
	switch fe.StructNamespace() {
	case "Config.Ebay.ClientID":
		return fmt.Errorf("eBay client id is required (set CARDSCAN_EBAY_CLIENT_ID)")
	case "Config.Ebay.ClientSecret":
		return fmt.Errorf("eBay client secret is required (set CARDSCAN_EBAY_CLIENT_SECRET)")
	case "Config.Cache.Type":
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %v", fe.Value())
	case "Config.Cache.RedisURL":
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	default:
		return fmt.Errorf("%s failed on '%s' (value: %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
}
