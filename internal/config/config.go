package config

import (
	"errors"
	"fmt"
	"os"

	"neighborly/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Storage    StorageConfig    `yaml:"storage"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Booking    BookingConfig    `yaml:"booking"`
	Categories []string         `yaml:"categories"`
	Listings   []models.Listing `yaml:"listings"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type IngestConfig struct {
	MaxImageBytes int64  `yaml:"max_image_bytes"`
	UploadFolder  string `yaml:"upload_folder"`
}

type BookingConfig struct {
	ConfirmTimeoutSeconds int `yaml:"confirm_timeout_seconds"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; values referenced from YAML via ${VAR}
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Storage.Endpoint != "" {
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return errors.New("storage access_key and secret_key are required")
		}
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required")
		}
	}

	return ValidateListings(c.Listings)
}

// ValidateListings rejects seed sets with missing or duplicate IDs.
func ValidateListings(listings []models.Listing) error {
	seen := make(map[string]bool)
	for _, listing := range listings {
		if listing.ID == "" {
			return fmt.Errorf("listing '%s' has empty ID", listing.Title)
		}
		if seen[listing.ID] {
			return fmt.Errorf("duplicate listing ID found: %s", listing.ID)
		}
		seen[listing.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}

	if c.Ingest.MaxImageBytes == 0 {
		c.Ingest.MaxImageBytes = 10 << 20
	}
	if c.Ingest.UploadFolder == "" {
		c.Ingest.UploadFolder = "communityPost"
	}
	if c.Booking.ConfirmTimeoutSeconds == 0 {
		c.Booking.ConfirmTimeoutSeconds = 120
	}
	if len(c.Categories) == 0 {
		c.Categories = []string{"Power Tools", "Lawn & Garden", "Ladders", "Cleaning", "Other"}
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
