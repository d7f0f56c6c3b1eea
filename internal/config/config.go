// Package config loads the application configuration from YAML with
// environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the insert planner.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Classifier ClassifierConfig `yaml:"classifier"`
	ArtFiles   ArtFilesConfig   `yaml:"artfiles"`
	Agreement  AgreementConfig  `yaml:"agreement"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the wizard-cache settings.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// TTL returns the cache entry lifetime.
func (c RedisConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

// CatalogConfig holds the booking API settings.
type CatalogConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// ClassifierConfig holds the ML classifier settings.
type ClassifierConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// ArtFilesConfig holds the S3 art-file storage settings.
type ArtFilesConfig struct {
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	AWSProfile string `yaml:"aws_profile"`
}

// AgreementConfig holds the agreement-document settings. An empty
// template path means the built-in template.
type AgreementConfig struct {
	TemplatePath string `yaml:"template_path"`
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.ArtFiles.Region == "" {
		cfg.ArtFiles.Region = "us-east-1"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration and overrides secrets from the
// environment (and a .env file when present).
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if key := os.Getenv("CATALOG_API_KEY"); key != "" {
		cfg.Catalog.APIKey = key
	}
	if url := os.Getenv("CATALOG_BASE_URL"); url != "" {
		cfg.Catalog.BaseURL = url
	}
	if key := os.Getenv("CLASSIFIER_API_KEY"); key != "" {
		cfg.Classifier.APIKey = key
	}
	if url := os.Getenv("CLASSIFIER_BASE_URL"); url != "" {
		cfg.Classifier.BaseURL = url
	}
	if bucket := os.Getenv("ARTFILES_BUCKET"); bucket != "" {
		cfg.ArtFiles.Bucket = bucket
	}

	return cfg, nil
}
