package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/taskdesk/internal/filex"
)

const (
	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"
)

// Config holds runtime settings for the taskdesk CLI.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Asset   AssetConfig   `mapstructure:"asset" validate:"-"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Journal JournalConfig `mapstructure:"journal"`
	Log     LogConfig     `mapstructure:"log"`
	Bridge  BridgeConfig  `mapstructure:"bridge"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

type AssetConfig struct {
	Provider     string        `mapstructure:"provider" validate:"oneof=cloudinary s3"`
	CloudName    string        `mapstructure:"cloud_name" validate:"required_if=Provider cloudinary"`
	UploadPreset string        `mapstructure:"upload_preset" validate:"required_if=Provider cloudinary"`
	ResourceType string        `mapstructure:"resource_type"`
	BaseURL      string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"min=0"`
	S3           S3Config      `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint      string `mapstructure:"endpoint" validate:"omitempty,url"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url" validate:"omitempty,url"`
}

type UploadConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"min=1,max=16"`
}

type JournalConfig struct {
	// Driver is "sqlite", "pgx" or empty to disable the journal.
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=sqlite pgx"`
	DSN    string `mapstructure:"dsn" validate:"required_with=Driver"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json console"`
}

type BridgeConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.API.BaseURL = "http://localhost:8800/api"
	c.API.Timeout = 30 * time.Second
	c.Asset.Provider = ProviderCloudinary
	c.Asset.ResourceType = "auto"
	c.Asset.BaseURL = "https://api.cloudinary.com"
	c.Asset.Timeout = 2 * time.Minute
	c.Upload.Concurrency = 1
	c.Journal.Driver = "sqlite"
	c.Journal.DSN = filex.DefaultDataPath("taskdesk", "journal.db")
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Bridge.Addr = "127.0.0.1:8787"
}

// defaults flattens LoadDefaults into viper keys. Every key needs a default
// so that environment variables reach Unmarshal.
func defaults() map[string]any {
	var c Config
	c.LoadDefaults()
	return map[string]any{
		"api.base_url":             c.API.BaseURL,
		"api.token":                c.API.Token,
		"api.timeout":              c.API.Timeout,
		"asset.provider":           c.Asset.Provider,
		"asset.cloud_name":         c.Asset.CloudName,
		"asset.upload_preset":      c.Asset.UploadPreset,
		"asset.resource_type":      c.Asset.ResourceType,
		"asset.base_url":           c.Asset.BaseURL,
		"asset.timeout":            c.Asset.Timeout,
		"asset.s3.endpoint":        c.Asset.S3.Endpoint,
		"asset.s3.region":          c.Asset.S3.Region,
		"asset.s3.bucket":          c.Asset.S3.Bucket,
		"asset.s3.access_key":      c.Asset.S3.AccessKey,
		"asset.s3.secret_key":      c.Asset.S3.SecretKey,
		"asset.s3.public_base_url": c.Asset.S3.PublicBaseURL,
		"upload.concurrency":       c.Upload.Concurrency,
		"journal.driver":           c.Journal.Driver,
		"journal.dsn":              c.Journal.DSN,
		"log.level":                c.Log.Level,
		"log.format":               c.Log.Format,
		"bridge.addr":              c.Bridge.Addr,
	}
}

var validate = validator.New()

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateAssets checks the settings of the selected asset provider. Only
// commands that upload files need them.
func (c *Config) ValidateAssets() error {
	if err := validate.Struct(c.Asset); err != nil {
		return fmt.Errorf("invalid asset configuration: %w", err)
	}

	if c.Asset.Provider == ProviderS3 {
		var missing []string
		if c.Asset.S3.Bucket == "" {
			missing = append(missing, "asset.s3.bucket")
		}
		if c.Asset.S3.PublicBaseURL == "" {
			missing = append(missing, "asset.s3.public_base_url")
		}
		if len(missing) > 0 {
			return fmt.Errorf("invalid asset configuration: %s required for provider s3", strings.Join(missing, ", "))
		}
	}
	return nil
}
