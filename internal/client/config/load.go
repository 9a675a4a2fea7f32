package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "TASKDESK"

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"api-url":     "api.base_url",
	"token":       "api.token",
	"timeout":     "api.timeout",
	"provider":    "asset.provider",
	"concurrency": "upload.concurrency",
	"journal":     "journal.dsn",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"addr":        "bridge.addr",
}

// Options selects the optional sources of LoadConfig.
type Options struct {
	// ConfigFile is a JSON or YAML file; empty means none.
	ConfigFile string
	// EnvFile is a dotenv file; a missing file is ignored.
	EnvFile string
	// Flags are bound on top of every other source. Only changed flags win.
	Flags *pflag.FlagSet
}

// LoadConfig builds a Config from defaults, the dotenv file, the config
// file, TASKDESK_* environment variables and flags, later sources taking
// precedence.
func LoadConfig(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		// Variables already present in the environment are kept.
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
