// Package config loads shapetran settings from defaults, an optional
// shapetran.yaml, SHAPETRAN_* environment variables and command flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/shapetran/internal/cache"
	"github.com/valpere/shapetran/internal/translator"
)

const (
	EnvPrefix = "SHAPETRAN"
	FileName  = "shapetran"

	DefaultBackend        = "ollama"
	DefaultMaxInputLength = 5000
	DefaultDBPath         = "./data/shapetran.db"
)

type Config struct {
	Backend        string        `mapstructure:"backend"`
	MaxInputLength int           `mapstructure:"max_input_length"`
	Timeout        time.Duration `mapstructure:"timeout"`
	DBPath         string        `mapstructure:"db"`
	NoCache        bool          `mapstructure:"no_cache"`
	Verbose        bool          `mapstructure:"verbose"`

	Ollama translator.ServiceConfig `mapstructure:"ollama"`
	OpenAI translator.ServiceConfig `mapstructure:"openai"`
	Google translator.ServiceConfig `mapstructure:"google"`
	Redis  cache.RedisConfig        `mapstructure:"redis"`
}

// New returns a viper instance with defaults and environment binding set
// up. When configFile is empty, shapetran.yaml is searched for in the
// working directory and $HOME/.config/shapetran; a missing file is not an
// error.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("max_input_length", DefaultMaxInputLength)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("db", DefaultDBPath)
	v.SetDefault("no_cache", false)
	v.SetDefault("verbose", false)

	v.SetDefault("ollama.base_url", translator.DefaultOllamaURL)
	v.SetDefault("ollama.model", translator.DefaultOllamaModel)
	v.SetDefault("openai.model", translator.DefaultOpenAIModel)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("google.credentials", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", 0)
	v.SetDefault("redis.key_prefix", cache.DefaultKeyPrefix)
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxInputLength < 0 {
		return fmt.Errorf("max_input_length must not be negative, got %d", c.MaxInputLength)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	for _, name := range translator.Backends {
		if c.Backend == name {
			return nil
		}
	}
	return fmt.Errorf("unknown backend %q (available: %v)", c.Backend, translator.Backends)
}

// Service returns the settings of the named backend.
func (c *Config) Service(name string) translator.ServiceConfig {
	switch name {
	case "ollama":
		return c.Ollama
	case "openai":
		return c.OpenAI
	case "google":
		return c.Google
	default:
		return translator.ServiceConfig{}
	}
}
