// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
)

// EnvPrefix is the prefix of every environment variable the service reads.
const EnvPrefix = "CONDITIONING_SERVICE"

// Config holds all configuration for the service
type Config struct {
	// Server configuration
	Port        int           `mapstructure:"port"`
	MetricsPort int           `mapstructure:"metrics_port"`
	Redis       string        `mapstructure:"redis"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// OpenTelemetry configuration
	OTELEnabled  bool   `mapstructure:"otel_enabled"`
	OTELEndpoint string `mapstructure:"otel_endpoint"`

	// Feature flags
	UseMock bool `mapstructure:"use_mock"`

	// Pipeline holds the parameters applied when a request leaves a
	// field unset.
	Pipeline enhance.Parameters `mapstructure:"pipeline"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"port":      "port",
	"metrics":   "metrics_port",
	"redis":     "redis",
	"cache-ttl": "cache_ttl",
	"log-level": "log_level",
	"mock":      "use_mock",
	"device":    "pipeline.device",
	"low-vram":  "pipeline.low_vram",
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("port", 0, "gRPC server port (default: 50051)")
	fs.Int("metrics", 0, "Prometheus metrics port (default: 9100)")
	fs.String("redis", "", "Redis address for the result cache (empty disables caching)")
	fs.Duration("cache-ttl", 0, "Result cache TTL (default: 10m)")
	fs.String("log-level", "", "Log level: debug, info, warn, error")
	fs.Bool("mock", false, "Use the pass-through mock enhancer (for testing)")
	fs.String("device", "", "Default execution device: auto, cpu, cuda:N")
	fs.Bool("low-vram", false, "Default to the low-VRAM execution policy")
	fs.String("config", "", "Path to config file (optional)")
}

// setDefaults registers every key with its default so that environment
// variables are honoured by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 50051)
	v.SetDefault("metrics_port", 9100)
	v.SetDefault("redis", "")
	v.SetDefault("cache_ttl", 10*time.Minute)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("use_mock", false)

	p := enhance.DefaultParameters()
	v.SetDefault("pipeline.enhance_strength", p.EnhanceStrength)
	v.SetDefault("pipeline.detail_boost", p.DetailBoost)
	v.SetDefault("pipeline.preserve_original", p.PreserveOriginal)
	v.SetDefault("pipeline.attention_strength", p.AttentionStrength)
	v.SetDefault("pipeline.high_pass_filter", p.HighPassFilter)
	v.SetDefault("pipeline.normalize", p.Normalize)
	v.SetDefault("pipeline.add_self_attention", p.AddSelfAttention)
	v.SetDefault("pipeline.mlp_hidden_mult", p.MLPHiddenMult)
	v.SetDefault("pipeline.seed", p.Seed)
	v.SetDefault("pipeline.low_vram", p.LowVRAM)
	v.SetDefault("pipeline.device", p.Device)
	v.SetDefault("pipeline.variant", string(p.Variant))
	v.SetDefault("pipeline.seed_mode", string(p.SeedMode))
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	// Environment variable configuration
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also read OTEL standard env vars
	if err := v.BindEnv("otel_endpoint", EnvPrefix+"_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"); err != nil {
		return nil, fmt.Errorf("failed to bind otel_endpoint: %w", err)
	}
	return v, nil
}

// Load loads configuration from flags, environment variables, and optional config file.
// Priority (highest to lowest): flags > env vars > config file > defaults.
// fs may be nil; configFile may be empty to search the default locations.
func Load(configFile string, fs *pflag.FlagSet) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/conditioning-service/")
		v.AddConfigPath("$HOME/.conditioning-service")

		// Read config file if present (ignore error if not found)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.OTELEndpoint != "" {
		cfg.OTELEnabled = true
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MetricsPort <= 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.MetricsPort)
	}
	if c.Port == c.MetricsPort {
		return fmt.Errorf("port and metrics_port must be different")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("invalid cache_ttl: %s", c.CacheTTL)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline defaults: %w", err)
	}
	return nil
}
