// Package config loads and validates the proxy's immutable configuration:
// a YAML file (optional), environment variables (OLLM_ prefix), and CLI
// flags, in that order of increasing precedence. Grounded on the teacher's
// internal/config package and built with the same spf13/viper stack.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/marrowgate/ollm/internal/backend"
	"github.com/marrowgate/ollm/internal/util"
)

// Logging mirrors SPEC_FULL.md §3's ambient Config.Logging block.
type Logging struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	FileOutput bool   `mapstructure:"file_output"`
	LogDir     string `mapstructure:"log_dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Theme      string `mapstructure:"theme"`
}

// Server mirrors SPEC_FULL.md §3's ambient Config.Server block.
type Server struct {
	Listen          string `mapstructure:"listen"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_seconds"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_seconds"`
}

// Proxy holds the spec.md §3 Config fields plus the §4.13 supplemented
// feature toggle.
type Proxy struct {
	BackendURL            string  `mapstructure:"backend_url"`
	BackendMode           string  `mapstructure:"backend_mode"`
	LogEnabled            bool    `mapstructure:"log_enabled"`
	LoadTimeoutSeconds    float64 `mapstructure:"load_timeout_seconds"`
	RequestTimeoutSeconds float64 `mapstructure:"request_timeout_seconds"`
	StreamTimeoutSeconds  float64 `mapstructure:"stream_timeout_seconds"`
	ResolveModelAliases   bool    `mapstructure:"resolve_model_aliases"`
}

// Config is the single struct decoded from file + env + flags. Immutable
// once constructed — there is no runtime reload (see DESIGN.md).
type Config struct {
	Proxy   Proxy   `mapstructure:"proxy"`
	Server  Server  `mapstructure:"server"`
	Logging Logging `mapstructure:"logging"`
}

// DefaultConfig returns a Config that runs a bare ollmproxyd against a
// local LM Studio instance with zero external configuration.
func DefaultConfig() *Config {
	return &Config{
		Proxy: Proxy{
			BackendURL:            "http://localhost:1234",
			BackendMode:           string(backend.ModeOpenAI),
			LogEnabled:            true,
			LoadTimeoutSeconds:    5,
			RequestTimeoutSeconds: 120,
			StreamTimeoutSeconds:  30,
			ResolveModelAliases:   false,
		},
		Server: Server{
			Listen:          ":11434",
			ReadTimeoutSec:  30,
			WriteTimeoutSec: 0, // streaming responses can run indefinitely
			ShutdownTimeout: 10,
		},
		Logging: Logging{
			Level:      "info",
			Format:     "console",
			FileOutput: false,
			LogDir:     "./logs",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Theme:      "default",
		},
	}
}

// Load reads an optional YAML file at configPath (if non-empty) and
// overlays OLLM_-prefixed environment variables on top of DefaultConfig,
// mirroring the teacher's viper wiring (minus WatchConfig, since this
// Config is immutable after startup).
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("ollm")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/ollm")
	}

	v.SetEnvPrefix("OLLM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only reaches keys viper already knows about, so every
	// Config key is bound explicitly for the OLLM_ overlay to apply even
	// when no config file sets that key.
	for _, key := range []string{
		"proxy.backend_url", "proxy.backend_mode", "proxy.log_enabled", "proxy.load_timeout_seconds",
		"proxy.request_timeout_seconds", "proxy.stream_timeout_seconds", "proxy.resolve_model_aliases",
		"server.listen", "server.read_timeout_seconds", "server.write_timeout_seconds", "server.shutdown_timeout_seconds",
		"logging.level", "logging.format", "logging.file_output", "logging.log_dir",
		"logging.max_size_mb", "logging.max_backups", "logging.max_age_days", "logging.theme",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Proxy.BackendURL = util.NormaliseBaseURL(cfg.Proxy.BackendURL)

	return cfg, nil
}

// Validate enforces SPEC_FULL.md §8's ambient configuration properties.
func (c *Config) Validate() error {
	if c.Proxy.BackendURL == "" {
		return fmt.Errorf("backend_url must not be empty")
	}
	if c.Proxy.LoadTimeoutSeconds <= 0 {
		return fmt.Errorf("load_timeout_seconds must be positive")
	}
	if c.Proxy.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}
	if c.Proxy.StreamTimeoutSeconds <= 0 {
		return fmt.Errorf("stream_timeout_seconds must be positive")
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		return fmt.Errorf("server.listen is not a valid host:port address: %w", err)
	}
	switch c.Proxy.BackendMode {
	case string(backend.ModeOpenAI), string(backend.ModeNative):
	default:
		return fmt.Errorf("backend_mode must be %q or %q", backend.ModeOpenAI, backend.ModeNative)
	}
	return nil
}
