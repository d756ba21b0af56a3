// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Browser   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	Portal    PortalConfig    `mapstructure:"portal" yaml:"portal"`
	Network   NetworkConfig   `mapstructure:"network" yaml:"network"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless browser instances.
type BrowserConfig struct {
	Headless     bool     `mapstructure:"headless" yaml:"headless"`
	Args         []string `mapstructure:"args" yaml:"args"`
	UserAgent    string   `mapstructure:"user_agent" yaml:"user_agent"`
	WindowWidth  int      `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int      `mapstructure:"window_height" yaml:"window_height"`
	// PageOpenRate limits how many page scopes per second may be opened
	// against the portal. Zero disables the limiter.
	PageOpenRate float64 `mapstructure:"page_open_rate" yaml:"page_open_rate"`
}

// PortalConfig identifies the portal and the artifacts of its login flow.
type PortalConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// LoginURL is the login entry point; defaults to BaseURL, which redirects
	// to the identity provider when unauthenticated.
	LoginURL string `mapstructure:"login_url" yaml:"login_url"`
	// AuthenticatedPattern is the regular expression a landed URL must match
	// for the login handshake to count as successful.
	AuthenticatedPattern string `mapstructure:"authenticated_pattern" yaml:"authenticated_pattern"`
	// StateFile is where the serialized session state lives. Supports "~".
	StateFile string `mapstructure:"state_file" yaml:"state_file"`
}

// NetworkConfig tunes timeouts around the portal's I/O-bound steps.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	FieldWaitTimeout  time.Duration `mapstructure:"field_wait_timeout" yaml:"field_wait_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
}

// CacheConfig configures the analysis result cache.
type CacheConfig struct {
	// File is where the cache snapshot is persisted between invocations.
	// Supports "~". Empty disables persistence.
	File string `mapstructure:"file" yaml:"file"`
}

// GeneratorConfig configures the requirements-document generator.
type GeneratorConfig struct {
	Model string `mapstructure:"model" yaml:"model"`
	// APIKey is bound to the GOOGLE_AI_API_KEY environment variable and is
	// never written back to a config file.
	APIKey string `mapstructure:"api_key" yaml:"-"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "manabo-cli")
	v.SetDefault("logger.log_file", "manabo-cli.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.page_open_rate", 2.0)

	// -- Portal --
	v.SetDefault("portal.base_url", "https://manabo.cnc.chukyo-u.ac.jp")
	v.SetDefault("portal.login_url", "https://manabo.cnc.chukyo-u.ac.jp")
	v.SetDefault("portal.authenticated_pattern", `manabo\.cnc`)
	v.SetDefault("portal.state_file", "state.json")

	// -- Network --
	v.SetDefault("network.navigation_timeout", "30s")
	v.SetDefault("network.field_wait_timeout", "30s")
	v.SetDefault("network.post_load_wait", "2s")

	// -- Cache --
	v.SetDefault("cache.file", "analysis-cache.json")

	// -- Generator --
	v.SetDefault("generator.model", "gemini-2.5-flash")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("generator.api_key", "GOOGLE_AI_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// StateFilePath returns the session-state path with "~" expanded.
func (c *Config) StateFilePath() (string, error) {
	path, err := homedir.Expand(c.Portal.StateFile)
	if err != nil {
		return "", fmt.Errorf("failed to expand state file path %q: %w", c.Portal.StateFile, err)
	}
	return path, nil
}

// CacheFilePath returns the cache snapshot path with "~" expanded. Empty in,
// empty out.
func (c *Config) CacheFilePath() (string, error) {
	if c.Cache.File == "" {
		return "", nil
	}
	path, err := homedir.Expand(c.Cache.File)
	if err != nil {
		return "", fmt.Errorf("failed to expand cache file path %q: %w", c.Cache.File, err)
	}
	return path, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Portal.BaseURL == "" {
		return fmt.Errorf("portal.base_url is a required configuration field")
	}
	if c.Portal.AuthenticatedPattern == "" {
		return fmt.Errorf("portal.authenticated_pattern is a required configuration field")
	}
	if c.Portal.StateFile == "" {
		return fmt.Errorf("portal.state_file is a required configuration field")
	}
	if c.Network.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be a positive duration")
	}
	if c.Network.FieldWaitTimeout <= 0 {
		return fmt.Errorf("network.field_wait_timeout must be a positive duration")
	}
	if c.Browser.PageOpenRate < 0 {
		return fmt.Errorf("browser.page_open_rate must not be negative")
	}
	return nil
}
