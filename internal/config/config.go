// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Site    SiteConfig    `mapstructure:"site" yaml:"site"`
	Deploy  DeployConfig  `mapstructure:"deploy" yaml:"deploy"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig selects and tunes the browser session. A non-empty RemoteURL
// routes to a pooled remote browser (grid); otherwise a local chromedriver
// is started.
type BrowserConfig struct {
	RemoteURL    string   `mapstructure:"remote_url" yaml:"remote_url"`
	DriverPath   string   `mapstructure:"driver_path" yaml:"driver_path"`
	DriverPort   int      `mapstructure:"driver_port" yaml:"driver_port"`
	Headless     bool     `mapstructure:"headless" yaml:"headless"`
	WindowWidth  int      `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int      `mapstructure:"window_height" yaml:"window_height"`
	ExtraArgs    []string `mapstructure:"extra_args" yaml:"extra_args"`
}

// SiteConfig carries the target site and every wait/poll parameter used by
// the synchronization layer. Wait durations are explicit here and passed
// through every call; there is no driver-side implicit wait.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// ExplicitWait bounds ordinary element waits; LongWait bounds the waits
	// around the asynchronously reloading job list.
	ExplicitWait time.Duration `mapstructure:"explicit_wait" yaml:"explicit_wait"`
	LongWait     time.Duration `mapstructure:"long_wait" yaml:"long_wait"`
	BannerWait   time.Duration `mapstructure:"banner_wait" yaml:"banner_wait"`

	// PollInterval paces element waits; GateInterval and StabilityInterval
	// pace the auto-selection gate and the list-stability detector.
	PollInterval      time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	GateInterval      time.Duration `mapstructure:"gate_interval" yaml:"gate_interval"`
	StabilityInterval time.Duration `mapstructure:"stability_interval" yaml:"stability_interval"`

	// GateMaxReadFailures bounds consecutive transient read failures before
	// the auto-selection gate aborts.
	GateMaxReadFailures int `mapstructure:"gate_max_read_failures" yaml:"gate_max_read_failures"`

	// StabilityThreshold is the number of consecutive unchanged samples
	// required before the job list is considered settled.
	StabilityThreshold int `mapstructure:"stability_threshold" yaml:"stability_threshold"`
}

// DeployConfig drives the cluster deployment command.
type DeployConfig struct {
	NodeCount   int           `mapstructure:"node_count" yaml:"node_count"`
	Namespace   string        `mapstructure:"namespace" yaml:"namespace"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	ChartPath   string        `mapstructure:"chart_path" yaml:"chart_path"`
	ValuesFile  string        `mapstructure:"values_file" yaml:"values_file"`
	ReleaseName string        `mapstructure:"release_name" yaml:"release_name"`
	Cleanup     bool          `mapstructure:"cleanup" yaml:"cleanup"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "insider-e2e")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.driver_path", "chromedriver")
	v.SetDefault("browser.driver_port", 4444)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)

	// -- Site --
	v.SetDefault("site.base_url", "https://useinsider.com")
	v.SetDefault("site.explicit_wait", 15*time.Second)
	v.SetDefault("site.long_wait", 60*time.Second)
	v.SetDefault("site.banner_wait", 5*time.Second)
	v.SetDefault("site.poll_interval", 250*time.Millisecond)
	v.SetDefault("site.gate_interval", time.Second)
	v.SetDefault("site.stability_interval", time.Second)
	v.SetDefault("site.gate_max_read_failures", 10)
	v.SetDefault("site.stability_threshold", 3)

	// -- Deploy --
	v.SetDefault("deploy.node_count", 2)
	v.SetDefault("deploy.namespace", "default")
	v.SetDefault("deploy.wait_timeout", 5*time.Minute)
	v.SetDefault("deploy.chart_path", "./helm/insider-tests")
	v.SetDefault("deploy.release_name", "insider-tests")
	v.SetDefault("deploy.cleanup", false)
}

// NewFromViper creates a validated configuration instance from a viper
// object. The environment variables the original runtime contract exposes
// are bound here so containerized runs keep working unchanged.
func NewFromViper(v *viper.Viper) (*Config, error) {
	v.BindEnv("site.base_url", "INSIDER_SITE_BASE_URL", "APP_BASE_URL")
	v.BindEnv("browser.remote_url", "INSIDER_BROWSER_REMOTE_URL", "CHROME_SERVICE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if c.Site.ExplicitWait <= 0 || c.Site.LongWait <= 0 {
		return fmt.Errorf("site wait durations must be positive")
	}
	if c.Site.PollInterval <= 0 {
		return fmt.Errorf("site.poll_interval must be positive")
	}
	if c.Site.StabilityThreshold <= 0 {
		return fmt.Errorf("site.stability_threshold must be positive")
	}
	if c.Site.GateMaxReadFailures <= 0 {
		return fmt.Errorf("site.gate_max_read_failures must be positive")
	}
	return c.Deploy.Validate()
}

// Validate checks the deployment settings. The browser-worker replica count
// is bounded to keep a shared cluster usable.
func (d *DeployConfig) Validate() error {
	if d.NodeCount < 1 || d.NodeCount > 5 {
		return fmt.Errorf("deploy.node_count must be between 1 and 5, got %d", d.NodeCount)
	}
	if d.Namespace == "" {
		return fmt.Errorf("deploy.namespace is required")
	}
	if d.WaitTimeout <= 0 {
		return fmt.Errorf("deploy.wait_timeout must be positive")
	}
	return nil
}
