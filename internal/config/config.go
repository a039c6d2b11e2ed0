// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultTargetURL is the page exercised when no target is configured.
	DefaultTargetURL = "https://app.cloudqa.io/home/AutomationPracticeForm"
	// DefaultWaitTimeout bounds every explicit wait against the page.
	DefaultWaitTimeout = 8 * time.Second
	// EnvPrefix is the prefix for environment variable overrides (FORMPROBE_BROWSER_HEADLESS, ...).
	EnvPrefix = "FORMPROBE"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Exercise() ExerciseConfig

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserWaitTimeout(time.Duration)

	// Exercise Setters
	SetExerciseTargetURL(string)
	SetExerciseSubmit(bool)
	SetExerciseReport(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	ExerciseCfg ExerciseConfig `mapstructure:"exercise" yaml:"exercise"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Exercise() ExerciseConfig { return c.ExerciseCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)             { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserWaitTimeout(d time.Duration) { c.BrowserCfg.WaitTimeout = d }
func (c *Config) SetExerciseTargetURL(u string)         { c.ExerciseCfg.TargetURL = u }
func (c *Config) SetExerciseSubmit(b bool)              { c.ExerciseCfg.Submit = b }
func (c *Config) SetExerciseReport(path string)         { c.ExerciseCfg.Report = path }

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

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless        bool     `mapstructure:"headless" yaml:"headless"`
	DisableGPU      bool     `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	NoSandbox       bool     `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	IgnoreTLSErrors bool     `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath        string   `mapstructure:"exec_path" yaml:"exec_path"`
	Args            []string `mapstructure:"args" yaml:"args"`
	Viewport        Viewport `mapstructure:"viewport" yaml:"viewport"`

	// NavigationTimeout bounds the initial page load.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`

	// WaitTimeout bounds each explicit wait and each per-field action.
	WaitTimeout time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`

	// Debug forwards chromedp protocol logs to the debug level.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// Viewport is the window size used to emulate a maximized window.
type Viewport struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// ExerciseConfig controls one form-exercise run.
type ExerciseConfig struct {
	TargetURL string `mapstructure:"target_url" yaml:"target_url"`

	// Submit enables the opt-in submit path. Off by default; the default run never submits.
	Submit bool `mapstructure:"submit" yaml:"submit"`

	// ActionsPerSecond paces field actions. Zero means unlimited.
	ActionsPerSecond float64 `mapstructure:"actions_per_second" yaml:"actions_per_second"`

	// Report is the JSON report destination. Empty disables it, "-" writes to stdout.
	Report string `mapstructure:"report" yaml:"report"`
}

// NewDefaultConfig creates a new configuration with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "formprobe")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.viewport.width", 1920)
	v.SetDefault("browser.viewport.height", 1080)
	v.SetDefault("browser.navigation_timeout", "30s")
	v.SetDefault("browser.wait_timeout", DefaultWaitTimeout.String())
	v.SetDefault("browser.debug", false)

	// -- Exercise --
	v.SetDefault("exercise.target_url", DefaultTargetURL)
	v.SetDefault("exercise.submit", false)
	v.SetDefault("exercise.actions_per_second", 0)
	v.SetDefault("exercise.report", "")
}

// BindEnv wires FORMPROBE_* environment variables into v, mapping dotted keys
// to underscores (browser.wait_timeout -> FORMPROBE_BROWSER_WAIT_TIMEOUT).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewConfigFromViper creates a new configuration instance from a Viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
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
	if err := c.BrowserCfg.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	if err := c.ExerciseCfg.Validate(); err != nil {
		return fmt.Errorf("exercise configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the browser configuration.
func (b *BrowserConfig) Validate() error {
	if b.WaitTimeout <= 0 {
		return fmt.Errorf("wait_timeout must be a positive duration")
	}
	if b.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be a positive duration")
	}
	if b.Viewport.Width <= 0 || b.Viewport.Height <= 0 {
		return fmt.Errorf("viewport width and height must be positive integers")
	}
	return nil
}

// Validate checks the exercise configuration.
func (e *ExerciseConfig) Validate() error {
	if strings.TrimSpace(e.TargetURL) == "" {
		return fmt.Errorf("target_url is required")
	}
	if e.ActionsPerSecond < 0 {
		return fmt.Errorf("actions_per_second must not be negative")
	}
	return nil
}
