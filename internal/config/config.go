package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/webwire/internal/errors"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// WEBWIRE_QUEUE_MAX_DEPTH for queue.max_depth.
const EnvPrefix = "WEBWIRE"

// Config represents the complete webwire configuration
type Config struct {
	Dispatch DispatchConfig `mapstructure:"dispatch" yaml:"dispatch"`
	Queue    QueueConfig    `mapstructure:"queue" yaml:"queue"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Handler  HandlerConfig  `mapstructure:"handler" yaml:"handler"`
}

// DispatchConfig controls the application dispatch loop
type DispatchConfig struct {
	// WaitMs is how long the loop blocks on an empty queue before it checks
	// for cancellation (default: 500)
	WaitMs int `mapstructure:"wait_ms" yaml:"wait_ms"`
}

// QueueConfig controls event queues
type QueueConfig struct {
	// WaitMs is how long a host poll for wire items waits (default: 5)
	WaitMs int `mapstructure:"wait_ms" yaml:"wait_ms"`
	// MaxDepth is the number of pending events past which the process is
	// stopped (default: 100000)
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
}

// LoggingConfig controls the structured debug log
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error (default: info)
	Level string `mapstructure:"level" yaml:"level"`
	// File is the log file path; empty logs to stderr
	File string `mapstructure:"file" yaml:"file"`
	// MaxSizeMB is the size at which the log file rotates (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
	// TraceEvents are glob patterns of event names logged on every dispatch
	TraceEvents []string `mapstructure:"trace_events" yaml:"trace_events"`
}

// OutputConfig controls protocol output on the terminal
type OutputConfig struct {
	// Color is auto, always or never (default: auto)
	Color string `mapstructure:"color" yaml:"color"`
}

// HandlerConfig controls the protocol handler
type HandlerConfig struct {
	// LogLevel is the initial protocol log level:
	// detail, debug, info, warning, error, fatal (default: info)
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// LogFile receives a copy of every protocol line; empty disables it
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Dispatch: DispatchConfig{
			WaitMs: 500,
		},
		Queue: QueueConfig{
			WaitMs:   5,
			MaxDepth: 100000,
		},
		Logging: LoggingConfig{
			Level:       "info",
			MaxSizeMB:   10,
			MaxBackups:  3,
			TraceEvents: []string{},
		},
		Output: OutputConfig{
			Color: "auto",
		},
		Handler: HandlerConfig{
			LogLevel: "info",
		},
	}
}

// Wait returns the dispatch wait as a time.Duration
func (c *DispatchConfig) Wait() time.Duration {
	return time.Duration(c.WaitMs) * time.Millisecond
}

// Wait returns the queue wait as a time.Duration
func (c *QueueConfig) Wait() time.Duration {
	return time.Duration(c.WaitMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("dispatch.wait_ms", defaults.Dispatch.WaitMs)

	viper.SetDefault("queue.wait_ms", defaults.Queue.WaitMs)
	viper.SetDefault("queue.max_depth", defaults.Queue.MaxDepth)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
	viper.SetDefault("logging.trace_events", defaults.Logging.TraceEvents)

	viper.SetDefault("output.color", defaults.Output.Color)

	viper.SetDefault("handler.log_level", defaults.Handler.LogLevel)
	viper.SetDefault("handler.log_file", defaults.Handler.LogFile)
}

// Init sets defaults, the config file search path and environment binding,
// then reads the config file if there is one. A missing file is not an
// error; an explicit cfgFile that cannot be read is.
func Init(cfgFile string) error {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix(EnvPrefix)
	// e.g., WEBWIRE_LOGGING_LEVEL for logging.level
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return err
	}
	return nil
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "webwire")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".webwire"
	}
	return filepath.Join(home, ".config", "webwire")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
