package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/webwire/internal/config"
	"github.com/Iron-Ham/webwire/internal/logging"
)

// Version is reported by --version and the protocol banner. It is set at
// build time with -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "webwire",
	Short: "Line protocol bridge around an event-routing kernel",
	Long: `webwire reads command lines on stdin, dispatches them through an
event-routing application and answers with OK/NOK result lines on stdout.
Log and event lines are written to stderr as KIND(lines):message.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/webwire/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if err := config.Init(viper.GetString("config")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config: %v\n", err)
	}
}

// loadConfig returns the validated configuration. Invalid settings are an
// error rather than a silent fallback to defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger opens the structured log. With no logging.file it is disabled,
// since stderr carries protocol lines.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if cfg.Logging.File == "" {
		return logging.NopLogger(), nil
	}
	return logging.NewLoggerWithRotation(cfg.Logging.File, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
}

// openProtocolLog opens the copy of protocol lines configured in
// handler.log_file, rotated like the structured log. It returns nil when
// none is configured.
func openProtocolLog(cfg *config.Config) (*logging.RotatingWriter, error) {
	if cfg.Handler.LogFile == "" {
		return nil, nil
	}
	return logging.NewRotatingWriter(cfg.Handler.LogFile, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
}
