package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/webwire/internal/app"
	"github.com/Iron-Ham/webwire/internal/config"
	"github.com/Iron-Ham/webwire/internal/event"
	"github.com/Iron-Ham/webwire/internal/handler"
	"github.com/Iron-Ham/webwire/internal/logging"
	"github.com/Iron-Ham/webwire/internal/reader"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Serve the line protocol on stdin and stdout",
	Long: `Serve the line protocol: read one command per line from stdin and
write OK/NOK result lines to stdout. Logging and events go to stderr.

The process ends on the exit command, at the end of input, or on SIGINT/SIGTERM.

Examples:
  # Interactive session
  webwire run

  # Scripted
  printf 'protocol\nexit\n' | webwire run --color never`,
	RunE: runServe,
}

var (
	runLogLevel string
	runColor    string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "Initial protocol log level (detail/debug/info/warning/error/fatal)")
	runCmd.Flags().StringVar(&runColor, "color", "", "Colour the kind prefix: auto, always or never")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	levelName := cfg.Handler.LogLevel
	if runLogLevel != "" {
		levelName = runLogLevel
	}
	level, ok := handler.ParseLevel(levelName)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelName)
	}
	colorName := cfg.Output.Color
	if runColor != "" {
		colorName = runColor
	}
	color, err := handler.ParseColorMode(colorName)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	trace, err := logging.NewEventFilter(cfg.Logging.TraceEvents)
	if err != nil {
		return err
	}

	a, err := app.New(
		app.WithLogger(logger),
		app.WithWait(cfg.Dispatch.Wait()),
		app.WithMaxQueueDepth(cfg.Queue.MaxDepth),
		app.WithTrace(trace.Match),
	)
	if err != nil {
		return err
	}
	defer a.Close()

	hopts := []handler.Option{
		handler.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		handler.WithLevel(level),
		handler.WithColor(color),
		handler.WithLogger(logger),
	}
	protoLog, err := openProtocolLog(cfg)
	if err != nil {
		return err
	}
	if protoLog != nil {
		defer func() { _ = protoLog.Close() }()
		hopts = append(hopts, handler.WithLogFile(protoLog))
	}

	h := handler.New(a, event.NoHandle, hopts...)
	input := reader.New(a, h.Handle(), cmd.InOrStdin())
	h.Connect(input)
	h.Announce(Version)

	if viper.ConfigFileUsed() != "" {
		config.Watch(func(c *config.Config) {
			if l, ok := handler.ParseLevel(c.Handler.LogLevel); ok {
				h.SetLevel(l)
			}
			logger.Info("configuration reloaded", "file", viper.ConfigFileUsed(), "handler_level", c.Handler.LogLevel)
		}, func(err error) {
			logger.Warn("configuration reload rejected", "error", err.Error())
		})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Releases the signal goroutine once the loop is done.
		defer stop()
		input.Start()
		return a.Run(context.Background())
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Quit()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("run finished", "exited", h.Exited())
	return nil
}
