package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/webwire/internal/logging"
	"github.com/Iron-Ham/webwire/internal/wire"
)

var execCmd = &cobra.Command{
	Use:   "exec <command line>",
	Short: "Run one command line and print the result",
	Long: `Run a single command line through a wire and print the joined
OK/NOK result on stdout, followed on stderr by the log and event lines
produced while waiting.

Examples:
  webwire exec protocol
  webwire exec 'set-stylesheet "{\"css\": \"body {}\"}"'
  webwire exec --wait 200ms 'timer-start t 50 true'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

var execWait time.Duration

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().DurationVar(&execWait, "wait", 50*time.Millisecond, "How long to collect log and event lines after the command")
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
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

	w, err := wire.New(wire.Options{
		Logger:        logger,
		Level:         cfg.Handler.LogLevel,
		DispatchWait:  cfg.Dispatch.Wait(),
		ItemWait:      cfg.Queue.Wait(),
		MaxQueueDepth: cfg.Queue.MaxDepth,
		Trace:         trace.Match,
	})
	if err != nil {
		return err
	}
	defer w.Destroy()

	// Drop the startup line.
	w.Get(cmd.Context())

	result := w.Command(strings.Join(args, " "))
	fmt.Fprintln(cmd.OutOrStdout(), result)

	ctx, cancel := context.WithTimeout(cmd.Context(), execWait)
	defer cancel()
	for ctx.Err() == nil {
		it := w.Get(ctx)
		switch it.Kind {
		case wire.ItemEvent:
			fmt.Fprintf(cmd.ErrOrStderr(), "EVENT(1):%s\n", it.Event)
		case wire.ItemLog:
			fmt.Fprintf(cmd.ErrOrStderr(), "%s(%d):%s\n", it.LogKind, strings.Count(it.Message, "\n")+1, it.Message)
		case wire.ItemInvalid:
			cancel()
		}
	}

	if !strings.HasPrefix(result, "OK:") {
		return fmt.Errorf("command failed: %s", result)
	}
	return nil
}
