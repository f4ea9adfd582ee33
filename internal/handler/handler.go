package handler

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/Iron-Ham/webwire/internal/app"
	"github.com/Iron-Ham/webwire/internal/cmdline"
	"github.com/Iron-Ham/webwire/internal/event"
	"github.com/Iron-Ham/webwire/internal/logging"
	"github.com/Iron-Ham/webwire/internal/reader"
	"github.com/Iron-Ham/webwire/internal/timer"
	"github.com/Iron-Ham/webwire/internal/util"
	"github.com/Iron-Ham/webwire/internal/variant"
)

// LogEventName carries one log line (stream, kind, message) from any
// goroutine to the handler, which writes it on the dispatch goroutine.
const LogEventName = "handler-log-event"

// ProtocolVersion is reported by the protocol command.
const ProtocolVersion = 1

// Log line kinds.
const (
	KindOK      = "OK"
	KindNOK     = "NOK"
	KindError   = "ERR"
	KindMessage = "MSG"
	KindWarn    = "WARN"
	KindDebug   = "DBG"
	KindEvent   = "EVENT"
)

// lineFormat is kind, number of lines in the message, message.
const lineFormat = "%s(%d):%s\n"

// LogSink receives every non-event log line when sinks are installed.
type LogSink func(kind, msg string)

// EventSink receives EVENT lines when sinks are installed.
type EventSink func(msg string)

type options struct {
	stdout  io.Writer
	stderr  io.Writer
	logFile io.Writer
	evtSink EventSink
	logSink LogSink
	level   Level
	color   ColorMode
	logger  *logging.Logger
}

// Option configures a Handler.
type Option func(*options)

// WithOutput sets the writers standing in for stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		if stdout != nil {
			o.stdout = stdout
		}
		if stderr != nil {
			o.stderr = stderr
		}
	}
}

// WithLogFile copies every log line, unstyled, to w. Lines diverted to
// sinks are copied too.
func WithLogFile(w io.Writer) Option {
	return func(o *options) { o.logFile = w }
}

// WithSinks replaces the writers with callbacks. Both must be set; a
// half-configured pair is ignored.
func WithSinks(evt EventSink, log LogSink) Option {
	return func(o *options) {
		if evt != nil && log != nil {
			o.evtSink, o.logSink = evt, log
		}
	}
}

// WithLevel sets the initial minimum level.
func WithLevel(l Level) Option {
	return func(o *options) { o.level = l }
}

// WithColor sets how the kind prefix is styled on stdout and stderr.
func WithColor(m ColorMode) Option {
	return func(o *options) { o.color = m }
}

// WithLogger sets the structured logger for handler diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Handler is the protocol entity: it runs command lines from its input,
// answers with OK/NOK result lines and writes log lines.
type Handler struct {
	*app.Entity
	commands *cmdline.Registry
	logger   *logging.Logger

	level atomic.Int32

	stdout   io.Writer
	stderr   io.Writer
	logFile  io.Writer
	outStyle *styler
	errStyle *styler
	evtSink  EventSink
	logSink  LogSink

	input         *reader.Reader
	timers        map[string]*timer.Timer
	quitRequested bool
	exited        atomic.Bool
}

// New creates the handler entity under parent with the built-in commands
// registered.
func New(a *app.Application, parent event.Handle, opts ...Option) *Handler {
	o := options{
		stdout: os.Stdout,
		stderr: os.Stderr,
		level:  LevelInfo,
		color:  ColorAuto,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Handler{
		Entity:   a.NewEntity(parent),
		commands: cmdline.NewRegistry(),
		stdout:   o.stdout,
		stderr:   o.stderr,
		logFile:  o.logFile,
		outStyle: newStyler(o.stdout, o.color),
		errStyle: newStyler(o.stderr, o.color),
		evtSink:  o.evtSink,
		logSink:  o.logSink,
		timers:   make(map[string]*timer.Timer),
	}
	h.logger = o.logger.WithComponent("handler").WithEntity(h.Handle())
	h.level.Store(int32(o.level))

	h.Listen(h.Handle(), LogEventName, h.handleLog)
	h.registerBuiltins()
	return h
}

// Commands returns the registry so callers can add their own commands.
func (h *Handler) Commands() *cmdline.Registry { return h.commands }

// Level returns the current minimum level.
func (h *Handler) Level() Level { return Level(h.level.Load()) }

// SetLevel changes the minimum level.
func (h *Handler) SetLevel(l Level) { h.level.Store(int32(l)) }

// Exited reports whether the exit command or the end of input stopped the
// application.
func (h *Handler) Exited() bool { return h.exited.Load() }

// Connect feeds the reader's lines to the handler. The end of input quits
// the application.
func (h *Handler) Connect(r *reader.Reader) {
	h.input = r
	h.Listen(r.Handle(), reader.HaveLineName, func(ev *event.Event) {
		h.process(ev.NextString(), true)
	})
	h.Listen(r.Handle(), reader.EOFName, h.inputStopped)
	h.Listen(r.Handle(), reader.ErrorName, h.inputStopped)
}

// Announce writes the banner lines.
func (h *Handler) Announce(version string) {
	h.Message("webwire " + version)
	h.Message(fmt.Sprintf("protocol-version: %d", ProtocolVersion))
}

// ProcessInput runs one command line and returns the joined responses.
// Reasons are logged as ERR lines. It must run on the dispatch goroutine.
func (h *Handler) ProcessInput(line string) string {
	return h.process(line, false)
}

func (h *Handler) process(line string, report bool) string {
	h.logger.Debug("command", "line", util.LogValue(line))
	resp := h.commands.Execute(line)
	for _, reason := range resp.Reasons() {
		h.Error(reason)
	}

	msg := resp.Joined()
	if report && msg != "" {
		switch {
		case strings.HasPrefix(msg, "OK:"):
			h.emitLog(os.Stdout, KindOK, msg[len("OK:"):])
		case strings.HasPrefix(msg, "NOK:"):
			h.emitLog(os.Stdout, KindNOK, msg[len("NOK:"):])
		default:
			h.emitLog(os.Stdout, KindOK, msg)
		}
	}

	if h.quitRequested {
		h.quitRequested = false
		h.quit()
	}
	return msg
}

func (h *Handler) inputStopped(ev *event.Event) {
	if ev.Is(reader.ErrorName) {
		h.logger.Warn("input failed", "error", ev.NextString())
	}
	h.Warning("Input has stopped")
	h.quit()
}

func (h *Handler) quit() {
	h.exited.Store(true)
	h.logger.Info("handler quitting")
	h.App().Quit()
}

// Error logs msg as ERR.
func (h *Handler) Error(msg string) {
	if h.Level() <= LevelError {
		h.emitLog(os.Stderr, KindError, msg)
	}
}

// Warning logs msg as WARN.
func (h *Handler) Warning(msg string) {
	if h.Level() <= LevelWarning {
		h.emitLog(os.Stderr, KindWarn, msg)
	}
}

// Message logs msg as MSG.
func (h *Handler) Message(msg string) {
	if h.Level() <= LevelInfo {
		h.emitLog(os.Stderr, KindMessage, msg)
	}
}

// Debug logs msg as DBG.
func (h *Handler) Debug(msg string) {
	if h.Level() <= LevelDebug {
		h.emitLog(os.Stderr, KindDebug, msg)
	}
}

// Detail logs msg as DBG at the most verbose level only.
func (h *Handler) Detail(msg string) {
	if h.Level() <= LevelDetail {
		h.emitLog(os.Stderr, KindDebug, msg)
	}
}

// Event reports msg as an EVENT line regardless of level.
func (h *Handler) Event(msg string) {
	h.emitLog(os.Stderr, KindEvent, msg)
}

// emitLog queues a log line. stream is os.Stdout, os.Stderr or nil for the
// log file only; it selects the configured writer, not the real file.
func (h *Handler) emitLog(stream *os.File, kind, msg string) {
	h.Emit(LogEventName, variant.File(stream), variant.String(kind), variant.String(msg))
}

func (h *Handler) handleLog(ev *event.Event) {
	stream := ev.NextFile()
	kind := ev.NextString()
	msg := ev.NextString()
	lines := strings.Count(msg, "\n") + 1

	if h.logFile != nil {
		if _, err := fmt.Fprintf(h.logFile, lineFormat, kind, lines, msg); err != nil {
			h.logger.Warn("log file write failed", "error", err.Error())
		}
	}

	if h.evtSink != nil && h.logSink != nil {
		if kind == KindEvent {
			h.evtSink(msg)
		} else {
			h.logSink(kind, msg)
		}
		return
	}
	h.write(stream, kind, lines, msg)
}

func (h *Handler) write(stream *os.File, kind string, lines int, msg string) {
	var (
		w  io.Writer
		st *styler
	)
	switch stream {
	case os.Stdout:
		w, st = h.stdout, h.outStyle
	case os.Stderr:
		w, st = h.stderr, h.errStyle
	default:
		return
	}
	if _, err := fmt.Fprintf(w, lineFormat, st.kind(kind), lines, msg); err != nil {
		h.logger.Warn("output write failed", "kind", kind, "error", err.Error())
	}
}
