package handler

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/webwire/internal/app"
	"github.com/Iron-Ham/webwire/internal/cmdline"
	"github.com/Iron-Ham/webwire/internal/event"
	"github.com/Iron-Ham/webwire/internal/reader"
)

type harness struct {
	app    *app.Application
	h      *Handler
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	a, err := app.New(app.WithWait(5 * time.Millisecond))
	if err != nil {
		t.Fatalf("app.New() failed: %v", err)
	}
	t.Cleanup(a.Close)

	hs := &harness{app: a, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	opts = append([]Option{WithOutput(hs.stdout, hs.stderr), WithColor(ColorNever)}, opts...)
	hs.h = New(a, event.NoHandle, opts...)
	return hs
}

// drain delivers everything queued so far.
func (hs *harness) drain(t *testing.T) {
	t.Helper()
	hs.app.Quit()
	hs.run(t)
}

func (hs *harness) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.app.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
}

func TestHandler_ProcessInput(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"protocol", "protocol", "OK:protocol:0:1"},
		{"case insensitive", "  PROTOCOL  ", "OK:protocol:0:1"},
		{"unknown", "frobnicate 1 2", "NOK:frobnicate:unknown:Unknown command"},
		{"empty", "", "NOK:"},
		{"log level query", "log-level", "OK:loglevel:0:info"},
		{"log level alias", "loglevel", "OK:loglevel:0:info"},
		{"bad log level", "log-level Loud", "NOK:log-level:Unknown log level 'loud'"},
		{"help", "help", "OK:help::0:given"},
		{"timer stop unknown", "timer-stop nope", "NOK:timer-stop:0"},
		{"timer start arity", "timer-start tick", "NOK:timer-start:0"},
		{"timer start bad interval", "timer-start tick 0", "NOK:timer-start:0"},
		{"timer start negative interval", "timer-start tick -5", "NOK:timer-start:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := newHarness(t)
			if got := hs.h.ProcessInput(tt.line); got != tt.want {
				t.Errorf("ProcessInput(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestHandler_ReasonsAreLogged(t *testing.T) {
	hs := newHarness(t)

	hs.h.ProcessInput("frobnicate")
	hs.h.ProcessInput("timer-start tick")
	hs.drain(t)

	got := hs.stderr.String()
	for _, want := range []string{
		"ERR(1):Unknown command 'frobnicate'\n",
		"ERR(1):timer-start: incorrect number of arguments 1, minimal expected 2\n",
		"ERR(1):syntax: timer-start <name:string> <ms:integer> [single-shot:boolean]\n",
		"ERR(1):got   : timer-start tick\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("stderr missing %q:\n%s", want, got)
		}
	}
	if hs.stdout.Len() != 0 {
		t.Errorf("ProcessInput wrote results to stdout: %q", hs.stdout.String())
	}
}

func TestHandler_ReaderInput(t *testing.T) {
	hs := newHarness(t)

	r := reader.New(hs.app, hs.h.Handle(), strings.NewReader("protocol\nlog-level bogus\nexit\n"))
	hs.h.Connect(r)
	r.Start()
	hs.run(t)

	want := "OK(1):protocol:0:1\n" +
		"NOK(1):log-level:Unknown log level 'bogus'\n" +
		"OK(1):exit:done\n"
	if got := hs.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if !hs.h.Exited() {
		t.Error("Exited() = false after exit")
	}
}

func TestHandler_InputStopped(t *testing.T) {
	hs := newHarness(t)

	r := reader.New(hs.app, hs.h.Handle(), strings.NewReader(""))
	hs.h.Connect(r)
	r.Start()
	hs.run(t)

	if !strings.Contains(hs.stderr.String(), "WARN(1):Input has stopped\n") {
		t.Errorf("stderr = %q", hs.stderr.String())
	}
	if !hs.h.Exited() {
		t.Error("Exited() = false after end of input")
	}
}

func TestHandler_Exit(t *testing.T) {
	hs := newHarness(t)

	if got := hs.h.ProcessInput("exit"); got != "OK:exit:done" {
		t.Fatalf("exit = %q", got)
	}
	hs.h.Message("after exit")
	hs.run(t)

	if strings.Contains(hs.stderr.String(), "after exit") {
		t.Error("line queued behind the quit was written")
	}
}

func TestHandler_LogLevel(t *testing.T) {
	hs := newHarness(t)

	if got := hs.h.ProcessInput("LOGLEVEL Error"); got != "OK:loglevel:0:error" {
		t.Fatalf("set level = %q", got)
	}
	if hs.h.Level() != LevelError {
		t.Fatalf("Level() = %v, want error", hs.h.Level())
	}

	hs.h.Detail("detail")
	hs.h.Debug("debug")
	hs.h.Message("message")
	hs.h.Warning("warning")
	hs.h.Error("error")
	hs.h.Event("event")
	hs.drain(t)

	want := "ERR(1):error\nEVENT(1):event\n"
	if got := hs.stderr.String(); got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}

	hs.stderr.Reset()
	hs.h.SetLevel(LevelDetail)
	hs.h.Detail("detail")
	hs.h.Debug("debug")
	hs.drain(t)
	if got := hs.stderr.String(); got != "DBG(1):detail\nDBG(1):debug\n" {
		t.Errorf("stderr at detail = %q", got)
	}
}

func TestHandler_LineFormat(t *testing.T) {
	var logFile bytes.Buffer
	hs := newHarness(t, WithLogFile(&logFile))

	hs.h.Message("first\nsecond\nthird")
	hs.h.emitLog(nil, "Unexpected", "file only")
	hs.drain(t)

	if got := hs.stderr.String(); got != "MSG(3):first\nsecond\nthird\n" {
		t.Errorf("stderr = %q", got)
	}
	wantLog := "MSG(3):first\nsecond\nthird\nUnexpected(1):file only\n"
	if got := logFile.String(); got != wantLog {
		t.Errorf("log file = %q, want %q", got, wantLog)
	}
}

func TestHandler_Sinks(t *testing.T) {
	var (
		events []string
		logs   []string
	)
	hs := newHarness(t, WithSinks(
		func(msg string) { events = append(events, msg) },
		func(kind, msg string) { logs = append(logs, kind+":"+msg) },
	))

	hs.h.Event("clicked:1")
	hs.h.Message("hello")
	hs.h.ProcessInput("nope")
	hs.drain(t)

	if len(events) != 1 || events[0] != "clicked:1" {
		t.Errorf("events = %v", events)
	}
	wantLogs := []string{"MSG:hello", "ERR:Unknown command 'nope'"}
	if strings.Join(logs, "|") != strings.Join(wantLogs, "|") {
		t.Errorf("logs = %v, want %v", logs, wantLogs)
	}
	if hs.stderr.Len() != 0 || hs.stdout.Len() != 0 {
		t.Error("writers used while sinks are installed")
	}
}

func TestHandler_HalfSinksIgnored(t *testing.T) {
	hs := newHarness(t, WithSinks(func(string) {}, nil))

	hs.h.Message("to stderr")
	hs.drain(t)

	if hs.stderr.String() != "MSG(1):to stderr\n" {
		t.Errorf("stderr = %q", hs.stderr.String())
	}
}

func TestHandler_Stylesheet(t *testing.T) {
	hs := newHarness(t)

	if got := hs.h.ProcessInput("get-stylesheet"); got != `OK:get-stylesheet:0:{"css":""}` {
		t.Errorf("empty stylesheet = %q", got)
	}

	set := `set-stylesheet "{\"css\": \"body { color: red; }\"}"`
	if got := hs.h.ProcessInput(set); got != "OK:set-stylesheet:0:done" {
		t.Fatalf("set = %q", got)
	}
	if got := hs.h.ProcessInput("get-stylesheet"); got != `OK:get-stylesheet:0:{"css":"body { color: red; }"}` {
		t.Errorf("get = %q", got)
	}

	if got := hs.h.ProcessInput("set-stylesheet nojson"); got != "NOK:set-stylesheet:0:error: invalid json" {
		t.Errorf("invalid json = %q", got)
	}
	if got := hs.h.ProcessInput(`set-stylesheet "{\"style\":1}"`); got != "NOK:set-stylesheet:0:error: missing css" {
		t.Errorf("missing css = %q", got)
	}
}

func TestHandler_Cwd(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	hs := newHarness(t)
	dir := t.TempDir()

	got := hs.h.ProcessInput(`cwd "` + dir + `"`)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if want := `OK:cwd:0:"` + wd + `"`; got != want {
		t.Errorf("cwd = %q, want %q", got, want)
	}
	if got := hs.h.ProcessInput("cwd"); got != `OK:cwd:0:"`+wd+`"` {
		t.Errorf("cwd query = %q", got)
	}
	if got := hs.h.ProcessInput("cwd /does/not/exist/anywhere"); got != "NOK:cwd:0" {
		t.Errorf("bad cwd = %q", got)
	}
}

func TestHandler_Timer(t *testing.T) {
	var hs *harness
	var events []string
	hs = newHarness(t, WithSinks(
		func(msg string) {
			events = append(events, msg)
			hs.app.Quit()
		},
		func(string, string) {},
	))

	if got := hs.h.ProcessInput("timer-start tick 5 true"); got != "OK:timer-start:0:tick" {
		t.Fatalf("timer-start = %q", got)
	}
	hs.run(t)

	if len(events) == 0 || events[0] != "timeout:tick" {
		t.Fatalf("events = %v, want timeout:tick", events)
	}

	if got := hs.h.ProcessInput("timer-stop tick"); got != "OK:timer-stop:0:tick" {
		t.Errorf("timer-stop = %q", got)
	}
	if got := hs.h.ProcessInput("timer-stop tick"); got != "NOK:timer-stop:0" {
		t.Errorf("second timer-stop = %q", got)
	}
}

func TestHandler_Help(t *testing.T) {
	hs := newHarness(t)

	hs.h.ProcessInput("help")
	hs.drain(t)

	out := hs.stderr.String()
	if !strings.Contains(out, "MSG(1):exit - stop the wire\n") {
		t.Errorf("help output missing exit:\n%s", out)
	}
	if strings.Count(out, "log level") != 1 {
		t.Errorf("log-level alias listed twice:\n%s", out)
	}
}

func TestHandler_CustomCommand(t *testing.T) {
	hs := newHarness(t)
	hs.h.Commands().Register("ping", "ping - answer pong", func(c *cmdline.Call) {
		c.Resp.OK("ping:0:pong")
	})

	if got := hs.h.ProcessInput("ping"); got != "OK:ping:0:pong" {
		t.Errorf("ping = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range LevelNames() {
		l, ok := ParseLevel(" " + strings.ToUpper(name) + " ")
		if !ok || l.String() != name {
			t.Errorf("ParseLevel(%q) = %v, %v", name, l, ok)
		}
	}
	if _, ok := ParseLevel("verbose"); ok {
		t.Error("ParseLevel(verbose) succeeded")
	}
	if LevelDetail >= LevelDebug || LevelError >= LevelFatal {
		t.Error("levels out of order")
	}
}

func TestColor(t *testing.T) {
	var buf bytes.Buffer

	if s := newStyler(&buf, ColorNever); s.kind(KindOK) != KindOK {
		t.Error("never mode styled output")
	}
	if s := newStyler(&buf, ColorAuto); s != nil {
		t.Error("auto mode styled a non-terminal writer")
	}
	if got := newStyler(&buf, ColorAlways).kind(KindNOK); !strings.Contains(got, "\x1b[") || !strings.Contains(got, KindNOK) {
		t.Errorf("always mode = %q, want ANSI styling", got)
	}

	for in, want := range map[string]ColorMode{"": ColorAuto, "Always": ColorAlways, "never": ColorNever} {
		if got, err := ParseColorMode(in); err != nil || got != want {
			t.Errorf("ParseColorMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseColorMode("sometimes"); err == nil {
		t.Error("ParseColorMode(sometimes) succeeded")
	}
}

func TestHandler_TimerStopUnknown(t *testing.T) {
	hs := newHarness(t)

	if got := hs.h.ProcessInput("timer-stop ghost"); got != "NOK:timer-stop:0" {
		t.Errorf("timer-stop = %q", got)
	}
	hs.drain(t)
	if want := "ERR(1):timer-stop: timer 'ghost' not found\n"; !strings.Contains(hs.stderr.String(), want) {
		t.Errorf("stderr missing %q:\n%s", want, hs.stderr.String())
	}
}

func TestHandler_TimerStartRejectsSign(t *testing.T) {
	hs := newHarness(t)

	hs.h.ProcessInput("timer-start tick -5")
	hs.drain(t)
	if want := "ERR(1):timer-start: ms: expected integer, got -5\n"; !strings.Contains(hs.stderr.String(), want) {
		t.Errorf("stderr missing %q:\n%s", want, hs.stderr.String())
	}
}
