package handler

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Iron-Ham/webwire/internal/cmdline"
	"github.com/Iron-Ham/webwire/internal/errors"
	"github.com/Iron-Ham/webwire/internal/event"
	"github.com/Iron-Ham/webwire/internal/timer"
	"github.com/Iron-Ham/webwire/internal/variant"
)

// stylesheetProperty holds the css set with set-stylesheet.
const stylesheetProperty = "stylesheet"

func (h *Handler) registerBuiltins() {
	r := h.commands
	r.Register("exit", "exit - stop the wire", h.cmdExit)
	r.Register("help", "help - list the commands", h.cmdHelp)
	r.Register("log-level", "log-level [<level>] - get or set the log level ("+strings.Join(LevelNames(), ", ")+")", h.cmdLogLevel)
	r.Register("loglevel", "", h.cmdLogLevel)
	r.Register("protocol", "protocol - report the protocol version", h.cmdProtocol)
	r.Register("cwd", "cwd [<dir>] - change to <dir> and report the working directory", h.cmdCwd)
	r.Register("set-stylesheet", `set-stylesheet <json> - store the stylesheet from {"css": "..."}`, h.cmdSetStylesheet)
	r.Register("get-stylesheet", "get-stylesheet - return the stored stylesheet as json", h.cmdGetStylesheet)
	r.Register("timer-start", "timer-start <name> <ms> [<single-shot>] - start a timer that reports timeout:<name> events", h.cmdTimerStart)
	r.Register("timer-stop", "timer-stop <name> - stop and remove a timer", h.cmdTimerStop)
}

func (h *Handler) cmdExit(c *cmdline.Call) {
	c.Resp.OK("exit:done")
	h.quitRequested = true
}

func (h *Handler) cmdHelp(c *cmdline.Call) {
	for _, name := range h.commands.Names() {
		if cmd, _ := h.commands.Lookup(name); cmd.Summary != "" {
			h.Message(cmd.Summary)
		}
	}
	c.Resp.OK("help::0:given")
}

func (h *Handler) cmdLogLevel(c *cmdline.Call) {
	var level string
	if !c.Bind(cmdline.OptString(&level, "level", "")) {
		return
	}

	l := strings.ToLower(strings.TrimSpace(level))
	if l == "" {
		c.Resp.OK("loglevel:0:" + h.Level().String())
		return
	}
	lvl, ok := ParseLevel(l)
	if !ok {
		c.Resp.NOK("log-level:Unknown log level '" + l + "'")
		return
	}
	h.SetLevel(lvl)
	c.Resp.OK("loglevel:0:" + l)
}

func (h *Handler) cmdProtocol(c *cmdline.Call) {
	c.Resp.OKf("protocol:0:%d", ProtocolVersion)
}

func (h *Handler) cmdCwd(c *cmdline.Call) {
	var dir string
	if !c.Bind(cmdline.OptString(&dir, "dir", "")) {
		return
	}
	if dir != "" {
		if err := os.Chdir(dir); err != nil {
			c.Resp.Fail(c.Name, 0, err)
			return
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		c.Resp.Fail(c.Name, 0, err)
		return
	}
	c.Resp.OK(`cwd:0:"` + wd + `"`)
}

func (h *Handler) cmdSetStylesheet(c *cmdline.Call) {
	var doc string
	if !c.Bind(cmdline.String(&doc, "json")) {
		return
	}
	if !gjson.Valid(doc) {
		c.Resp.NOK("set-stylesheet:0:error: invalid json")
		return
	}
	css := gjson.Get(doc, "css")
	if !css.Exists() {
		c.Resp.NOK("set-stylesheet:0:error: missing css")
		return
	}
	h.SetProperty(stylesheetProperty, variant.String(css.String()))
	c.Resp.OK("set-stylesheet:0:done")
}

func (h *Handler) cmdGetStylesheet(c *cmdline.Call) {
	css := ""
	if v, ok := h.Property(stylesheetProperty); ok {
		css = v.AsString()
	}
	doc, err := sjson.Set("{}", "css", css)
	if err != nil {
		c.Resp.Fail(c.Name, 0, err)
		return
	}
	c.Resp.OK("get-stylesheet:0:" + doc)
}

func (h *Handler) cmdTimerStart(c *cmdline.Call) {
	var (
		name   string
		ms     int
		single bool
	)
	if !c.Bind(cmdline.String(&name, "name"), cmdline.Int(&ms, "ms"), cmdline.OptBool(&single, "single-shot", false)) {
		return
	}
	if ms == 0 {
		c.Resp.Err("timer-start: interval must be positive, got 0")
		c.Resp.NOK("timer-start:0")
		return
	}

	t, ok := h.timers[name]
	if !ok {
		t = timer.New(h.App(), h.Handle(), name)
		h.Listen(t.Handle(), timer.TimeoutName, h.handleTimeout)
		t.OnDestroy(func() { delete(h.timers, name) })
		h.timers[name] = t
	}
	t.SetSingleShot(single)
	t.Start(time.Duration(ms) * time.Millisecond)
	h.Debug(fmt.Sprintf("timer %s started (%d ms, single-shot %t)", name, ms, single))
	c.Resp.OK("timer-start:0:" + name)
}

func (h *Handler) cmdTimerStop(c *cmdline.Call) {
	var name string
	if !c.Bind(cmdline.String(&name, "name")) {
		return
	}
	t, ok := h.timers[name]
	if !ok {
		c.Resp.Fail(c.Name, 0, errors.NewNotFoundError("timer", name))
		return
	}
	t.Destroy()
	c.Resp.OK("timer-stop:0:" + name)
}

func (h *Handler) handleTimeout(ev *event.Event) {
	name := ev.NextString()
	if t, ok := h.timers[name]; ok {
		h.Detail(fmt.Sprintf("timer %s fired (interval %d ms)", name, t.Interval().Milliseconds()))
	}
	h.Event("timeout:" + name)
}
