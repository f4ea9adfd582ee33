package cmdline

import (
	"fmt"
	"slices"
	"strings"
)

// Call is one invocation of a registered command.
type Call struct {
	Name string
	Args []string
	Resp *Responses
}

// Bind binds the call's arguments for window 0. On failure the diagnostics
// and "NOK:<cmd>:0" are recorded and false is returned.
func (c *Call) Bind(params ...Param) bool {
	return c.BindWin(0, params...)
}

// BindWin is Bind with the window id used in the NOK response.
func (c *Call) BindWin(win int, params ...Param) bool {
	if err := Bind(c.Name, params, c.Args); err != nil {
		c.Resp.Fail(c.Name, win, err)
		return false
	}
	return true
}

// CommandFunc implements a command. It reports through c.Resp.
type CommandFunc func(c *Call)

// Command is a registered command.
type Command struct {
	Name    string
	Summary string
	Run     CommandFunc
}

// Registry maps lower-case command names to their implementations.
type Registry struct {
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds or replaces a command. Names are matched case-insensitively.
func (r *Registry) Register(name, summary string, fn CommandFunc) {
	name = strings.ToLower(name)
	r.commands[name] = Command{Name: name, Summary: summary, Run: fn}
}

// Lookup finds a command by name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Execute tokenizes line and runs the command it names.
func (r *Registry) Execute(line string) *Responses {
	resp := &Responses{}

	cmd, args, ok := Parse(line)
	if !ok {
		resp.Err("Does not compute")
		resp.NOK(strings.TrimSpace(line))
		return resp
	}

	c, found := r.commands[cmd]
	if !found {
		resp.Err(fmt.Sprintf("Unknown command '%s'", cmd))
		resp.NOK(cmd + ":unknown:Unknown command")
		return resp
	}

	c.Run(&Call{Name: cmd, Args: args, Resp: resp})
	return resp
}
