package cmdline

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/webwire/internal/errors"
)

// Responses collects the outcome of one command line: OK/NOK responses that
// are joined into the reply, and reasons that are logged as errors.
type Responses struct {
	responses []string
	reasons   []string
}

// OK adds an "OK:<msg>" response.
func (r *Responses) OK(msg string) {
	r.responses = append(r.responses, "OK:"+msg)
}

// OKf is OK with formatting.
func (r *Responses) OKf(format string, args ...any) {
	r.OK(fmt.Sprintf(format, args...))
}

// NOK adds a "NOK:<msg>" response.
func (r *Responses) NOK(msg string) {
	r.responses = append(r.responses, "NOK:"+msg)
}

// Err adds a reason.
func (r *Responses) Err(reason string) {
	r.reasons = append(r.reasons, reason)
}

// Fail records err against cmd: a binding failure adds its three diagnostic
// lines, anything else its message, followed by "NOK:<cmd>:<win>".
func (r *Responses) Fail(cmd string, win int, err error) {
	var be *BindError
	if errors.As(err, &be) {
		r.reasons = append(r.reasons, be.Lines()...)
	} else {
		r.Err(cmd + ": " + err.Error())
	}
	r.NOK(fmt.Sprintf("%s:%d", cmd, win))
}

// Joined returns the responses separated by ", ".
func (r *Responses) Joined() string {
	return strings.Join(r.responses, ", ")
}

// Responses returns the responses in order.
func (r *Responses) Responses() []string {
	return append([]string(nil), r.responses...)
}

// Reasons returns the collected reasons in order.
func (r *Responses) Reasons() []string {
	return append([]string(nil), r.reasons...)
}

// Succeeded reports whether the joined reply starts with "OK:".
func (r *Responses) Succeeded() bool {
	return strings.HasPrefix(r.Joined(), "OK:")
}

// Reset clears both lists.
func (r *Responses) Reset() {
	r.responses = r.responses[:0]
	r.reasons = r.reasons[:0]
}
