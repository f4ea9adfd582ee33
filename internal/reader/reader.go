// Package reader provides an entity that reads lines from an io.Reader on
// its own goroutine and emits them as events.
package reader

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/Iron-Ham/webwire/internal/app"
	"github.com/Iron-Ham/webwire/internal/event"
	"github.com/Iron-Ham/webwire/internal/variant"
)

// Events emitted by a Reader.
const (
	// HaveLineName carries one line without its terminator.
	HaveLineName = "readline-have-line"
	// EOFName is emitted once when the input ends.
	EOFName = "readline-eof"
	// ErrorName carries the read error message.
	ErrorName = "readline-error"
)

// MaxLineLength is the longest line accepted. A longer line ends reading
// with ErrorName.
const MaxLineLength = 10 * 1024 * 1024

// Reader is an entity that turns input lines into events.
type Reader struct {
	*app.Entity
	src io.Reader

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a reader entity under parent. Call Start to begin reading.
func New(a *app.Application, parent event.Handle, src io.Reader) *Reader {
	r := &Reader{
		Entity: a.NewEntity(parent),
		src:    src,
	}
	r.OnDestroy(r.Close)
	return r
}

type scanned struct {
	line string
	err  error
	eof  bool
}

// Start launches the reading goroutine. Starting twice is a no-op.
func (r *Reader) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	lines := make(chan scanned)
	go r.scan(ctx, lines)
	go r.forward(ctx, lines, r.done)
}

// scan does the blocking reads. It exits after its current read once ctx is
// done; a read blocked forever (a silent stdin) is abandoned with it.
func (r *Reader) scan(ctx context.Context, out chan<- scanned) {
	sc := bufio.NewScanner(r.src)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineLength)

	send := func(s scanned) bool {
		select {
		case out <- s:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for sc.Scan() {
		if !send(scanned{line: sc.Text()}) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		send(scanned{err: err})
		return
	}
	send(scanned{eof: true})
}

func (r *Reader) forward(ctx context.Context, in <-chan scanned, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-in:
			switch {
			case s.err != nil:
				r.Emit(ErrorName, variant.String(s.err.Error()))
				return
			case s.eof:
				r.Emit(EOFName)
				return
			default:
				r.Emit(HaveLineName, variant.String(s.line))
			}
		}
	}
}

// Close stops emitting and waits for the forwarding goroutine.
func (r *Reader) Close() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
