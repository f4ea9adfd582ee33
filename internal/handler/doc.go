// Package handler implements the line protocol entity of a wire.
//
// A Handler reads command lines (from a reader.Reader or ProcessInput), runs
// them through a cmdline.Registry and reports results as log lines of the
// form
//
//	KIND(lines):message
//
// OK and NOK results go to stdout; ERR, WARN, MSG, DBG and EVENT lines go to
// stderr. Every line travels as a handler-log-event through the application
// queue, so log calls are safe from any goroutine while all writing happens
// on the dispatch goroutine. Installing an EventSink/LogSink pair diverts
// lines to callbacks instead of the writers.
package handler
