// Package logging provides structured logging for webwire.
//
// [Logger] wraps log/slog with a JSON handler. Child loggers carry persistent
// attributes, typically the component and the entity handle:
//
//	logger, err := logging.NewLogger(cfg.Logging.File, cfg.Logging.Level)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithComponent("app").With("app_id", id)
//	log.Debug("dispatch", "event", ev.Name())
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"dispatch","component":"app","app_id":"...","event":"timeout"}
//
// # Log Rotation
//
// [NewLoggerWithRotation] writes through a [RotatingWriter]. When the file
// would exceed MaxSizeMB it is renamed to file.1, older backups shift up, and
// at most MaxBackups are kept, gzipped when Compress is set.
//
// # Event Tracing
//
// The dispatcher logs every routed event at DEBUG only when its name
// matches the configured [EventFilter] globs. An empty filter traces nothing.
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewWriterLogger] on a bytes.Buffer
// to assert on entries.
package logging
