package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig controls size-based log rotation.
type RotationConfig struct {
	// MaxSizeMB is the size at which the file is rotated. Zero disables rotation.
	MaxSizeMB int
	// MaxBackups is how many rotated files are kept.
	MaxBackups int
	// Compress gzips rotated files.
	Compress bool
}

// DefaultRotationConfig returns the rotation settings used when the
// configuration file does not override them.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 10, MaxBackups: 3}
}

// RotatingWriter is an io.WriteCloser over a log file that is renamed to
// path.1 (shifting older backups up) once it would grow past the limit.
type RotatingWriter struct {
	mu     sync.Mutex
	path   string
	limit  int64
	keep   int
	gz     bool
	file   *os.File
	size   int64
	gzWait sync.WaitGroup
}

// NewRotatingWriter opens (or creates) the log file at path.
func NewRotatingWriter(path string, config RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		path:  path,
		limit: int64(config.MaxSizeMB) << 20,
		keep:  config.MaxBackups,
		gz:    config.Compress,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

func (rw *RotatingWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(rw.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(rw.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	rw.file = f
	rw.size = info.Size()
	return nil
}

// Write appends p, rotating first if p would push the file past the limit.
// A failed rotation is reported on stderr and the write goes to the
// current file.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, fmt.Errorf("log file %s is closed", rw.path)
	}

	if rw.limit > 0 && rw.size > 0 && rw.size+int64(len(p)) > rw.limit {
		if err := rw.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
		}
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

// rotate is called with mu held.
func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rw.file = nil

	rw.shiftBackups()

	first := rw.backup(1)
	if err := os.Rename(rw.path, first); err != nil {
		if openErr := rw.open(); openErr != nil {
			return fmt.Errorf("failed to rename log file and reopen: %w", openErr)
		}
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	if rw.gz && rw.keep > 0 {
		rw.gzWait.Add(1)
		go func() {
			defer rw.gzWait.Done()
			compress(first)
		}()
	}

	return rw.open()
}

// shiftBackups renames path.N to path.N+1, dropping the oldest.
func (rw *RotatingWriter) shiftBackups() {
	if rw.keep <= 0 {
		_ = os.Remove(rw.backup(1))
		_ = os.Remove(rw.backup(1) + ".gz")
		return
	}

	_ = os.Remove(rw.backup(rw.keep))
	_ = os.Remove(rw.backup(rw.keep) + ".gz")

	for i := rw.keep - 1; i >= 1; i-- {
		for _, ext := range []string{".gz", ""} {
			from := rw.backup(i) + ext
			if _, err := os.Stat(from); err == nil {
				_ = os.Rename(from, rw.backup(i+1)+ext)
				break
			}
		}
	}
}

func (rw *RotatingWriter) backup(n int) string {
	return fmt.Sprintf("%s.%d", rw.path, n)
}

// compress replaces path with path.gz. The original is only removed once the
// compressed copy is complete.
func compress(path string) {
	src, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open %s for compression: %v\n", path, err)
		return
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create %s.gz: %v\n", path, err)
		return
	}

	zw := gzip.NewWriter(dst)
	_, err = io.Copy(zw, src)
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path + ".gz")
		fmt.Fprintf(os.Stderr, "Warning: failed to compress %s: %v\n", path, err)
		return
	}
	_ = os.Remove(path)
}

// Sync flushes the current file.
func (rw *RotatingWriter) Sync() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.file == nil {
		return nil
	}
	return rw.file.Sync()
}

// Close syncs and closes the file and waits for pending compressions.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.gzWait.Wait()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	if err := rw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	err := rw.file.Close()
	rw.file = nil
	return err
}

// Size returns the number of bytes in the current file.
func (rw *RotatingWriter) Size() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.size
}

// Path returns the log file path.
func (rw *RotatingWriter) Path() string {
	return rw.path
}
