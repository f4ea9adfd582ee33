package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestNewRotatingWriter(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "test.log")

		rw, err := NewRotatingWriter(path, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer func() { _ = rw.Close() }()

		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("log file was not created at %s", path)
		}
		if rw.Path() != path {
			t.Errorf("Path() = %q, want %q", rw.Path(), path)
		}
	})

	t.Run("appends to existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.log")
		if err := os.WriteFile(path, []byte("before\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		rw, err := NewRotatingWriter(path, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		if rw.Size() != int64(len("before\n")) {
			t.Errorf("Size() = %d, want %d", rw.Size(), len("before\n"))
		}
		if _, err := rw.Write([]byte("after\n")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		_ = rw.Close()

		content, _ := os.ReadFile(path)
		if string(content) != "before\nafter\n" {
			t.Errorf("content = %q", content)
		}
	})
}

// newSmallWriter returns a writer whose limit is a few bytes so tests can
// rotate without writing megabytes.
func newSmallWriter(t *testing.T, limit int64, backups int, compress bool) (*RotatingWriter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: backups, Compress: compress})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.limit = limit
	return rw, path
}

func TestRotatingWriterRotation(t *testing.T) {
	rw, path := newSmallWriter(t, 10, 2, false)

	for _, line := range []string{"aaaaaaaa\n", "bbbbbbbb\n", "cccccccc\n", "dddddddd\n"} {
		if _, err := rw.Write([]byte(line)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	want := map[string]string{
		path:        "dddddddd\n",
		path + ".1": "cccccccc\n",
		path + ".2": "bbbbbbbb\n",
	}
	for p, content := range want {
		got, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("missing %s: %v", filepath.Base(p), err)
			continue
		}
		if string(got) != content {
			t.Errorf("%s = %q, want %q", filepath.Base(p), got, content)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("backup beyond MaxBackups was kept")
	}
}

func TestRotatingWriterNoBackups(t *testing.T) {
	rw, path := newSmallWriter(t, 10, 0, false)

	_, _ = rw.Write([]byte("aaaaaaaa\n"))
	_, _ = rw.Write([]byte("bbbbbbbb\n"))
	_ = rw.Close()

	if _, err := os.Stat(path + ".2"); !os.IsNotExist(err) {
		t.Error("unexpected second backup")
	}
	got, _ := os.ReadFile(path)
	if string(got) != "bbbbbbbb\n" {
		t.Errorf("current file = %q", got)
	}
}

func TestRotatingWriterCompression(t *testing.T) {
	rw, path := newSmallWriter(t, 10, 1, true)

	_, _ = rw.Write([]byte("aaaaaaaa\n"))
	_, _ = rw.Write([]byte("bbbbbbbb\n"))
	// Close waits for the background compression.
	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("uncompressed backup should be removed after compression")
	}

	f, err := os.Open(path + ".1.gz")
	if err != nil {
		t.Fatalf("compressed backup missing: %v", err)
	}
	defer func() { _ = f.Close() }()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader failed: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read compressed backup: %v", err)
	}
	if string(data) != "aaaaaaaa\n" {
		t.Errorf("compressed backup = %q", data)
	}
}

func TestRotatingWriterConcurrency(t *testing.T) {
	rw, path := newSmallWriter(t, 1<<20, 3, false)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_, _ = rw.Write([]byte("line\n"))
			}
		}()
	}
	wg.Wait()
	_ = rw.Close()

	content, _ := os.ReadFile(path)
	if got := strings.Count(string(content), "line\n"); got != 400 {
		t.Errorf("got %d lines, want 400", got)
	}
}

func TestRotatingWriterClose(t *testing.T) {
	rw, _ := newSmallWriter(t, 0, 0, false)

	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if _, err := rw.Write([]byte("x")); err == nil {
		t.Error("Write after Close should fail")
	}
	if err := rw.Sync(); err != nil {
		t.Errorf("Sync after Close = %v, want nil", err)
	}
}

func TestNewLoggerWithRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webwire.log")
	logger, err := NewLoggerWithRotation(path, LevelInfo, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLoggerWithRotation failed: %v", err)
	}
	logger.WithComponent("handler").Info("ready")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if !strings.Contains(string(content), `"component":"handler"`) {
		t.Errorf("log missing component attribute: %s", content)
	}
}

func TestDefaultRotationConfig(t *testing.T) {
	cfg := DefaultRotationConfig()
	if cfg.MaxSizeMB != 10 || cfg.MaxBackups != 3 || cfg.Compress {
		t.Errorf("DefaultRotationConfig() = %+v", cfg)
	}
}
