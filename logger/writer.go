package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

// DailyWriter is an io.Writer that starts a new file every calendar day.
// Files are named <name>.<YYYY-MM-DD> inside dir.
type DailyWriter struct {
	dir  string
	name string
	now  func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

func NewDailyWriter(dir string, name string) (*DailyWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &DailyWriter{dir: dir, name: name, now: time.Now}
	if err := w.openFor(w.now()); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Format(dayLayout) != w.day {
		if err := w.rotate(now); err != nil {
			// Keep writing to the old file rather than dropping the entry.
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	return w.file.Write(p)
}

// Path returns the file currently written to.
func (w *DailyWriter) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.pathFor(w.day)
}

func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	_ = w.file.Sync()
	err := w.file.Close()
	w.file = nil

	return err
}

func (w *DailyWriter) rotate(now time.Time) error {
	previous := w.file
	if err := w.openFor(now); err != nil {
		return err
	}
	if previous != nil {
		_ = previous.Close()
	}

	return nil
}

func (w *DailyWriter) openFor(now time.Time) error {
	day := now.Format(dayLayout)
	f, err := os.OpenFile(w.pathFor(day), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	w.file = f
	w.day = day

	return nil
}

func (w *DailyWriter) pathFor(day string) string {
	return filepath.Join(w.dir, w.name+"."+day)
}
