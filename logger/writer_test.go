package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDailyWriterRotatesOnDayChange(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()

	current := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	w, err := NewDailyWriter(dir, "test.log")
	assert.NoError(err, "could not create daily writer")
	defer w.Close()

	w.now = func() time.Time { return current }
	assert.NoError(w.rotate(current))

	_, err = w.Write([]byte("first\n"))
	assert.NoError(err)
	assert.Equal(filepath.Join(dir, "test.log.2026-03-01"), w.Path())

	current = current.Add(2 * time.Minute)
	_, err = w.Write([]byte("second\n"))
	assert.NoError(err)
	assert.Equal(filepath.Join(dir, "test.log.2026-03-02"), w.Path())

	first, err := os.ReadFile(filepath.Join(dir, "test.log.2026-03-01"))
	assert.NoError(err)
	assert.Equal("first\n", string(first))

	second, err := os.ReadFile(filepath.Join(dir, "test.log.2026-03-02"))
	assert.NoError(err)
	assert.Equal("second\n", string(second))
}

func TestNewFileLogger(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()

	log, closer, err := NewFile(dir, "debug")
	assert.NoError(err, "could not create file logger")
	log.Info("begin", "root", "/tmp")
	assert.NoError(closer.Close())

	entries, err := os.ReadDir(dir)
	assert.NoError(err)
	assert.Len(entries, 1)

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	assert.NoError(err)
	assert.Contains(string(content), `"msg":"begin"`)
	assert.Contains(string(content), `"root":"/tmp"`)
}
