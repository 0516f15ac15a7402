package index

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Report summarises one ingestion run.
type Report struct {
	Root      string        `json:"root"`
	StartedAt time.Time     `json:"started_at"`
	Scanned   int64         `json:"scanned"`
	Skipped   int64         `json:"skipped"`
	Converted int64         `json:"converted"`
	Failed    int64         `json:"failed"`
	Removed   int64         `json:"removed"`
	Elapsed   time.Duration `json:"elapsed"`
}

func (r Report) String() string {
	return fmt.Sprintf("scanned=%d skipped=%d converted=%d failed=%d removed=%d elapsed=%s",
		r.Scanned, r.Skipped, r.Converted, r.Failed, r.Removed, r.Elapsed.Round(time.Millisecond))
}

// stats holds the counters updated concurrently during a run.
type stats struct {
	scanned   atomic.Int64
	skipped   atomic.Int64
	converted atomic.Int64
	failed    atomic.Int64
	removed   atomic.Int64
}

func (s *stats) report(root string, startedAt time.Time) Report {
	return Report{
		Root:      root,
		StartedAt: startedAt,
		Scanned:   s.scanned.Load(),
		Skipped:   s.skipped.Load(),
		Converted: s.converted.Load(),
		Failed:    s.failed.Load(),
		Removed:   s.removed.Load(),
		Elapsed:   time.Since(startedAt),
	}
}

// Progress receives per-file events while a run is in flight. Calls may come
// from several goroutines at once.
type Progress interface {
	OnFileScanned(path string)
	OnFileIndexed(path string)
}

type noProgress struct{}

func (noProgress) OnFileScanned(string) {}
func (noProgress) OnFileIndexed(string) {}
