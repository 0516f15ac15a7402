package main

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressReporter shows a spinner counting scanned files. The total is
// unknown because the walk is lazy.
type progressReporter struct {
	bar     *progressbar.ProgressBar
	indexed atomic.Int64
}

func newProgressReporter(w io.Writer, quiet bool) *progressReporter {
	if quiet {
		return &progressReporter{}
	}

	return &progressReporter{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Indexing files"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		),
	}
}

func (p *progressReporter) OnFileScanned(path string) {
	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *progressReporter) OnFileIndexed(path string) {
	indexed := p.indexed.Add(1)
	if p.bar != nil && indexed%100 == 0 {
		p.bar.Describe(fmt.Sprintf("Indexing files (%d converted)", indexed))
	}
}

func (p *progressReporter) Finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
