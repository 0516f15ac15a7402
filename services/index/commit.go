package index

import (
	"context"

	"github.com/meghashyamc/rabbit/db/searchdb"
	"github.com/meghashyamc/rabbit/logger"
)

// commitOp is one unit of work for the committer: either a converted
// document or the filename of a file that no longer exists.
type commitOp struct {
	doc     *searchdb.Document
	removed string
}

// committer is the only code that mutates the index during a run. It owns
// the writer and applies operations one at a time in arrival order.
type committer struct {
	logger   logger.Logger
	indexer  Indexer
	writer   searchdb.Writer
	stats    *stats
	progress Progress
	interval int
	staged   int
}

// run consumes ops until the channel is closed, then commits once. Interim
// commits happen every interval staged documents when interval is positive;
// a failed interim commit keeps its operations staged for the next one.
func (c *committer) run(ctx context.Context, ops <-chan commitOp) error {
	for op := range ops {
		switch {
		case op.doc != nil:
			c.upsert(*op.doc)
		case op.removed != "":
			c.remove(op.removed)
		}

		if c.interval > 0 && c.staged >= c.interval {
			if err := c.writer.Commit(); err != nil {
				c.logger.Error("interim commit failed", "staged", c.staged, "err", err.Error())
				continue
			}
			c.logger.Info("interim commit", "staged", c.staged)
			c.staged = 0
		}
	}

	if ctx.Err() != nil {
		c.logger.Warn("run cancelled, skipping commit", "staged", c.staged, "err", ctx.Err())
		return ctx.Err()
	}

	if err := c.writer.Commit(); err != nil {
		c.logger.Error("final commit failed", "err", err.Error())
		return err
	}
	c.logger.Info("committed", "staged", c.staged)

	return nil
}

// upsert stages doc, first staging deletes for any older version of the same
// file so that one entry per filename survives the commit.
func (c *committer) upsert(doc searchdb.Document) {
	previous, err := c.indexer.Signatures(doc.Filename)
	if err != nil {
		c.logger.Warn("could not look up previous versions", "path", doc.Filename, "err", err.Error())
	}
	for _, signature := range previous {
		if signature == doc.Signature {
			continue
		}
		if err := c.writer.Delete(signature); err != nil {
			c.logger.Error("could not delete previous version", "path", doc.Filename, "signature", signature, "err", err.Error())
		}
	}

	if err := c.writer.Upsert(doc); err != nil {
		c.stats.failed.Add(1)
		c.logger.Error("could not add document", "path", doc.Filename, "signature", doc.Signature, "err", err.Error())
		return
	}

	c.stats.converted.Add(1)
	c.staged++
	c.progress.OnFileIndexed(doc.Filename)
	c.logger.Debug("add doc success", "path", doc.Filename, "signature", doc.Signature)
}

func (c *committer) remove(filename string) {
	signatures, err := c.indexer.Signatures(filename)
	if err != nil {
		c.logger.Warn("could not look up removed file", "path", filename, "err", err.Error())
		return
	}

	for _, signature := range signatures {
		if err := c.writer.Delete(signature); err != nil {
			c.logger.Error("could not delete removed file", "path", filename, "signature", signature, "err", err.Error())
			return
		}
	}
	if len(signatures) > 0 {
		c.stats.removed.Add(1)
		c.staged++
		c.logger.Info("removed vanished file", "path", filename)
	}
}
