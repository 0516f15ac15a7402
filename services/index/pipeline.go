package index

import (
	"context"
	"errors"

	"github.com/meghashyamc/rabbit/db/searchdb"
	"github.com/meghashyamc/rabbit/services/convert"
)

// processFile turns one candidate into a document for the committer. Every
// failure stays local to the candidate.
func (s *Service) processFile(ctx context.Context, candidate CandidateFile, stats *stats, ops chan<- commitOp) {
	signature := Signature(candidate.Path, candidate.ModifiedAt)

	exists, err := s.indexer.Exists(signature)
	if err != nil {
		s.logger.Warn("could not check signature, reprocessing file", "path", candidate.Path, "err", err.Error())
	}
	if exists {
		stats.skipped.Add(1)
		return
	}

	tag, err := s.classify(candidate.Path)
	if err != nil {
		if errors.Is(err, convert.ErrUnsupported) {
			s.logger.Debug("skipping unsupported file", "path", candidate.Path)
			return
		}
		stats.failed.Add(1)
		s.logger.Error("could not classify file", "path", candidate.Path, "err", err.Error())
		return
	}

	body, err := s.converter.Convert(ctx, tag, candidate.Path)
	if err != nil {
		stats.failed.Add(1)
		s.logger.Error("could not convert file", "path", candidate.Path, "format", tag.String(), "err", err.Error())
		return
	}

	ops <- commitOp{doc: &searchdb.Document{
		Filename:   candidate.Path,
		Signature:  signature,
		Body:       body,
		ModifiedAt: candidate.ModifiedAt,
		FormatTag:  int(tag),
	}}
}
