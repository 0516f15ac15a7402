package search

import (
	"errors"
	"strings"

	"github.com/meghashyamc/rabbit/logger"
)

const defaultLimit = 100

var ErrEmptyQuery = errors.New("query is empty")

// Querier runs a query against the committed index
type Querier interface {
	Query(text string, limit int) ([]string, error)
}

type Result struct {
	FilePath string `json:"file_path"`
}

type Service struct {
	logger  logger.Logger
	querier Querier
	limit   int
}

func New(logger logger.Logger, querier Querier, limit int) *Service {
	if limit <= 0 {
		limit = defaultLimit
	}

	return &Service{
		logger:  logger,
		querier: querier,
		limit:   limit,
	}
}

// Search returns the filenames of the best matching documents, at most the
// configured limit and in relevance order. Syntax errors come back as
// *searchdb.QueryError.
func (s *Service) Search(text string) ([]Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	filenames, err := s.querier.Query(text, s.limit)
	if err != nil {
		s.logger.Warn("search failed", "query", text, "err", err.Error())
		return nil, err
	}
	s.logger.Info("search", "query", text, "results", len(filenames))

	results := make([]Result, 0, len(filenames))
	for _, filename := range filenames {
		results = append(results, Result{FilePath: filename})
	}

	return results, nil
}
