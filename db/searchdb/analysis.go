package searchdb

import (
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

const bodyAnalyzerName = "body_text"

// Analysis selects the analyzer used for document bodies. It is handed to
// New and becomes part of that index's mapping; nothing is registered
// globally. A nil Config refers to an analyzer bleve already knows by Name.
type Analysis struct {
	Name   string
	Config map[string]any
}

// DefaultAnalysis segments on unicode word boundaries and indexes
// ideographic runs as overlapping bigrams, so scripts without spaces
// between words remain searchable.
func DefaultAnalysis() Analysis {
	return Analysis{
		Name: bodyAnalyzerName,
		Config: map[string]any{
			"type":      custom.Name,
			"tokenizer": unicode.Name,
			"token_filters": []string{
				cjk.WidthName,
				lowercase.Name,
				cjk.BigramName,
			},
		},
	}
}
