package searchdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/meghashyamc/rabbit/logger"
	bolt "go.etcd.io/bbolt"
)

const filenamesPageSize = 1000

// openTimeout bounds the wait for the index lock held by another process.
const openTimeout = time.Second

const (
	indexFieldFilename   = "filename"
	indexFieldSignature  = "signature"
	indexFieldBody       = "body"
	indexFieldModifiedAt = "modified_at"
	indexFieldFormatTag  = "format_tag"
)

type BleveDB struct {
	indexPath  string
	logger     logger.Logger
	index      bleve.Index
	writerHeld atomic.Bool
}

type bleveDocument struct {
	Filename   string    `json:"filename"`
	Signature  string    `json:"signature"`
	Body       string    `json:"body"`
	ModifiedAt time.Time `json:"modified_at"`
	FormatTag  int       `json:"format_tag"`
}

// New opens the index at indexPath, creating it when absent. An empty
// indexPath gives an in-memory index.
func New(logger logger.Logger, indexPath string, analysis Analysis) (*BleveDB, error) {
	mapping, err := createIndexMapping(analysis)
	if err != nil {
		logger.Error("could not create index mapping", "err", err.Error())
		return nil, err
	}

	var index bleve.Index
	if indexPath == "" {
		index, err = bleve.NewMemOnly(mapping)
	} else {
		if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
			logger.Error("could not create index directory", "path", indexPath, "err", err.Error())
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
		storeConfig := map[string]interface{}{"bolt_timeout": openTimeout.String()}
		index, err = bleve.OpenUsing(indexPath, storeConfig)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			index, err = bleve.NewUsing(indexPath, mapping, bleve.Config.DefaultIndexType, bleve.Config.DefaultKVStore, storeConfig)
		}
	}
	if errors.Is(err, bolt.ErrTimeout) {
		logger.Error("index is held by another process", "path", indexPath, "err", err.Error())
		return nil, &IndexError{Op: "open", Err: fmt.Errorf("%w: %s", ErrIndexInUse, indexPath)}
	}
	if err != nil {
		logger.Error("could not open index", "path", indexPath, "err", err.Error())
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	return &BleveDB{indexPath: indexPath, logger: logger, index: index}, nil
}

func createIndexMapping(analysis Analysis) (mapping.IndexMapping, error) {

	if analysis.Name == "" {
		analysis = DefaultAnalysis()
	}

	indexMapping := bleve.NewIndexMapping()
	if analysis.Config != nil {
		if err := indexMapping.AddCustomAnalyzer(analysis.Name, analysis.Config); err != nil {
			return nil, fmt.Errorf("failed to add analyzer %s: %w", analysis.Name, err)
		}
	}
	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false

	// Filename field - stored verbatim, matched exactly
	filenameFieldMapping := bleve.NewTextFieldMapping()
	filenameFieldMapping.Analyzer = keyword.Name
	filenameFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldFilename, filenameFieldMapping)

	signatureFieldMapping := bleve.NewTextFieldMapping()
	signatureFieldMapping.Analyzer = keyword.Name
	signatureFieldMapping.Store = false
	signatureFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldSignature, signatureFieldMapping)

	// Body field - analyzed for full-text search, never stored
	bodyFieldMapping := bleve.NewTextFieldMapping()
	bodyFieldMapping.Analyzer = analysis.Name
	bodyFieldMapping.Store = false
	bodyFieldMapping.Index = true
	docMapping.AddFieldMappingsAt(indexFieldBody, bodyFieldMapping)

	modifiedAtFieldMapping := bleve.NewDateTimeFieldMapping()
	modifiedAtFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldModifiedAt, modifiedAtFieldMapping)

	formatTagFieldMapping := bleve.NewNumericFieldMapping()
	formatTagFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldFormatTag, formatTagFieldMapping)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = analysis.Name
	indexMapping.DefaultField = indexFieldBody

	return indexMapping, nil
}

func (b *BleveDB) Exists(signature uint64) (bool, error) {
	searchRequest := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery([]string{signatureID(signature)}), 1, 0, false)

	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("could not look up signature", "signature", signature, "err", err.Error())
		return false, &IndexError{Op: "lookup", Signature: signature, Err: err}
	}

	return searchResult.Total > 0, nil
}

// Signatures lists the committed signatures recorded for filename.
func (b *BleveDB) Signatures(filename string) ([]uint64, error) {
	termQuery := bleve.NewTermQuery(filename)
	termQuery.SetField(indexFieldFilename)

	searchRequest := bleve.NewSearchRequestOptions(termQuery, filenamesPageSize, 0, false)
	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("could not look up filename", "filename", filename, "err", err.Error())
		return nil, &IndexError{Op: "lookup", Err: err}
	}

	signatures := make([]uint64, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		signature, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			b.logger.Warn("skipping document with malformed id", "id", hit.ID)
			continue
		}
		signatures = append(signatures, signature)
	}

	return signatures, nil
}

// Filenames lists every committed filename starting with prefix.
func (b *BleveDB) Filenames(prefix string) ([]string, error) {
	prefixQuery := bleve.NewPrefixQuery(prefix)
	prefixQuery.SetField(indexFieldFilename)

	seen := make(map[string]struct{})
	var filenames []string
	for from := 0; ; from += filenamesPageSize {
		searchRequest := bleve.NewSearchRequestOptions(prefixQuery, filenamesPageSize, from, false)
		searchRequest.Fields = []string{indexFieldFilename}
		searchRequest.SortBy([]string{"_id"})

		searchResult, err := b.index.Search(searchRequest)
		if err != nil {
			b.logger.Error("could not list filenames", "prefix", prefix, "err", err.Error())
			return nil, &IndexError{Op: "list", Err: err}
		}

		for _, hit := range searchResult.Hits {
			filename, ok := hit.Fields[indexFieldFilename].(string)
			if !ok {
				continue
			}
			if _, dup := seen[filename]; dup {
				continue
			}
			seen[filename] = struct{}{}
			filenames = append(filenames, filename)
		}

		if len(searchResult.Hits) < filenamesPageSize {
			break
		}
	}

	return filenames, nil
}

// Query parses text with the query-string grammar, searching document bodies
// by default, and returns up to limit filenames, most relevant first.
func (b *BleveDB) Query(text string, limit int) ([]string, error) {
	start := time.Now()

	queryStringQuery := bleve.NewQueryStringQuery(text)
	if _, err := queryStringQuery.Parse(); err != nil {
		b.logger.Warn("could not parse query", "query", text, "err", err.Error())
		return nil, &QueryError{Query: text, Err: err}
	}

	searchRequest := bleve.NewSearchRequestOptions(queryStringQuery, limit, 0, false)
	searchRequest.Fields = []string{indexFieldFilename}

	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("search failed", "query", text, "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	filenames := make([]string, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		if filename, ok := hit.Fields[indexFieldFilename].(string); ok {
			filenames = append(filenames, filename)
		}
	}
	b.logger.Debug("search finished", "query", text, "hits", len(filenames), "total", searchResult.Total, "took", time.Since(start).String())

	return filenames, nil
}

func (b *BleveDB) GetDocCount() (uint64, error) {
	return b.index.DocCount()
}

// Writer hands out the single mutating handle for this index.
func (b *BleveDB) Writer() (Writer, error) {
	if !b.writerHeld.CompareAndSwap(false, true) {
		return nil, ErrWriterBusy
	}

	return &bleveWriter{db: b, batch: b.index.NewBatch()}, nil
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}

type bleveWriter struct {
	db     *BleveDB
	batch  *bleve.Batch
	closed bool
}

func (w *bleveWriter) Upsert(doc Document) error {
	if w.closed {
		return &IndexError{Op: "upsert", Signature: doc.Signature, Err: errors.New("writer is closed")}
	}

	id := signatureID(doc.Signature)
	bleveDoc := bleveDocument{
		Filename:   doc.Filename,
		Signature:  id,
		Body:       doc.Body,
		ModifiedAt: doc.ModifiedAt,
		FormatTag:  doc.FormatTag,
	}
	if err := w.batch.Index(id, bleveDoc); err != nil {
		w.db.logger.Error("could not index document", "filename", doc.Filename, "err", err.Error())
		return &IndexError{Op: "upsert", Signature: doc.Signature, Err: err}
	}

	return nil
}

func (w *bleveWriter) Delete(signature uint64) error {
	if w.closed {
		return &IndexError{Op: "delete", Signature: signature, Err: errors.New("writer is closed")}
	}

	w.batch.Delete(signatureID(signature))
	return nil
}

// Commit applies everything staged since the previous commit as one batch.
func (w *bleveWriter) Commit() error {
	if w.closed {
		return &IndexError{Op: "commit", Err: errors.New("writer is closed")}
	}
	if w.batch.Size() == 0 {
		return nil
	}

	if err := w.db.index.Batch(w.batch); err != nil {
		w.db.logger.Error("could not commit batch", "operations", w.batch.Size(), "err", err.Error())
		return &IndexError{Op: "commit", Err: err}
	}
	w.batch.Reset()

	return nil
}

func (w *bleveWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.batch.Reset()
	w.db.writerHeld.Store(false)

	return nil
}

func signatureID(signature uint64) string {
	return strconv.FormatUint(signature, 10)
}
