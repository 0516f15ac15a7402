package searchdb

// DB is the narrow contract the ingestion pipeline and the query path use
// against the search engine. Read operations only observe committed state
// and are safe to call while a Writer is open.
type DB interface {
	Exists(signature uint64) (bool, error)
	Signatures(filename string) ([]uint64, error)
	Filenames(prefix string) ([]string, error)
	Query(text string, limit int) ([]string, error)
	GetDocCount() (uint64, error)
	Writer() (Writer, error)
	Close() error
}

// Writer stages mutations and makes them visible on Commit. At most one
// Writer exists per DB at a time; Close releases it and drops anything not
// yet committed.
type Writer interface {
	Upsert(doc Document) error
	Delete(signature uint64) error
	Commit() error
	Close() error
}
