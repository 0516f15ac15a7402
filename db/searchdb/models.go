package searchdb

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrWriterBusy = errors.New("index writer already in use")
	ErrIndex      = errors.New("index operation failed")
	ErrQuery      = errors.New("invalid query")
	ErrIndexInUse = errors.New("index is in use by another process")
)

// Document is the unit handed to the index. Signature is its only identity.
type Document struct {
	Filename   string
	Signature  uint64
	Body       string
	ModifiedAt time.Time
	FormatTag  int
}

type IndexError struct {
	Op        string
	Signature uint64
	Err       error
}

func (e *IndexError) Error() string {
	if e.Signature == 0 {
		return fmt.Sprintf("index %s failed: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("index %s failed for signature %d: %s", e.Op, e.Signature, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}

type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("could not parse query %q: %s", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}
