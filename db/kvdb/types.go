package kvdb

import (
	"errors"
	"fmt"
)

const (
	// RequestsBucket maps an asynchronous index request ID to its status.
	RequestsBucket = "requests"
	// RunsBucket maps an indexed root directory to its most recent report.
	RunsBucket = "runs"
)

var buckets = []string{RequestsBucket, RunsBucket}

var (
	ErrNotFound   = errors.New("key not found")
	ErrInvalidKey = errors.New("invalid key")
)

type InvalidKeyError struct {
	Key    string
	Reason string
}
type NotFoundError struct {
	Bucket string
	Key    string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %s: %s", e.Key, e.Reason)
}

func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("key not found in %s: %s", e.Bucket, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
