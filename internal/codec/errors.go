package codec

import (
	"errors"
	"fmt"
)

var ErrStorageUnavailable = errors.New("codec: storage unavailable")

// ParseError describes a line that was skipped while decoding.
type ParseError struct {
	Line   int
	Text   string
	Reason error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("codec: line %d: %v", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Reason }

// StorageError reports a failed open, read or write of the events file. It
// matches ErrStorageUnavailable under errors.Is.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("codec: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}
