package processor

import (
	"errors"
	"fmt"
)

// ErrNothingSelected is returned by Upload when no entry is selected. No connection is attempted.
var ErrNothingSelected = errors.New("nothing to upload")

// TransferError is returned when reading a local file or streaming it to the server fails
type TransferError struct {
	Op     string // "open" or "store"
	Path   string // local full path
	Remote string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s %s -> %s: %v", e.Op, e.Path, e.Remote, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
