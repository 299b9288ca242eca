package export

import (
	"errors"
	"fmt"
	"os"
)

// WriteError reports a failure to persist a dataset.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write dataset %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsWriteError returns true if err is or wraps a *WriteError.
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}

// WriteDataset replaces the contents of path with body.
//
// The file is truncated, not appended to, so the size after a run depends
// only on body. Parent directories are not created.
func WriteDataset(path string, body []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if _, err := f.Write(body); err != nil {
		_ = f.Close()
		return &WriteError{Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	return nil
}
