package sheet

import (
	"errors"
	"fmt"
)

// ErrLoad is matched by errors.Is for every LoadError.
var ErrLoad = errors.New("load failed")

// LoadError reports a spreadsheet that could not be turned into a table.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := "load " + e.Path + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrLoad}
	}

	return []error{ErrLoad, e.Err}
}

func loadErr(path string, err error, format string, args ...any) *LoadError {
	return &LoadError{Path: path, Reason: fmt.Sprintf(format, args...), Err: err}
}
