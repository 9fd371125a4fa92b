package snapshot

import (
	"errors"
	"fmt"
)

// ErrMalformedSnapshot matches any *MalformedSnapshotError via errors.Is.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// MalformedSnapshotError reports input that failed structural validation.
// Nothing is applied when it is returned.
type MalformedSnapshotError struct {
	Reason string
	Err    error
}

func (e *MalformedSnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed snapshot: %s: %v", e.Reason, e.Err)
	}
	return "malformed snapshot: " + e.Reason
}

func (e *MalformedSnapshotError) Is(target error) bool {
	return target == ErrMalformedSnapshot
}

func (e *MalformedSnapshotError) Unwrap() error {
	return e.Err
}

func malformed(err error, format string, args ...interface{}) error {
	return &MalformedSnapshotError{Reason: fmt.Sprintf(format, args...), Err: err}
}
