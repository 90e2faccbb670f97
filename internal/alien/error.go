package alien

import (
	"errors"
	"fmt"
)

// ErrCopyFailed marks a copy that did not land after all attempts.
var ErrCopyFailed = errors.New("grid copy failed")

// CopyError reports a copy abandoned after Attempts tries.
type CopyError struct {
	Source      string
	Destination string
	Attempts    int
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("after %d attempts could not copy %s to %s", e.Attempts, e.Source, e.Destination)
}

func (e *CopyError) Is(target error) bool { return target == ErrCopyFailed }

// IsCopyError checks if an error is a CopyError
func IsCopyError(err error) bool {
	var ce *CopyError
	return errors.As(err, &ce)
}
