package jobscript

import (
	"errors"
	"fmt"
)

// ErrSubmission marks a failed call to the backend's submit tool.
var ErrSubmission = errors.New("submission failed")

// SubmissionError carries the script and the submit tool's output.
type SubmissionError struct {
	Script string
	Tool   string
	Output string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s %s: %v\nOutput: %s", e.Tool, e.Script, e.Err, e.Output)
	}
	return fmt.Sprintf("%s %s: %v", e.Tool, e.Script, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmission }
