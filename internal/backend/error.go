package backend

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrUnknownSite indicates the site has no per-node capacity entry
	ErrUnknownSite = errors.New("unknown site: per-node task capacity undefined")

	// ErrMPIUnsupported indicates the backend cannot fan out one script over many replicas
	ErrMPIUnsupported = errors.New("backend does not support MPI fan-out")

	// ErrEnvironment indicates a required environment variable is missing
	ErrEnvironment = errors.New("environment is not configured correctly")
)

// BuildError represents a failed environment build
type BuildError struct {
	WorkDir string // Directory the build ran in
	Cmd     string // Full command that was executed
	Output  string // Captured output
	Err     error  // Underlying error
}

func (e *BuildError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("build in %s failed (%s): %v\nOutput: %s", e.WorkDir, e.Cmd, e.Err, e.Output)
	}
	return fmt.Sprintf("build in %s failed (%s): %v", e.WorkDir, e.Cmd, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsBuildError checks if an error is a BuildError
func IsBuildError(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}

// SiteError reports a topology lookup for a site without capacity data
type SiteError struct {
	Site  string
	Known []string
}

func (e *SiteError) Error() string {
	return fmt.Sprintf("%v: %q (known sites: %v)", ErrUnknownSite, e.Site, e.Known)
}

func (e *SiteError) Is(target error) bool {
	return target == ErrUnknownSite
}
