// Package provenance stamps generated artifacts with the source revision they
// were produced from.
package provenance

import (
	"fmt"
	"strings"

	"github.com/mfasDa/alice-fast-simulation/internal/shell"
)

// Revision identifies the checked-out source tree.
type Revision struct {
	Branch string
	Commit string
}

// Lookup asks git for the current branch and commit of the repository in dir.
// Unknown values are reported as "unknown" rather than failing the submission.
func Lookup(r shell.Runner, dir string) Revision {
	rev := Revision{Branch: "unknown", Commit: "unknown"}
	if res := r.Run(shell.Command{Bin: "git", Args: []string{"rev-parse", "--abbrev-ref", "HEAD"}, Dir: dir}); res.Err == nil {
		rev.Branch = strings.TrimSpace(res.Stdout)
	}
	if res := r.Run(shell.Command{Bin: "git", Args: []string{"rev-parse", "HEAD"}, Dir: dir}); res.Err == nil {
		rev.Commit = strings.TrimSpace(res.Stdout)
	}
	return rev
}

// Comments renders the header comment block embedded in job scripts and JDL payloads.
func (r Revision) Comments() string {
	return fmt.Sprintf("# This is the startup script \n"+
		"# alice-yale-hfjet \n"+
		"# Generated using branch %s (%s) \n", r.Branch, r.Commit)
}
