package backend

import (
	"strings"

	"github.com/mfasDa/alice-fast-simulation/internal/shell"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// runBuild executes bin in dir. The working directory is handed to the
// process; the caller's own directory never changes.
func runBuild(r shell.Runner, dir, bin string, args ...string) error {
	if r == nil {
		r = shell.ExecRunner{}
	}
	cmd := shell.Command{Bin: bin, Args: args, Dir: dir}
	utils.PrintDebug("Running build: %s", utils.StyleCommand(cmd.String()))

	res := r.Run(cmd)
	if res.Err != nil {
		return &BuildError{
			WorkDir: dir,
			Cmd:     cmd.String(),
			Output:  strings.TrimSpace(res.Output()),
			Err:     res.Err,
		}
	}
	return nil
}
