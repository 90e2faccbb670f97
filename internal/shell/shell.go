// Package shell runs the external programs the orchestrator drives:
// scheduler submit tools, the grid file-system commands, git and build scripts.
package shell

import (
	"fmt"
	"strings"

	"github.com/gvallee/go_exec/pkg/advexec"

	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// Result is the captured outcome of one external command.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Output returns stdout followed by stderr, trimmed.
func (r Result) Output() string {
	return strings.TrimSpace(r.Stdout + r.Stderr)
}

// Command describes one invocation. Dir is the working directory of the child
// process; the caller's working directory is never changed.
type Command struct {
	Bin  string
	Args []string
	Dir  string
	Env  []string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Bin
	}
	return c.Bin + " " + strings.Join(c.Args, " ")
}

// Runner executes commands. The exit status is the only structured feedback.
type Runner interface {
	Run(cmd Command) Result
}

// ExecRunner runs commands on the local host.
type ExecRunner struct{}

// Run executes cmd and waits for it to finish.
func (ExecRunner) Run(cmd Command) Result {
	utils.PrintDebug("Executing: %s", utils.StyleCommand(cmd.String()))

	var c advexec.Advcmd
	c.BinPath = cmd.Bin
	c.CmdArgs = append(c.CmdArgs, cmd.Args...)
	c.ExecDir = cmd.Dir
	c.Env = cmd.Env

	res := c.Run()
	return Result{Stdout: res.Stdout, Stderr: res.Stderr, Err: res.Err}
}

// Bash builds a command that runs line through bash -c.
func Bash(line string) Command {
	return Command{Bin: "/bin/bash", Args: []string{"-c", line}}
}

// MustSucceed converts a failed result into an error naming the command.
func MustSucceed(cmd Command, res Result) error {
	if res.Err == nil {
		return nil
	}
	if out := res.Output(); out != "" {
		return fmt.Errorf("%s: %w\nOutput: %s", cmd.String(), res.Err, out)
	}
	return fmt.Errorf("%s: %w", cmd.String(), res.Err)
}
