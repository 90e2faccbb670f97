package generator

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/mfasDa/alice-fast-simulation/internal/shell"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// InputGenerator writes generator input cards derived from the simulation config.
type InputGenerator interface {
	// PowhegInput writes the POWHEG card for stage (0 = single-stage run) into dest.
	// xgridIter is only meaningful for stage 1.
	PowhegInput(config, dest string, events, stage, xgridIter int) error
	// HerwigInput writes herwig.in into dest.
	HerwigInput(config, dest string, events int) error
}

// ScriptInputGenerator runs the input-card scripts shipped in the repository.
type ScriptInputGenerator struct {
	Runner  shell.Runner
	RepoDir string
}

// PowhegInput runs GeneratePowhegInput.py.
func (g *ScriptInputGenerator) PowhegInput(config, dest string, events, stage, xgridIter int) error {
	args := []string{config, dest, strconv.Itoa(events), strconv.Itoa(stage)}
	if stage == 1 {
		args = append(args, strconv.Itoa(xgridIter))
	}
	return g.run("GeneratePowhegInput.py", args)
}

// HerwigInput runs GenerateHerwigInput.py.
func (g *ScriptInputGenerator) HerwigInput(config, dest string, events int) error {
	return g.run("GenerateHerwigInput.py", []string{config, dest, strconv.Itoa(events)})
}

func (g *ScriptInputGenerator) run(script string, args []string) error {
	cmd := shell.Command{
		Bin:  filepath.Join(g.RepoDir, "alifastsim", script),
		Args: args,
		Dir:  g.RepoDir,
	}
	utils.PrintDebug("Generating input with %s", utils.StyleCommand(cmd.String()))
	if err := shell.MustSucceed(cmd, g.Runner.Run(cmd)); err != nil {
		return fmt.Errorf("input generation failed: %w", err)
	}
	return nil
}
