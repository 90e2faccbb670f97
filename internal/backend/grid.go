package backend

import (
	"fmt"
	"io"

	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/generator"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// Grid dispatches jobs through JDL descriptions submitted with alien_submit.
// Its directive and command writers produce JDL fields rather than shell lines.
type Grid struct{}

// NewGrid creates the grid backend.
func NewGrid() *Grid { return &Grid{} }

func (g *Grid) Kind() Kind { return KindGrid }

func (g *Grid) SubmitCommand() string { return "alien_submit" }

// WriteDirectives writes the JDL TTL field; bc.Time holds the TTL in seconds.
func (g *Grid) WriteDirectives(w io.Writer, bc *config.BatchConfig, _ Shape, _ string) error {
	if bc == nil {
		return config.ErrMissingBatchConfig
	}
	_, err := fmt.Fprintf(w, "TTL = \"%s\"; \n", bc.Time)
	return err
}

// WriteSimCommand writes the JDL Arguments field.
func (g *Grid) WriteSimCommand(w io.Writer, sim SimCommand) error {
	_, err := fmt.Fprintf(w, "Arguments = \"%s\"; \n", sim.Command)
	return err
}

func (g *Grid) WriteSimCommandMPI(io.Writer, MPICommand) error {
	return fmt.Errorf("grid: %w", ErrMPIUnsupported)
}

func (g *Grid) CleanupFiles(envScript string, replica int) []string {
	return generator.CleanupFiles(envScript, replica)
}

// RunBuild is a no-op: grid workers load prebuilt packages.
func (g *Grid) RunBuild(req BuildRequest) error {
	utils.PrintDebug("Grid backend skips the build in %s", utils.StylePath(req.WorkDir))
	return nil
}
