package backend

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/generator"
)

// Flavor is the batch system of a local cluster.
type Flavor string

const (
	FlavorSLURM Flavor = "SLURM"
	FlavorPBS   Flavor = "PBS"
)

// DetectFlavor returns SLURM when sbatch is on the PATH, PBS otherwise.
func DetectFlavor(lookPath LookPathFunc) Flavor {
	if _, err := lookPath("sbatch"); err == nil {
		return FlavorSLURM
	}
	return FlavorPBS
}

// LocalCluster runs jobs on a SLURM or PBS cluster, one replica per job.
type LocalCluster struct {
	flavor Flavor
	opts   Options
}

// NewLocalCluster creates a local-cluster backend of the given flavor.
func NewLocalCluster(flavor Flavor, opts Options) *LocalCluster {
	return &LocalCluster{flavor: flavor, opts: opts}
}

func (c *LocalCluster) Kind() Kind { return KindLocalCluster }

// Flavor returns the detected batch system.
func (c *LocalCluster) Flavor() Flavor { return c.flavor }

func (c *LocalCluster) SubmitCommand() string {
	if c.flavor == FlavorSLURM {
		return "sbatch"
	}
	return "qsub"
}

func (c *LocalCluster) WriteDirectives(w io.Writer, _ *config.BatchConfig, _ Shape, logPath string) error {
	var err error
	switch c.flavor {
	case FlavorSLURM:
		_, err = fmt.Fprintf(w, "#SBATCH --output=%s\n#SBATCH -N 1\n#SBATCH -n 1\n#SBATCH -c 1\n", logPath)
	default:
		_, err = fmt.Fprintf(w, "#PBS -o %s\n#PBS -j oe\n", logPath)
	}
	return err
}

func (c *LocalCluster) WriteSimCommand(w io.Writer, sim SimCommand) error {
	_, err := fmt.Fprintf(w, "source $HOME/%s\n%s\n", sim.EnvScript, sim.Command)
	return err
}

func (c *LocalCluster) WriteSimCommandMPI(io.Writer, MPICommand) error {
	return fmt.Errorf("%s cluster: %w", c.flavor, ErrMPIUnsupported)
}

func (c *LocalCluster) CleanupFiles(envScript string, replica int) []string {
	return generator.CleanupFiles(envScript, replica)
}

func (c *LocalCluster) RunBuild(req BuildRequest) error {
	return runBuild(c.opts.Runner, req.WorkDir,
		filepath.Join(req.RepoDir, "nersc", "shifterbuild.sh"),
		filepath.Join(os.Getenv("HOME"), req.EnvScript), req.WorkDir)
}
