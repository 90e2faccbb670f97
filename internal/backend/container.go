package backend

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/generator"
)

const (
	// siteMarker appears in at least one environment key on the container supercomputer.
	siteMarker = "NERSC"

	envSite    = "NERSC_HOST"
	envScratch = "CSCRATCH"

	// knlSite requires the KNL node constraint for dedicated jobs.
	knlSite = "cori"

	licenses = "cscratch1,project"
)

// Container runs jobs inside a shifter image on a supercomputer and can fan
// out many replicas from one script via srun.
type Container struct {
	site    string
	scratch string
	opts    Options
}

// NewContainer reads the site name and scratch area from lookup.
func NewContainer(lookup func(string) (string, bool), opts Options) (*Container, error) {
	site, ok := lookup(envSite)
	if !ok || site == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrEnvironment, envSite)
	}
	scratch, ok := lookup(envScratch)
	if !ok || scratch == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrEnvironment, envScratch)
	}
	return &Container{site: site, scratch: scratch, opts: opts}, nil
}

func (c *Container) Kind() Kind { return KindContainer }

// Site returns the host site name.
func (c *Container) Site() string { return c.site }

// Scratch returns the scratch area holding environment scripts.
func (c *Container) Scratch() string { return c.scratch }

func (c *Container) SubmitCommand() string { return "sbatch" }

func (c *Container) WriteDirectives(w io.Writer, bc *config.BatchConfig, shape Shape, logPath string) error {
	if bc == nil {
		return config.ErrMissingBatchConfig
	}
	var lines []string
	if bc.QoS != "" {
		lines = append(lines, "--qos="+bc.QoS)
	}
	if bc.Shared() {
		lines = append(lines, "--ntasks=1", "--cpus-per-task=1")
	} else {
		capacity, err := Capacity(c.site, bc.Sites)
		if err != nil {
			return err
		}
		lines = append(lines,
			fmt.Sprintf("--nodes=%d", NodeCount(shape.Replicas, capacity)),
			fmt.Sprintf("--tasks-per-node=%d", capacity))
		if c.site == knlSite {
			lines = append(lines, "--constraint=knl")
		}
	}
	lines = append(lines,
		"--output="+logPath,
		"--image="+c.opts.Image,
		"--license="+licenses,
		"--time="+bc.Time)

	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "#SBATCH %s\n", l); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) WriteSimCommand(w io.Writer, sim SimCommand) error {
	_, err := fmt.Fprintf(w, "shifter %s %s %s \"%s\"\n",
		c.runScript(), c.envPath(sim.EnvScript), sim.WorkDir, sim.Command)
	return err
}

// WriteSimCommandMPI launches the hidden mpi-worker subcommand once per rank.
func (c *Container) WriteSimCommandMPI(w io.Writer, mpi MPICommand) error {
	_, err := fmt.Fprintf(w,
		"srun shifter %s mpi-worker --njobs %d --offset %d --run-script %s --env %s --workdir %s --log %s \"%s\"\n",
		c.opts.WorkerBin, mpi.Replicas, mpi.Offset, c.runScript(),
		c.envPath(mpi.EnvScript), mpi.WorkDir, mpi.LogTemplate, mpi.Command)
	return err
}

func (c *Container) CleanupFiles(envScript string, replica int) []string {
	return generator.CleanupFiles(envScript, replica)
}

func (c *Container) RunBuild(req BuildRequest) error {
	return runBuild(c.opts.Runner, req.WorkDir,
		"shifter", "--image="+c.opts.Image,
		filepath.Join(req.RepoDir, "nersc", "shifterbuild.sh"),
		c.envPath(req.EnvScript), req.WorkDir)
}

func (c *Container) runScript() string {
	return filepath.Join(c.opts.RepoDir, "nersc", "shifterrun.sh")
}

func (c *Container) envPath(envScript string) string {
	return filepath.Join(c.scratch, envScript)
}

// KnownSites lists the sites of the built-in capacity table.
func KnownSites() []string {
	sites := make([]string, 0, len(defaultCapacity))
	for s := range defaultCapacity {
		sites = append(sites, s)
	}
	sort.Strings(sites)
	return sites
}

