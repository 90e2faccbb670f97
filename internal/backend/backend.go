// Package backend provides a unified interface over the compute backends
// simulation jobs are dispatched to: a local HPC cluster (SLURM or PBS), a
// container-based supercomputer and the distributed grid.
package backend

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/shell"
)

// Kind tags the closed set of backend variants.
type Kind string

const (
	KindLocalCluster Kind = "local-cluster"
	KindContainer    Kind = "container"
	KindGrid         Kind = "grid"
)

// Shape describes the resources a submission needs.
type Shape struct {
	Replicas int // total replicas dispatched by this script
}

// SimCommand is one replica's simulation command and its environment.
type SimCommand struct {
	Command   string // task command line
	EnvScript string // environment script name, e.g. powheg_env.sh
	WorkDir   string // directory the task runs in
}

// MPICommand is a fan-out launch of Replicas workers from one script.
type MPICommand struct {
	SimCommand
	Replicas    int
	Offset      int
	LogTemplate string // log path containing the RANK placeholder
}

// BuildRequest describes an environment build of the analysis code.
type BuildRequest struct {
	RepoDir   string
	WorkDir   string
	EnvScript string
}

// Backend is implemented by every backend variant.
type Backend interface {
	// Kind returns the variant tag.
	Kind() Kind

	// SubmitCommand returns the program used to submit an artifact.
	SubmitCommand() string

	// WriteDirectives emits scheduler directives for a job writing its log to logPath.
	WriteDirectives(w io.Writer, bc *config.BatchConfig, shape Shape, logPath string) error

	// WriteSimCommand emits the command line(s) running one replica.
	WriteSimCommand(w io.Writer, sim SimCommand) error

	// WriteSimCommandMPI emits a single launcher line fanning out over all replicas.
	// Returns ErrMPIUnsupported for backends without fan-out.
	WriteSimCommandMPI(w io.Writer, mpi MPICommand) error

	// CleanupFiles lists scratch files to delete after replica has run.
	CleanupFiles(envScript string, replica int) []string

	// RunBuild builds the analysis code in req.WorkDir. A failure is returned
	// as a *BuildError; the caller's working directory is never changed.
	RunBuild(req BuildRequest) error
}

// Options carries what every backend needs besides the environment.
type Options struct {
	RepoDir   string
	Image     string // container image (container backend)
	WorkerBin string // executable launched by srun for MPI fan-out
	Runner    shell.Runner
}

// OptionsFromConfig builds Options from the global configuration.
func OptionsFromConfig(r shell.Runner) Options {
	return Options{
		RepoDir:   config.Global.RepoDir,
		Image:     config.Global.ContainerImage,
		WorkerBin: config.Global.WorkerBin,
		Runner:    r,
	}
}

// LookPathFunc matches exec.LookPath.
type LookPathFunc func(file string) (string, error)

// Detect selects the backend for batch submission. It is evaluated once per run:
// container-supercomputer markers in environ win, then the presence of sbatch,
// then PBS as the fallback.
func Detect(environ []string, lookPath LookPathFunc, opts Options) (Backend, error) {
	if IsContainerSite(environ) {
		return NewContainer(lookupIn(environ), opts)
	}
	return NewLocalCluster(DetectFlavor(lookPath), opts), nil
}

// DetectFromHost runs Detect against the current process environment.
func DetectFromHost(opts Options) (Backend, error) {
	return Detect(os.Environ(), exec.LookPath, opts)
}

// IsContainerSite reports whether any environment key marks the container
// supercomputer.
func IsContainerSite(environ []string) bool {
	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		if strings.Contains(key, siteMarker) {
			return true
		}
	}
	return false
}

func lookupIn(environ []string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		for _, kv := range environ {
			k, v, ok := strings.Cut(kv, "=")
			if ok && k == key {
				return v, true
			}
		}
		return "", false
	}
}
