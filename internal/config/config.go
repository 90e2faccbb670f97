package config

import (
	"os"
)

const VERSION = "1.1.0"

// Config holds global application settings
type Config struct {
	Debug   bool
	Version string

	// RepoDir holds the simulation sources, macros and helper scripts
	// (nersc/shifterrun.sh, nersc/shifterbuild.sh, validation scripts).
	RepoDir string

	// WorkerBin is the executable srun launches for MPI fan-out.
	WorkerBin string

	ContainerImage string // shifter image for the container backend
	GridRoot       string // remote user tree root, e.g. /alice/cern.ch/user
	CopyAttempts   int    // attempts per remote copy before giving up
	SubmitJob      bool   // false: write artifacts but never call the submit tool
}

// Global holds the singleton configuration instance
var Global Config

// LoadDefaults resets Global to built-in defaults. The repository directory
// defaults to the current working directory.
func LoadDefaults(executablePath string) {
	repo, err := os.Getwd()
	if err != nil {
		repo = "."
	}

	Global = Config{
		Debug:          false,
		Version:        VERSION,
		RepoDir:        repo,
		WorkerBin:      executablePath,
		ContainerImage: "docker:mfasel/cc7-alice:latest",
		GridRoot:       "/alice/cern.ch/user",
		CopyAttempts:   3,
		SubmitJob:      true,
	}
}
