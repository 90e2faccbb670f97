package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	localMode bool
)

// ExitError carries a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

var rootCmd = &cobra.Command{
	Use:           "fastsim",
	Short:         "FastSim: submit, merge and download ALICE fast-simulation trains on batch farms and the grid.",
	Version:       config.VERSION,
	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		exe, err := os.Executable()
		if err != nil {
			utils.PrintError("Failed to determine executable path: %v", err)
			os.Exit(1)
		}

		// Step 1: Load defaults (repository, worker binary, grid root)
		config.LoadDefaults(exe)

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Load values from Viper into Global config
		config.LoadFromViper()

		// Step 4: Apply command-line flags (highest priority)
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("FastSim Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("Executable: %s", exe)
			utils.PrintDebug("Repository: %s", config.Global.RepoDir)
			utils.PrintDebug("Container Image: %s", config.Global.ContainerImage)
			utils.PrintDebug("Grid Root: %s", config.Global.GridRoot)
		}

		if localMode {
			config.Global.SubmitJob = false
			utils.PrintDebug("Local mode enabled (job submission disabled)")
		}
	},
}

// exitCode maps a command error to the process exit status. A missing batch
// configuration is a usage error; everything else, including a missing train, is 1.
func exitCode(err error) int {
	var ee *ExitError
	switch {
	case errors.As(err, &ee):
		return ee.Code
	case errors.Is(err, config.ErrMissingBatchConfig):
		return 2
	}
	return 1
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced.
		var ee *ExitError
		if !errors.As(err, &ee) || ee.Err != nil {
			utils.PrintError("%v", err)
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVar(&localMode, "local", false, "Write job scripts without submitting them")
}
