package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showPath bool

// configKeys is the list of known configuration keys for shell completion
var configKeys = []string{
	"repo_dir",
	"worker_bin",
	"container_image",
	"grid_root",
	"copy_attempts",
	"submit_job",
}

// configKeysCompletion returns config keys for shell completion
func configKeysCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return configKeys, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// getConfigEnvVars returns the environment overrides of every config key, sorted.
func getConfigEnvVars() []string {
	vars := make([]string, 0, len(configKeys))
	for _, key := range configKeys {
		vars = append(vars, config.EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	sort.Strings(vars)
	return vars
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show fastsim configuration",
	Long: `Show fastsim application settings.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (FASTSIM_*)
  3. User config file (~/.config/fastsim/config.yaml or ~/.fastsim/config.yaml)
  4. System config file (/etc/fastsim/config.yaml)
  5. Defaults

The user configuration (username, local_path) and the simulation and batch
configurations are separate files passed to 'batch' and 'grid'.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		inUse := viper.ConfigFileUsed()
		if showPath {
			if inUse == "" {
				utils.PrintError("No config file in use")
				os.Exit(1)
			}
			fmt.Println(inUse)
			return
		}

		fmt.Println(utils.StyleTitle("Config File:"))
		if inUse != "" {
			fmt.Printf("  %s %s\n", inUse, utils.StyleSuccess("← in use"))
		} else {
			fmt.Printf("  %s\n", utils.StyleWarning("No config file found (defaults in effect)"))
		}
		fmt.Println()

		fmt.Println(utils.StyleTitle("Current Configuration:"))
		fmt.Printf("  repo_dir:        %s\n", config.Global.RepoDir)
		fmt.Printf("  worker_bin:      %s\n", config.Global.WorkerBin)
		fmt.Printf("  container_image: %s\n", config.Global.ContainerImage)
		fmt.Printf("  grid_root:       %s\n", config.Global.GridRoot)
		fmt.Printf("  copy_attempts:   %d\n", config.Global.CopyAttempts)
		submitJobConfig := viper.GetBool("submit_job")
		if submitJobConfig && !config.Global.SubmitJob {
			fmt.Printf("  submit_job:      %v (disabled by --local)\n", config.Global.SubmitJob)
		} else {
			fmt.Printf("  submit_job:      %v\n", config.Global.SubmitJob)
		}
		fmt.Println()

		fmt.Println(utils.StyleTitle("Environment Variable Overrides:"))
		hasEnvOverrides := false
		for _, envVar := range getConfigEnvVars() {
			if val := os.Getenv(envVar); val != "" {
				fmt.Printf("  %s=%s\n", envVar, val)
				hasEnvOverrides = true
			}
		}
		if !hasEnvOverrides {
			fmt.Printf("  %s\n", utils.StyleInfo("none"))
		}
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value.

Examples:
  fastsim config get repo_dir
  fastsim config get copy_attempts`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := viper.Get(args[0])
		if value == nil {
			return fmt.Errorf("unknown config key: %s", args[0])
		}
		fmt.Println(value)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Check that the repository holds the helper scripts and the worker binary exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		valid := true
		check := func(ok bool, what, path string) {
			if ok {
				if !utils.QuietMode {
					fmt.Printf("%s %s: %s\n", utils.StyleSuccess("✓"), what, path)
				}
				return
			}
			fmt.Printf("%s %s not found: %s\n", utils.StyleError("✗"), what, path)
			valid = false
		}

		repo := config.Global.RepoDir
		check(utils.DirExists(repo), "Repository", repo)
		for _, script := range []string{"nersc/shifterrun.sh", "nersc/shifterbuild.sh", "alifastsim/GeneratePowhegInput.py"} {
			p := filepath.Join(repo, script)
			check(utils.FileExists(p), "Helper script", p)
		}
		check(utils.FileExists(config.Global.WorkerBin), "Worker binary", config.Global.WorkerBin)

		if attempts := viper.GetInt("copy_attempts"); attempts > 0 {
			if !utils.QuietMode {
				fmt.Printf("%s Copy attempts: %d\n", utils.StyleSuccess("✓"), attempts)
			}
		} else {
			fmt.Printf("%s Copy attempts must be > 0: %d\n", utils.StyleError("✗"), attempts)
			valid = false
		}

		if !utils.QuietMode {
			fmt.Println()
		}
		if !valid {
			utils.PrintError("Configuration has errors")
			return &ExitError{Code: 1}
		}
		if !utils.QuietMode {
			utils.PrintSuccess("Configuration is valid")
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&showPath, "path", false, "Show only the config file path")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configValidateCmd)

	rootCmd.AddCommand(configCmd)
}
