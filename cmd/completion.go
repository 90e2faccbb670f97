package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// detectShell picks the completion dialect from $SHELL, defaulting to bash.
func detectShell(shellEnv string) string {
	name := strings.ToLower(filepath.Base(shellEnv))
	for _, s := range []string{"fish", "zsh", "pwsh", "powershell"} {
		if strings.Contains(name, s) {
			if s == "pwsh" {
				return "powershell"
			}
			return s
		}
	}
	return "bash"
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate the shell completion script for fastsim. Without an argument
the shell is taken from $SHELL.

  $ source <(fastsim completion bash)
  $ fastsim completion zsh > "${fpath[1]}/_fastsim"
  $ fastsim completion fish > ~/.config/fish/completions/fastsim.fish
  PS> fastsim completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := detectShell(os.Getenv("SHELL"))
		if len(args) > 0 {
			shell = args[0]
		}

		// Only long options are offered; short ones are restored afterwards.
		saved := stripShorthands(cmd.Root())
		defer restoreShorthands(cmd.Root(), saved)

		root := cmd.Root()
		switch shell {
		case "bash":
			return root.GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return root.GenZshCompletion(os.Stdout)
		case "fish":
			return root.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return fmt.Errorf("unsupported shell %q", shell)
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// visitFlags calls fn on every flag of every command below root.
func visitFlags(root *cobra.Command, fn func(c *cobra.Command, f *pflag.Flag)) {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.LocalFlags().VisitAll(func(f *pflag.Flag) { fn(c, f) })
		for _, child := range c.Commands() {
			walk(child)
		}
	}
	walk(root)
}

func flagKey(c *cobra.Command, f *pflag.Flag) string {
	return c.CommandPath() + " --" + f.Name
}

func stripShorthands(root *cobra.Command) map[string]string {
	saved := make(map[string]string)
	visitFlags(root, func(c *cobra.Command, f *pflag.Flag) {
		if f.Shorthand != "" {
			saved[flagKey(c, f)] = f.Shorthand
			f.Shorthand = ""
		}
	})
	return saved
}

func restoreShorthands(root *cobra.Command, saved map[string]string) {
	visitFlags(root, func(c *cobra.Command, f *pflag.Flag) {
		if s, ok := saved[flagKey(c, f)]; ok {
			f.Shorthand = s
		}
	})
}
