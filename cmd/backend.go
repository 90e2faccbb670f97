package cmd

import (
	"fmt"
	"strings"

	"github.com/mfasDa/alice-fast-simulation/internal/backend"
	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/shell"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
	"github.com/spf13/cobra"
)

var backendBatchConf string

var backendCmd = &cobra.Command{
	Use:     "backend",
	Aliases: []string{"scheduler"},
	Short:   "Display the detected batch backend",
	Long: `Display the batch backend 'fastsim batch' would use on this host.

Shows the backend kind (local cluster, container supercomputer), the scheduler
flavor or site, the submit tool and, with --batch-conf, how a dedicated queue
is laid out on the site's nodes.`,
	Example: `  fastsim backend                   # Show backend information
  fastsim backend -b batch.yaml     # Include queue layout`,
	Args: cobra.NoArgs,
	RunE: runBackend,
}

func init() {
	backendCmd.Flags().StringVarP(&backendBatchConf, "batch-conf", "b", "", "Batch configuration file (qos, time, sites)")
	rootCmd.AddCommand(backendCmd)
}

func runBackend(cmd *cobra.Command, args []string) error {
	be, err := backend.DetectFromHost(backend.OptionsFromConfig(shell.ExecRunner{}))
	if err != nil {
		utils.PrintMessage("Backend Status: %s", utils.StyleError("Not Configured"))
		utils.PrintMessage("")
		utils.PrintMessage("This looks like a NERSC host, but the environment is incomplete.")
		return err
	}

	// Structured output, no [FSIM] prefix
	fmt.Println("Backend Information:")
	fmt.Printf("  Kind:      %s\n", utils.StyleInfo(string(be.Kind())))
	fmt.Printf("  Submit:    %s\n", utils.StyleCommand(be.SubmitCommand()))

	switch b := be.(type) {
	case *backend.LocalCluster:
		fmt.Printf("  Flavor:    %s\n", utils.StyleName(string(b.Flavor())))
		fmt.Println()
		fmt.Println("Jobs run one replica per job script.")
	case *backend.Container:
		fmt.Printf("  Site:      %s\n", utils.StyleName(b.Site()))
		fmt.Printf("  Scratch:   %s\n", utils.StylePath(b.Scratch()))
		fmt.Printf("  Image:     %s\n", utils.StyleName(config.Global.ContainerImage))
		fmt.Printf("  Worker:    %s\n", utils.StylePath(config.Global.WorkerBin))
		return printQueueLayout(b.Site())
	}
	return nil
}

func printQueueLayout(site string) error {
	fmt.Println()
	if backendBatchConf == "" {
		fmt.Printf("Known sites: %s\n", strings.Join(backend.KnownSites(), ", "))
		return nil
	}
	bc, err := config.LoadBatchConfig(backendBatchConf)
	if err != nil {
		return err
	}
	fmt.Println("Queue Layout:")
	fmt.Printf("  QoS:       %s\n", utils.StyleName(bc.QoS))
	if bc.Shared() {
		fmt.Printf("  Mode:      %s\n", utils.StyleInfo("shared (one job script per replica)"))
		return nil
	}
	capacity, err := backend.Capacity(site, bc.Sites)
	if err != nil {
		fmt.Printf("  Mode:      %s\n", utils.StyleError("dedicated, unknown site"))
		return err
	}
	fmt.Printf("  Mode:      %s\n", utils.StyleInfo("dedicated (MPI fan-out)"))
	fmt.Printf("  Per node:  %s tasks\n", utils.StyleNumber(capacity))
	if bc.Time != "" {
		fmt.Printf("  Time:      %s\n", utils.StyleNumber(bc.Time))
	}
	return nil
}
