package cmd

import (
	"os/exec"

	"github.com/mfasDa/alice-fast-simulation/internal/alien"
	"github.com/mfasDa/alice-fast-simulation/internal/backend"
	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/generator"
	"github.com/mfasDa/alice-fast-simulation/internal/grid"
	"github.com/mfasDa/alice-fast-simulation/internal/provenance"
	"github.com/mfasDa/alice-fast-simulation/internal/shell"
	"github.com/mfasDa/alice-fast-simulation/internal/train"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
	"github.com/spf13/cobra"
)

var (
	gridUserConf    string
	gridUpdate      bool
	gridOffline     bool
	gridMerge       string
	gridDownload    string
	gridStage       int
	oldPowhegInit   string
	gridPowhegStage int
)

var gridCmd = &cobra.Command{
	Use:   "grid <config.yaml>",
	Short: "Submit, merge or download a train on the ALICE grid",
	Long: `Run one grid workflow for the simulation described by config.yaml.

Without --merge or --download a new train is created and one processing job
is submitted per pT-hard bin. --merge submits the next merging stage of an
existing train and --download copies its merged results into the local
working area. Trains are referenced by timestamp or by "last".`,
	Example: `  fastsim grid sim.yaml
  fastsim grid sim.yaml --offline
  fastsim grid sim.yaml --merge last
  fastsim grid sim.yaml --download 1600000000 --stage 1`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: yamlFileCompletion,
	RunE:              runGrid,
}

func init() {
	gridCmd.Flags().StringVarP(&gridUserConf, "user-conf", "u", "userConf.yaml", "User configuration file")
	gridCmd.Flags().BoolVar(&gridUpdate, "update", false, "Overwrite files that already exist on the grid")
	gridCmd.Flags().BoolVar(&gridOffline, "offline", false, "Prepare everything locally without touching the grid")
	gridCmd.Flags().StringVar(&gridMerge, "merge", "", "Submit merging jobs for a train (timestamp or 'last')")
	gridCmd.Flags().StringVar(&gridDownload, "download", "", "Download results of a train (timestamp or 'last')")
	gridCmd.Flags().IntVar(&gridStage, "stage", -1, "Merging stage (-1 detects it)")
	gridCmd.Flags().StringVar(&oldPowhegInit, "old-powheg-init", "", "Folder under data/ with a previous POWHEG initialisation")
	gridCmd.Flags().IntVar(&gridPowhegStage, "powheg-stage", 0, "POWHEG stage (0 or 4)")
	gridCmd.MarkFlagsMutuallyExclusive("merge", "download")
	rootCmd.AddCommand(gridCmd)
}

func runGrid(cmd *cobra.Command, args []string) error {
	sim, err := config.LoadSimConfig(args[0])
	if err != nil {
		return err
	}
	user, err := config.LoadUserConfig(gridUserConf)
	if err != nil {
		return err
	}
	if !gridOffline {
		if err := grid.CheckEnvironment(exec.LookPath); err != nil {
			utils.PrintHint("Source the ALICE environment and run %s first", utils.StyleCommand("alien-token-init"))
			return err
		}
	}

	runner := shell.ExecRunner{}
	d := &grid.Driver{
		FS:      alien.New(runner),
		Backend: backend.NewGrid(),
		Inputs:  &generator.ScriptInputGenerator{Runner: runner, RepoDir: config.Global.RepoDir},
		Sim:     sim,
		Remote:  user.GridHome(config.Global.GridRoot),
		Local:   user.LocalPath,
		WorkDir: config.Global.RepoDir,
		Staging: alien.Staging{
			Offline:  gridOffline,
			Update:   gridUpdate,
			Attempts: config.Global.CopyAttempts,
		},
		Comments: provenance.Lookup(runner, config.Global.RepoDir).Comments(),
	}
	utils.PrintDebug("Grid home: %s", utils.StylePath(d.Remote))

	switch {
	case gridMerge != "":
		name, err := train.Resolve(gridMerge, sim.Gen, sim.Proc, d.ListTrains)
		if err != nil {
			return err
		}
		return d.SubmitMerging(name, gridStage)

	case gridDownload != "":
		name, err := train.Resolve(gridDownload, sim.Gen, sim.Proc, d.ListTrains)
		if err != nil {
			return err
		}
		report, err := d.Download(name, gridStage)
		if report != nil {
			utils.PrintMessage("Downloaded %s file(s), skipped %s, failed %s",
				utils.StyleNumber(len(report.Downloaded)),
				utils.StyleNumber(len(report.Skipped)),
				utils.StyleNumber(len(report.Failed)))
		}
		return err
	}

	report, err := d.SubmitProcessing(grid.ProcessingOptions{
		OldPowhegInit: oldPowhegInit,
		PowhegStage:   gridPowhegStage,
	})
	if report != nil {
		utils.PrintNote("Train %s (%s bin(s))", utils.StyleName(report.Train), utils.StyleNumber(report.Bins))
	}
	return err
}
