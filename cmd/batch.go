package cmd

import (
	"errors"

	"github.com/mfasDa/alice-fast-simulation/internal/backend"
	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/generator"
	"github.com/mfasDa/alice-fast-simulation/internal/jobscript"
	"github.com/mfasDa/alice-fast-simulation/internal/localbatch"
	"github.com/mfasDa/alice-fast-simulation/internal/provenance"
	"github.com/mfasDa/alice-fast-simulation/internal/shell"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
	"github.com/spf13/cobra"
)

var (
	batchUserConf    string
	batchConf        string
	continuePowheg   string
	batchPowhegStage int
	batchXGridIter   int
)

var batchCmd = &cobra.Command{
	Use:   "batch <config.yaml>",
	Short: "Submit a train to the local batch system",
	Long: `Create a new train (or continue a POWHEG train) in the local working area
and submit its jobs to the batch system of this host.

The backend is detected once per run: NERSC hosts use shifter containers,
otherwise SLURM (sbatch) is used when available and PBS (qsub) as a fallback.
On NERSC with a dedicated queue all jobs of a submission run inside one
MPI job script.`,
	Example: `  fastsim batch sim.yaml -b batch.yaml
  fastsim batch sim.yaml -b batch.yaml --powheg-stage 1 --xgrid-iter 2
  fastsim batch sim.yaml -b batch.yaml --continue-powheg 1600000000 --powheg-stage 4`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: yamlFileCompletion,
	RunE:              runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchUserConf, "user-conf", "u", "userConf.yaml", "User configuration file")
	batchCmd.Flags().StringVarP(&batchConf, "batch-conf", "b", "", "Batch configuration file (qos, time)")
	batchCmd.Flags().StringVar(&continuePowheg, "continue-powheg", "", "Timestamp of an existing POWHEG train to continue")
	batchCmd.Flags().IntVar(&batchPowhegStage, "powheg-stage", 1, "POWHEG parallel stage (1-4)")
	batchCmd.Flags().IntVar(&batchXGridIter, "xgrid-iter", 1, "POWHEG stage 1 grid iteration")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	bc, err := config.LoadBatchConfig(batchConf)
	if err != nil {
		if errors.Is(err, config.ErrMissingBatchConfig) {
			utils.PrintHint("Pass the batch configuration with %s", utils.StyleCommand("--batch-conf"))
		}
		return err
	}
	sim, err := config.LoadSimConfig(args[0])
	if err != nil {
		return err
	}
	user, err := config.LoadUserConfig(batchUserConf)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("continue-powheg") && !generator.IsPowheg(sim.Gen) {
		utils.PrintWarning("--continue-powheg is ignored for generator %s", utils.StyleName(sim.Gen))
		continuePowheg = ""
	}

	runner := shell.ExecRunner{}
	be, err := backend.DetectFromHost(backend.OptionsFromConfig(runner))
	if err != nil {
		return err
	}
	utils.PrintDebug("Using %s backend, submitting with %s", be.Kind(), utils.StyleCommand(be.SubmitCommand()))

	sub := &localbatch.Submitter{
		Backend: be,
		Emitter: &jobscript.Emitter{
			Backend: be,
			Runner:  runner,
			Batch:   bc,
			Header:  provenance.Lookup(runner, config.Global.RepoDir).Comments(),
			DryRun:  !config.Global.SubmitJob,
		},
		Inputs:  &generator.ScriptInputGenerator{Runner: runner, RepoDir: config.Global.RepoDir},
		Sim:     sim,
		Local:   user.LocalPath,
		RepoDir: config.Global.RepoDir,
	}

	report, err := sub.Submit(localbatch.Options{
		Continue:    continuePowheg,
		PowhegStage: batchPowhegStage,
		XGridIter:   batchXGridIter,
	})
	if err != nil {
		return err
	}
	for _, a := range report.Artifacts {
		utils.PrintDebug("%s: %s %s", a.State, utils.StylePath(a.Script), a.Output)
	}
	utils.PrintNote("Train directory: %s", utils.StylePath(report.Dir))
	return nil
}

// yamlFileCompletion restricts positional completion to YAML files.
func yamlFileCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}
