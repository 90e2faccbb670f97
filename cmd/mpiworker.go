package cmd

import (
	"os"

	"github.com/mfasDa/alice-fast-simulation/internal/mpiworker"
	"github.com/mfasDa/alice-fast-simulation/internal/shell"
	"github.com/spf13/cobra"
)

var workerParams mpiworker.Params

var mpiWorkerCmd = &cobra.Command{
	Use:    "mpi-worker <command>",
	Short:  "Run one rank of an MPI job script",
	Hidden: true,
	Long: `Run the replica belonging to this MPI rank. Launched by srun from an
aggregate job script; the rank is read from SLURM_PROCID, PMI_RANK or
OMPI_COMM_WORLD_RANK. The job id is rank plus --offset and replaces RANK in
the command and the log path. Ranks beyond --njobs exit immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runMPIWorker,
}

func init() {
	f := mpiWorkerCmd.Flags()
	f.IntVar(&workerParams.NJobs, "njobs", 0, "Number of replicas")
	f.IntVar(&workerParams.Offset, "offset", 0, "Job id of rank 0")
	f.StringVar(&workerParams.RunScript, "run-script", "", "Container run wrapper")
	f.StringVar(&workerParams.EnvScript, "env", "", "Environment script")
	f.StringVar(&workerParams.WorkDir, "workdir", "", "Train directory")
	f.StringVar(&workerParams.LogTemplate, "log", "", "Log path containing RANK")
	for _, name := range []string{"njobs", "run-script", "env", "workdir", "log"} {
		_ = mpiWorkerCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(mpiWorkerCmd)
}

func runMPIWorker(cmd *cobra.Command, args []string) error {
	rank, err := mpiworker.RankFromEnv(os.LookupEnv)
	if err != nil {
		return err
	}
	p := workerParams
	p.Task = args[0]
	_, err = mpiworker.Run(p, rank, shell.ExecRunner{})
	return err
}
