// Package mpiworker is the per-rank side of an MPI fan-out: every rank
// launched by srun derives its own job id, log file and cleanup list.
package mpiworker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mfasDa/alice-fast-simulation/internal/generator"
	"github.com/mfasDa/alice-fast-simulation/internal/shell"
	"github.com/mfasDa/alice-fast-simulation/internal/task"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// ErrNoRank is returned when no launcher exported a rank.
var ErrNoRank = errors.New("no MPI rank in environment")

// rankVars are probed in order.
var rankVars = []string{"SLURM_PROCID", "PMI_RANK", "OMPI_COMM_WORLD_RANK"}

// Params are the worker's command-line parameters.
type Params struct {
	NJobs       int
	Offset      int
	RunScript   string // container run wrapper
	EnvScript   string // environment script path
	WorkDir     string
	LogTemplate string // log path containing RANK
	Task        string // command containing RANK
}

// Result is what one rank did.
type Result struct {
	Rank    int
	JobID   int
	Skipped bool // rank beyond the job count
	Log     string
	Removed []string
}

// RankFromEnv reads the rank exported by the parallel launcher.
func RankFromEnv(lookup func(string) (string, bool)) (int, error) {
	for _, key := range rankVars {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		rank, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
		}
		return rank, nil
	}
	return 0, ErrNoRank
}

// Run executes the task for rank. Ranks at or beyond NJobs return at once.
func Run(p Params, rank int, r shell.Runner) (Result, error) {
	res := Result{Rank: rank}
	if rank >= p.NJobs {
		res.Skipped = true
		utils.PrintDebug("Rank %d has no job (%d jobs)", rank, p.NJobs)
		return res, nil
	}

	res.JobID = rank + p.Offset
	id := fmt.Sprintf("%04d", res.JobID)
	command := task.Substitute(p.Task, id)
	res.Log = task.Substitute(p.LogTemplate, id)

	utils.PrintMessage("Running %s, logging to %s", utils.StyleCommand(command), utils.StylePath(res.Log))
	cmd := shell.Command{Bin: p.RunScript, Args: []string{p.EnvScript, p.WorkDir, command}, Dir: p.WorkDir}
	out := r.Run(cmd)

	if err := writeLog(res.Log, out); err != nil {
		utils.PrintWarning("Failed to write log %s: %v", res.Log, err)
	}

	for _, f := range generator.CleanupFiles(filepath.Base(p.EnvScript), res.JobID) {
		path := filepath.Join(p.WorkDir, f)
		if err := os.Remove(path); err == nil {
			res.Removed = append(res.Removed, path)
		}
	}

	if out.Err != nil {
		return res, fmt.Errorf("job %d: %w", res.JobID, out.Err)
	}
	utils.PrintSuccess("Worker %d done", rank)
	return res, nil
}

func writeLog(path string, out shell.Result) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, utils.PermFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(out.Stdout); err != nil {
		return err
	}
	_, err = f.WriteString(out.Stderr)
	return err
}
