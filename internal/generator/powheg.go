package generator

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
)

// ErrPowhegStage is returned for a POWHEG stage the workflow does not implement.
var ErrPowhegStage = errors.New("not implemented for POWHEG stage")

// seedLimit bounds the random seeds handed to POWHEG (2^30).
const seedLimit = 1 << 30

// StageJobs returns how many parallel jobs run in POWHEG stage; stage 4
// (event generation) runs the configured number of jobs.
func StageJobs(stage, jobs int) (int, error) {
	switch stage {
	case 1:
		return 10, nil
	case 2:
		return 20, nil
	case 3:
		return 10, nil
	case 4:
		return jobs, nil
	}
	return 0, fmt.Errorf("%w %d", ErrPowhegStage, stage)
}

// ParallelInputFileName names the POWHEG input card of a parallel stage.
// Stage 1 runs several grid iterations, each with its own card.
func ParallelInputFileName(stage, xgridIter int) string {
	if stage == 1 {
		return fmt.Sprintf("powheg_Stage_%d_XGridIter_%d.input", stage, xgridIter)
	}
	return fmt.Sprintf("powheg_Stage_%d.input", stage)
}

// WriteSeeds writes n random seeds, one per line, to path.
func WriteSeeds(path string, n int, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create seed file %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%d\n", rng.Intn(seedLimit+1))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
