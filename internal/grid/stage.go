package grid

import (
	"fmt"
	"strings"
)

// Lister is the part of the grid file system stage detection needs.
type Lister interface {
	Exists(path string) bool
	List(path string) ([]string, error)
}

// DetermineMergingStage returns the next merge stage of a train (bin): the
// number of stage_* entries under <root>/<trainBin>. It returns -1 when the
// directory or its output subdirectory does not exist.
func DetermineMergingStage(fs Lister, root, trainBin string) int {
	dir := root + "/" + trainBin
	if !fs.Exists(dir) {
		return -1
	}
	entries, err := fs.List(dir)
	if err != nil {
		return -1
	}
	hasOutput := false
	stages := 0
	for _, e := range entries {
		switch {
		case e == "output":
			hasOutput = true
		case strings.HasPrefix(e, "stage_") && len(e) > len("stage_"):
			stages++
		}
	}
	if !hasOutput {
		return -1
	}
	return stages
}

// StageInput returns the remote directory a merge at stage reads: the
// train output for stage 0, else the previous stage's output.
func StageInput(trainDir string, stage int) string {
	if stage == 0 {
		return trainDir + "/output"
	}
	return fmt.Sprintf("%s/stage_%d/output", trainDir, stage-1)
}

// StageDir returns the directory of merge stage.
func StageDir(trainDir string, stage int) string {
	return fmt.Sprintf("%s/stage_%d", trainDir, stage)
}
