package grid

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/generator"
	"github.com/mfasDa/alice-fast-simulation/internal/train"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// resultPattern matches the result files of every sub-job directory.
const resultPattern = "*/AnalysisResults*.root"

// resolveStage returns stage, or detects it for trainBin when stage < 0.
func (d *Driver) resolveStage(name, trainBin string, stage int) (int, error) {
	if stage < 0 {
		stage = DetermineMergingStage(d.FS, d.Remote, trainBin)
	}
	if stage < 0 {
		return -1, fmt.Errorf("%w %s", ErrNoResults, name)
	}
	return stage, nil
}

// SubmitMerging submits one merge stage for every pT-hard bin of train name.
// A negative stage is detected per bin. A bin without results aborts.
func (d *Driver) SubmitMerging(name string, stage int) error {
	if err := d.Sim.RequireGrid(); err != nil {
		return err
	}
	aliphysics := config.ResolveAliPhysics(d.Sim.Grid.AliPhysics, d.now())

	for _, bin := range train.Bins(d.Sim.PtHard) {
		trainBin := bin.Path(name)
		s, err := d.resolveStage(name, trainBin, stage)
		if err != nil {
			return err
		}
		if s == 0 {
			utils.PrintMessage("Merging stage determined to be 0 (i.e. first merging stage)")
		} else {
			utils.PrintMessage("Merging stage determined to be %s", utils.StyleNumber(s))
		}
		if err := d.submitMergingBin(name, trainBin, s, aliphysics); err != nil {
			return &BinError{Bin: bin.String(), Err: err}
		}
	}
	utils.PrintSuccess("Merging jobs for %s submitted", name)
	return nil
}

func (d *Driver) submitMergingBin(name, trainBin string, stage int, aliphysics string) error {
	trainDir := d.Remote + "/" + trainBin
	previous := StageInput(trainDir, stage)
	dest := StageDir(trainDir, stage)
	local := filepath.Join(d.Local, trainBin, fmt.Sprintf("stage_%d", stage))

	if !d.Staging.Offline && d.FS.Exists(dest) {
		utils.PrintWarning("Removing existing %s", utils.StylePath(dest))
		if err := d.FS.DeleteDir(dest); err != nil {
			return err
		}
	}

	jdlPath := d.path(fmt.Sprintf("FastSim_Merging_%s_%s.jdl", d.Sim.Gen, d.Sim.Proc))
	xmlPath := d.path(fmt.Sprintf("FastSim_Merging_%s_%s_stage_%d.xml", d.Sim.Gen, d.Sim.Proc, stage))
	defer removeAll([]string{jdlPath, xmlPath})

	sources := generator.MergeSourceFiles()
	jdl, err := MergingJDL(d.backend(), MergingJob{
		Comments:       d.Comments,
		Dest:           dest,
		Executable:     generator.MergeExe,
		TTL:            d.Sim.Grid.TTL,
		Train:          name,
		AliPhysics:     aliphysics,
		Collection:     filepath.Base(xmlPath),
		MaxFilesPerJob: d.Sim.Grid.MaxFilesPerJob,
		Validation:     generator.ValidationFile,
		Split:          SplitParentDirectory,
		InputFiles:     sources,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(jdlPath, []byte(jdl), utils.PermFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", jdlPath, err)
	}

	xml, err := d.FS.Find(filepath.Base(xmlPath), previous, resultPattern)
	if err != nil {
		return fmt.Errorf("failed to build collection of %s: %w", previous, err)
	}
	if err := os.WriteFile(xmlPath, []byte(xml), utils.PermFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", xmlPath, err)
	}

	var staged []string
	for _, f := range sources {
		staged = append(staged, d.path(f))
	}
	staged = append(staged, jdlPath, xmlPath, d.path(generator.MergeExe), d.path(generator.ValidationFile))
	return d.stageAndSubmit(staged, dest, local, jdlPath)
}
