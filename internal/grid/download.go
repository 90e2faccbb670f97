package grid

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mfasDa/alice-fast-simulation/internal/train"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// DownloadReport lists what a download did, by local path.
type DownloadReport struct {
	Downloaded []string
	Skipped    []string
	Failed     []string
}

// Download mirrors the results of train name into the local area. A
// negative stage downloads the last merge stage. Files already present are
// skipped; empty transfers are discarded and reported in Failed.
func (d *Driver) Download(name string, stage int) (*DownloadReport, error) {
	report := &DownloadReport{}
	var errs []error
	for _, bin := range train.Bins(d.Sim.PtHard) {
		trainBin := bin.Path(name)
		utils.PrintMessage("Downloading results from train %s", utils.StyleName(trainBin))

		s, err := d.resolveStage(name, trainBin, stage)
		if err != nil {
			return report, err
		}

		remote := d.Remote + "/" + trainBin + "/output"
		local := filepath.Join(d.Local, trainBin, "output")
		if s == 0 {
			utils.PrintWarning("Merging stage determined to be 0 (i.e. no grid merging has been performed)")
		} else {
			utils.PrintMessage("Merging stage determined to be %s", utils.StyleNumber(s))
			remote = StageInput(d.Remote+"/"+trainBin, s)
			local = filepath.Join(d.Local, trainBin, fmt.Sprintf("stage_%d", s-1), "output")
		}

		if err := d.mirror(remote, local, report); err != nil {
			utils.PrintError("%v", err)
			errs = append(errs, &BinError{Bin: bin.String(), Err: err})
		}
	}
	return report, errors.Join(errs...)
}

func (d *Driver) mirror(remote, local string, report *DownloadReport) error {
	if err := utils.EnsureDir(local); err != nil {
		return err
	}
	subdirs, err := d.FS.List(remote)
	if err != nil {
		return err
	}
	for _, sub := range subdirs {
		subRemote := remote + "/" + sub
		subLocal := filepath.Join(local, sub)
		if err := utils.EnsureDir(subLocal); err != nil {
			return err
		}
		files, err := d.FS.List(subRemote + "/AnalysisResults*.root")
		if err != nil {
			utils.PrintDebug("No results in %s", subRemote)
			continue
		}
		for _, f := range files {
			d.fetch(subRemote+"/"+f, filepath.Join(subLocal, f), report)
		}
	}
	return nil
}

// fetch downloads to temp_<name> and renames it into place only when the
// transfer produced a non-empty file.
func (d *Driver) fetch(remote, dest string, report *DownloadReport) {
	if utils.FileExists(dest) {
		utils.PrintWarning("File %s already exists, skipping...", utils.StylePath(dest))
		report.Skipped = append(report.Skipped, dest)
		return
	}
	tmp := filepath.Join(filepath.Dir(dest), "temp_"+filepath.Base(dest))
	_ = os.Remove(tmp)

	utils.PrintMessage("Downloading from %s to %s", remote, utils.StylePath(tmp))
	err := d.FS.Fetch(remote, tmp)
	if err == nil && utils.FileSize(tmp) > 0 {
		if err = os.Rename(tmp, dest); err == nil {
			report.Downloaded = append(report.Downloaded, dest)
			return
		}
	}
	_ = os.Remove(tmp)
	utils.PrintError("Downloading of %s failed!", remote)
	report.Failed = append(report.Failed, dest)
}
