package grid

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/generator"
	"github.com/mfasDa/alice-fast-simulation/internal/task"
	"github.com/mfasDa/alice-fast-simulation/internal/train"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// oldInitPatterns are the POWHEG grid files reused for stage 4.
var oldInitPatterns = []string{"pwggrid-????.dat", "pwggridinfo-btl-xg?-????.dat", "pwgubound-????.dat"}

// ProcessingOptions select the POWHEG initialisation of a processing train.
type ProcessingOptions struct {
	OldPowhegInit string // folder under data/ holding a previous initialisation
	PowhegStage   int
}

// ProcessingReport summarises a processing submission.
type ProcessingReport struct {
	Train     string
	Timestamp int64
	Bins      int
}

// SubmitProcessing creates a new train and submits one processing job per
// pT-hard bin. Failures in one bin are collected and the other bins proceed.
func (d *Driver) SubmitProcessing(opts ProcessingOptions) (*ProcessingReport, error) {
	if err := d.Sim.RequireGrid(); err != nil {
		return nil, err
	}
	now := d.now()
	name, ts := train.Now(d.Sim.Gen, d.Sim.Proc, now)
	utils.PrintMessage("Submitting processing jobs for train %s", utils.StyleName(name))
	utils.PrintHint("The timestamp for this job is %s. You will need it to submit merging jobs and download your final results.", utils.StyleNumber(ts))

	inputs, temps, err := d.processingInputs(opts)
	defer removeAll(temps)
	if err != nil {
		return nil, err
	}

	aliphysics := config.ResolveAliPhysics(d.Sim.Grid.AliPhysics, now)
	pkgs := ProcessingPackages(d.Sim.Gen, aliphysics, d.Sim.Grid.LoadPackagesSeparately)
	jdlPath := d.path(fmt.Sprintf("FastSim_%s_%s.jdl", d.Sim.Gen, d.Sim.Proc))

	report := &ProcessingReport{Train: name, Timestamp: ts}
	var errs []error
	for _, bin := range train.Bins(d.Sim.PtHard) {
		if err := d.submitProcessingBin(name, bin, opts.PowhegStage, pkgs, inputs, jdlPath); err != nil {
			utils.PrintError("%v", err)
			errs = append(errs, &BinError{Bin: bin.String(), Err: err})
			continue
		}
		report.Bins++
	}
	if len(errs) > 0 {
		utils.PrintWarning("Processing train %s: %d of %d bins failed", name, len(errs), len(errs)+report.Bins)
		return report, errors.Join(errs...)
	}
	utils.PrintSuccess("Processing train %s submitted (%d bins)", name, report.Bins)
	return report, nil
}

func (d *Driver) submitProcessingBin(name string, bin train.Bin, stage int, pkgs []Package, inputs []string, jdlPath string) error {
	jobs, err := bin.Jobs(d.Sim.NumJobs)
	if err != nil {
		return err
	}
	dest := d.Remote + "/" + bin.Path(name)
	local := filepath.Join(d.Local, bin.Path(name))

	tk := task.New(filepath.Base(d.Sim.Path), nil, []task.Arg{
		{Flag: "--numevents", Value: strconv.Itoa(d.Sim.NumEvents)},
		{Flag: "--minpthard", Value: bin.MinArg()},
		{Flag: "--maxpthard", Value: bin.MaxArg()},
		{Flag: "--batch-job", Value: "grid"},
		{Flag: "--powheg-stage", Value: strconv.Itoa(stage)},
	}, "--job-number")

	jdl, err := ProcessingJDL(d.backend(), ProcessingJob{
		Comments:   d.Comments,
		Dest:       dest,
		Executable: generator.SimExecutable,
		TTL:        d.Sim.Grid.TTL,
		Arguments:  tk.PlaceholderCommand(CounterToken),
		Packages:   pkgs,
		Jobs:       jobs,
		Validation: generator.ValidationFile,
		InputFiles: inputs,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(jdlPath, []byte(jdl), utils.PermFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", jdlPath, err)
	}
	defer removeAll([]string{jdlPath})

	staged := append(append([]string(nil), inputs...),
		jdlPath, d.path(generator.SimExecutable), d.path(generator.ValidationFile))
	return d.stageAndSubmit(staged, dest, local, jdlPath)
}

// processingInputs runs the generator pre-steps and returns the files every
// bin stages plus the temporaries to delete afterwards.
func (d *Driver) processingInputs(opts ProcessingOptions) (inputs, temps []string, err error) {
	inputs = append(inputs, d.Sim.Path)
	for _, f := range generator.SourceFiles() {
		inputs = append(inputs, d.path(f))
	}
	gen := d.Sim.Gen

	if generator.IsPythia8(gen) {
		inputs = append(inputs, d.path(generator.Pythia8Cmnd))
	}

	if generator.IsPowheg(gen) {
		extra, tmp, err := d.powhegInputs(opts)
		temps = append(temps, tmp...)
		if err != nil {
			return nil, temps, err
		}
		inputs = append(inputs, extra...)
	}

	if generator.IsHerwig(gen) {
		if err := d.Inputs.HerwigInput(d.Sim.Path, d.WorkDir, d.Sim.NumEvents); err != nil {
			return nil, temps, err
		}
		temps = append(temps, d.path(generator.HerwigInput))
		for _, f := range generator.HerwigInputFiles(d.Sim.HerwigTune()) {
			inputs = append(inputs, d.path(f))
		}
	}
	return inputs, temps, nil
}

func (d *Driver) powhegInputs(opts ProcessingOptions) (inputs, temps []string, err error) {
	stage := opts.PowhegStage
	input := d.path(generator.PowhegInput)

	switch {
	case stage == 0:
		if err := d.Inputs.PowhegInput(d.Sim.Path, d.WorkDir, d.Sim.NumEvents, 0, 0); err != nil {
			return nil, nil, err
		}
		if opts.OldPowhegInit != "" {
			dir := filepath.Join("data", opts.OldPowhegInit)
			inputs = append(inputs, d.path(filepath.Join(dir, "pwggrid.dat")), d.path(filepath.Join(dir, "pwgubound.dat")))
		}

	case stage == 4 && opts.OldPowhegInit != "":
		if err := d.Inputs.PowhegInput(d.Sim.Path, d.WorkDir, d.Sim.NumEvents, 4, 0); err != nil {
			return nil, nil, err
		}
		if err := os.Rename(d.path(generator.ParallelInputFileName(4, 0)), input); err != nil {
			return nil, nil, fmt.Errorf("failed to rename POWHEG stage 4 input: %w", err)
		}
		dir := d.path(filepath.Join("data", opts.OldPowhegInit))
		for _, pattern := range oldInitPatterns {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return nil, nil, err
			}
			inputs = append(inputs, matches...)
		}
		seeds := d.path(generator.PowhegSeeds)
		temps = append(temps, seeds)
		if err := generator.WriteSeeds(seeds, maxJobs(d.Sim.NumJobs)+1, d.rng()); err != nil {
			return nil, temps, err
		}
		inputs = append(inputs, seeds)

	default:
		return nil, nil, fmt.Errorf("%w %d", generator.ErrPowhegStage, stage)
	}

	temps = append(temps, input)
	inputs = append(inputs, input)
	return inputs, temps, nil
}

func maxJobs(counts []int) int {
	m := 0
	for _, n := range counts {
		if n > m {
			m = n
		}
	}
	return m
}
