// Package localbatch submits a simulation train to the local cluster or the
// container supercomputer: it prepares the train directory, builds the
// analysis code and emits one job script per replica.
package localbatch

import (
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mfasDa/alice-fast-simulation/internal/backend"
	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/generator"
	"github.com/mfasDa/alice-fast-simulation/internal/jobscript"
	"github.com/mfasDa/alice-fast-simulation/internal/task"
	"github.com/mfasDa/alice-fast-simulation/internal/train"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// BatchJobTag identifies the local batch environment to the simulation.
const BatchJobTag = "lbnl3"

// minSeeds is the smallest POWHEG seed file written for a new train.
const minSeeds = 20

// xgridIterations is the number of stage-1 POWHEG grid iterations.
const xgridIterations = 3

// ErrBinnedTrain is returned for configurations with pT-hard bins, which only
// the grid workflows fan out over.
var ErrBinnedTrain = errors.New("pT-hard bins are only supported on the grid")

// Options select a new train or the continuation of a POWHEG train.
type Options struct {
	Continue    string // timestamp of an existing train; empty creates a new one
	PowhegStage int
	XGridIter   int
}

// Report summarises a submission.
type Report struct {
	Train     string
	Dir       string
	Artifacts []*jobscript.Artifact
}

// Submitter runs the local batch workflow.
type Submitter struct {
	Backend backend.Backend
	Emitter *jobscript.Emitter
	Inputs  generator.InputGenerator
	Sim     *config.SimConfig

	Local   string // user's local working area
	RepoDir string

	Now  func() time.Time
	Rand *rand.Rand
}

// Submit prepares (or reopens) the train directory and submits its jobs.
func (s *Submitter) Submit(opts Options) (*Report, error) {
	if bins := train.Bins(s.Sim.PtHard); bins[0].Binned() {
		return nil, fmt.Errorf("%w: %s defines %d bins", ErrBinnedTrain, s.Sim.Path, len(bins))
	}
	gen, proc := s.Sim.Gen, s.Sim.Proc
	envScript := generator.EnvScript(gen)

	var name string
	if opts.Continue == "" {
		now := time.Now()
		if s.Now != nil {
			now = s.Now()
		}
		var ts int64
		name, ts = train.Now(gen, proc, now)
		utils.PrintMessage("New job with timestamp %s", utils.StyleNumber(ts))
	} else {
		ts, err := strconv.ParseInt(opts.Continue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", opts.Continue, err)
		}
		name = train.Name(gen, proc, ts)
		utils.PrintMessage("Continue job with timestamp %s", utils.StyleNumber(ts))
	}
	dest := filepath.Join(s.Local, name)
	report := &Report{Train: name, Dir: dest}
	utils.PrintMessage("Submitting processing jobs for train %s", utils.StyleName(name))

	if opts.Continue == "" {
		if err := s.prepare(dest, envScript); err != nil {
			return report, err
		}
	} else if !utils.DirExists(dest) {
		return report, fmt.Errorf("%w: %s", train.ErrTrainNotFound, dest)
	}

	req, err := s.request(dest, envScript, opts)
	if err != nil {
		return report, err
	}
	arts, err := s.Emitter.Emit(req)
	report.Artifacts = arts
	if err != nil {
		return report, err
	}
	utils.PrintSuccess("Submitted %d job script(s) for %s", len(arts), name)
	return report, nil
}

// prepare creates the train directory, copies the sources, writes the
// generator inputs and builds the analysis code.
func (s *Submitter) prepare(dest, envScript string) error {
	if err := utils.EnsureDir(dest); err != nil {
		return err
	}
	gen := s.Sim.Gen

	pairs := [][2]string{
		{s.Sim.Path, filepath.Join(dest, filepath.Base(s.Sim.Path))},
		{s.repo(generator.SimExecutable), filepath.Join(dest, generator.SimExecutable)},
	}
	sources := generator.SourceFiles()
	if generator.IsPythia8(gen) {
		sources = append(sources, generator.Pythia8Cmnd)
	}

	switch {
	case generator.IsPowheg(gen):
		if err := s.powhegInputs(dest); err != nil {
			return err
		}
	case generator.IsHerwig(gen):
		if err := s.Inputs.HerwigInput(s.Sim.Path, dest, s.Sim.NumEvents); err != nil {
			return err
		}
		for _, f := range generator.HerwigInputFiles(s.Sim.HerwigTune()) {
			if f != generator.HerwigInput {
				sources = append(sources, f)
			}
		}
	}

	for _, f := range sources {
		target := filepath.Join(dest, filepath.Base(f))
		pairs = append(pairs, [2]string{s.repo(f), target})
	}
	if err := utils.CopyFiles(pairs); err != nil {
		return err
	}

	utils.PrintMessage("Compiling analysis code...")
	err := s.Backend.RunBuild(backend.BuildRequest{RepoDir: s.RepoDir, WorkDir: dest, EnvScript: envScript})
	if err != nil {
		if !backend.IsBuildError(err) {
			return err
		}
		utils.PrintWarning("%v", err)
	}
	return nil
}

// powhegInputs writes the cards of every parallel stage and the seed file.
func (s *Submitter) powhegInputs(dest string) error {
	events := s.Sim.NumEvents
	for iter := 1; iter <= xgridIterations; iter++ {
		if err := s.Inputs.PowhegInput(s.Sim.Path, dest, events, 1, iter); err != nil {
			return err
		}
	}
	for stage := 2; stage <= 4; stage++ {
		if err := s.Inputs.PowhegInput(s.Sim.Path, dest, events, stage, 0); err != nil {
			return err
		}
	}
	nseeds := s.Sim.NumJobs.Total()
	if nseeds < minSeeds {
		nseeds = minSeeds
	}
	rng := s.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return generator.WriteSeeds(filepath.Join(dest, generator.PowhegSeeds), nseeds, rng)
}

// request builds the emitter request for the train in dest.
func (s *Submitter) request(dest, envScript string, opts Options) (jobscript.Request, error) {
	exe := filepath.Join(dest, generator.SimExecutable)
	cfg := filepath.Join(dest, filepath.Base(s.Sim.Path))
	events := strconv.Itoa(s.Sim.NumEvents)

	if !generator.IsPowheg(s.Sim.Gen) {
		return jobscript.Request{
			WorkDir:        dest,
			ScriptTemplate: "RunJob_" + task.RankToken + ".sh",
			LogTemplate:    "JobOutput_" + task.RankToken + ".log",
			Task: task.New(exe, []string{cfg}, []task.Arg{
				{Flag: "--numevents", Value: events},
				{Flag: "--batch-job", Value: BatchJobTag},
			}, "--job-number"),
			EnvScript: envScript,
			Replicas:  s.Sim.NumJobs.Total(),
		}, nil
	}

	stage := opts.PowhegStage
	jobs, err := generator.StageJobs(stage, s.Sim.NumJobs.Total())
	if err != nil {
		return jobscript.Request{}, err
	}
	xgrid := opts.XGridIter
	if xgrid < 1 {
		xgrid = 1
	}
	stageInput := filepath.Join(dest, generator.ParallelInputFileName(stage, xgrid))
	if err := utils.CopyFile(stageInput, filepath.Join(dest, generator.PowhegInput)); err != nil {
		return jobscript.Request{}, fmt.Errorf("POWHEG stage %d: %w", stage, err)
	}

	script := fmt.Sprintf("RunJob_%d_%s.sh", stage, task.RankToken)
	log := fmt.Sprintf("JobOutput_Stage_%d_%s.log", stage, task.RankToken)
	if stage == 1 {
		script = fmt.Sprintf("RunJob_Stage_1_XGridIter_%d_%s.sh", xgrid, task.RankToken)
		log = fmt.Sprintf("JobOutput_Stage_1_XGridIter_%d_%s.log", xgrid, task.RankToken)
	}
	return jobscript.Request{
		WorkDir:        dest,
		ScriptTemplate: script,
		LogTemplate:    log,
		Task: task.New(exe, []string{cfg}, []task.Arg{
			{Flag: "--numevents", Value: events},
			{Flag: "--powheg-stage", Value: strconv.Itoa(stage)},
			{Flag: "--batch-job", Value: BatchJobTag},
		}, "--job-number"),
		EnvScript: envScript,
		Replicas:  jobs,
		Offset:    1,
	}, nil
}

func (s *Submitter) repo(f string) string {
	if filepath.IsAbs(f) {
		return f
	}
	return filepath.Join(s.RepoDir, f)
}
