package localbatch

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mfasDa/alice-fast-simulation/internal/backend"
	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/generator"
	"github.com/mfasDa/alice-fast-simulation/internal/jobscript"
	"github.com/mfasDa/alice-fast-simulation/internal/shell"
	"github.com/mfasDa/alice-fast-simulation/internal/testutil"
	"github.com/mfasDa/alice-fast-simulation/internal/train"
)

type fakeInputs struct{ calls []string }

func (f *fakeInputs) PowhegInput(_, dest string, _, stage, xgrid int) error {
	name := generator.ParallelInputFileName(stage, xgrid)
	f.calls = append(f.calls, name)
	return os.WriteFile(filepath.Join(dest, name), []byte(name), 0o644)
}

func (f *fakeInputs) HerwigInput(_, dest string, _ int) error {
	f.calls = append(f.calls, generator.HerwigInput)
	return os.WriteFile(filepath.Join(dest, generator.HerwigInput), []byte("h"), 0o644)
}

type fixture struct {
	sub    *Submitter
	runner *testutil.FakeRunner
	inputs *fakeInputs
}

func newFixture(t *testing.T, gen string, jobs int) *fixture {
	t.Helper()
	repo := t.TempDir()
	files := append(generator.SourceFiles(), generator.SimExecutable, generator.Pythia8Cmnd,
		"MB.in", "PPCollider.in", "SoftModel.in", "SoftTune.in")
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(repo, f), []byte(f), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	simPath := filepath.Join(repo, "sim.yaml")
	if err := os.WriteFile(simPath, []byte("gen: "+gen+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &testutil.FakeRunner{Handler: func(cmd shell.Command) shell.Result {
		if cmd.Bin == "sbatch" {
			return shell.Result{Stdout: "Submitted batch job 1\n"}
		}
		return shell.Result{}
	}}
	be := backend.NewLocalCluster(backend.FlavorSLURM, backend.Options{RepoDir: repo, Runner: runner})
	inputs := &fakeInputs{}
	return &fixture{
		sub: &Submitter{
			Backend: be,
			Emitter: &jobscript.Emitter{Backend: be, Runner: runner, Batch: &config.BatchConfig{}},
			Inputs:  inputs,
			Sim: &config.SimConfig{
				Path: simPath, Gen: gen, Proc: "charm", NumEvents: 50,
				NumJobs: config.JobCounts{jobs},
			},
			Local:   t.TempDir(),
			RepoDir: repo,
			Now:     func() time.Time { return time.Unix(1700000000, 0) },
			Rand:    rand.New(rand.NewSource(3)),
		},
		runner: runner,
		inputs: inputs,
	}
}

func TestSubmitNewTrain(t *testing.T) {
	f := newFixture(t, "pythia", 4)
	report, err := f.sub.Submit(Options{})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if report.Train != "FastSim_pythia_charm_1700000000" {
		t.Errorf("Train = %s", report.Train)
	}
	for _, n := range append(generator.SourceFiles(), "sim.yaml", generator.SimExecutable) {
		if _, err := os.Stat(filepath.Join(report.Dir, n)); err != nil {
			t.Errorf("%s not copied: %v", n, err)
		}
	}
	if len(report.Artifacts) != 4 {
		t.Fatalf("artifacts = %d, want 4", len(report.Artifacts))
	}
	if got := filepath.Base(report.Artifacts[0].Script); got != "RunJob_0000.sh" {
		t.Errorf("first script = %s", got)
	}
	data, err := os.ReadFile(report.Artifacts[3].Script)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(report.Dir, "runFastSim.py") + " " + filepath.Join(report.Dir, "sim.yaml") +
		" --numevents 50 --batch-job lbnl3 --job-number 3"
	if !strings.Contains(string(data), want) {
		t.Errorf("script missing %q:\n%s", want, data)
	}

	builds := f.runner.CallsTo(filepath.Join(f.sub.RepoDir, "nersc", "shifterbuild.sh"))
	if len(builds) != 1 || builds[0].Dir != report.Dir {
		t.Errorf("build calls = %+v", builds)
	}
}

func TestSubmitBuildFailureIsWarning(t *testing.T) {
	f := newFixture(t, "pythia", 1)
	f.runner.Handler = func(cmd shell.Command) shell.Result {
		if strings.HasSuffix(cmd.Bin, "shifterbuild.sh") {
			return shell.Result{Err: errors.New("exit status 2")}
		}
		return shell.Result{Stdout: "Submitted batch job 1\n"}
	}
	report, err := f.sub.Submit(Options{})
	if err != nil {
		t.Fatalf("a failed build should not abort: %v", err)
	}
	if len(report.Artifacts) != 1 {
		t.Errorf("artifacts = %d", len(report.Artifacts))
	}
}

func TestSubmitPowhegNewTrain(t *testing.T) {
	f := newFixture(t, "powheg", 5)
	report, err := f.sub.Submit(Options{PowhegStage: 1, XGridIter: 2})
	if err != nil {
		t.Fatal(err)
	}
	wantCalls := []string{
		"powheg_Stage_1_XGridIter_1.input", "powheg_Stage_1_XGridIter_2.input", "powheg_Stage_1_XGridIter_3.input",
		"powheg_Stage_2.input", "powheg_Stage_3.input", "powheg_Stage_4.input",
	}
	if strings.Join(f.inputs.calls, ",") != strings.Join(wantCalls, ",") {
		t.Errorf("inputs = %v, want %v", f.inputs.calls, wantCalls)
	}

	seeds, err := os.ReadFile(filepath.Join(report.Dir, generator.PowhegSeeds))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(seeds), "\n"); n != 20 {
		t.Errorf("seeds = %d, want at least 20", n)
	}

	input, err := os.ReadFile(filepath.Join(report.Dir, generator.PowhegInput))
	if err != nil || string(input) != "powheg_Stage_1_XGridIter_2.input" {
		t.Errorf("powheg.input = %q, %v", input, err)
	}

	if len(report.Artifacts) != 10 {
		t.Fatalf("stage 1 artifacts = %d, want 10", len(report.Artifacts))
	}
	first := report.Artifacts[0]
	if filepath.Base(first.Script) != "RunJob_Stage_1_XGridIter_2_0001.sh" {
		t.Errorf("script = %s", first.Script)
	}
	if filepath.Base(first.Log) != "JobOutput_Stage_1_XGridIter_2_0001.log" {
		t.Errorf("log = %s", first.Log)
	}
}

func TestSubmitPowhegContinue(t *testing.T) {
	f := newFixture(t, "powheg", 30)
	name := train.Name("powheg", "charm", 1600000000)
	dir := filepath.Join(f.sub.Local, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "powheg_Stage_4.input"), []byte("s4"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := f.sub.Submit(Options{Continue: "1600000000", PowhegStage: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.inputs.calls) != 0 {
		t.Errorf("continuation should not regenerate inputs: %v", f.inputs.calls)
	}
	if len(f.runner.CallsTo(filepath.Join(f.sub.RepoDir, "nersc", "shifterbuild.sh"))) != 0 {
		t.Error("continuation should not rebuild")
	}
	if len(report.Artifacts) != 30 {
		t.Fatalf("stage 4 artifacts = %d, want 30", len(report.Artifacts))
	}
	last := report.Artifacts[29]
	if filepath.Base(last.Script) != "RunJob_4_0030.sh" || filepath.Base(last.Log) != "JobOutput_Stage_4_0030.log" {
		t.Errorf("last artifact = %s, %s", last.Script, last.Log)
	}
}

func TestSubmitRejectsBinnedConfig(t *testing.T) {
	tests := []struct {
		name   string
		ptHard []float64
		want   error
	}{
		{"unbinned", nil, nil},
		{"single edge", []float64{5}, nil},
		{"one bin", []float64{5, 10}, ErrBinnedTrain},
		{"three bins", []float64{5, 10, 20, 40}, ErrBinnedTrain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "pythia", 1)
			f.sub.Sim.PtHard = tt.ptHard
			_, err := f.sub.Submit(Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Submit() error = %v, want %v", err, tt.want)
			}
			if tt.want != nil && len(f.runner.Calls) != 0 {
				t.Errorf("rejected config still ran commands: %v", f.runner.Lines())
			}
		})
	}
}

func TestSubmitContinueMissingTrain(t *testing.T) {
	f := newFixture(t, "powheg", 1)
	_, err := f.sub.Submit(Options{Continue: "123", PowhegStage: 2})
	if !errors.Is(err, train.ErrTrainNotFound) {
		t.Errorf("Submit() error = %v, want ErrTrainNotFound", err)
	}
}

func TestSubmitPowhegNeedsStage(t *testing.T) {
	f := newFixture(t, "powheg", 1)
	_, err := f.sub.Submit(Options{})
	if !errors.Is(err, generator.ErrPowhegStage) {
		t.Errorf("Submit() error = %v, want ErrPowhegStage", err)
	}
}

func TestSubmitHerwig(t *testing.T) {
	f := newFixture(t, "herwig", 1)
	report, err := f.sub.Submit(Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range generator.HerwigInputFiles("") {
		if _, err := os.Stat(filepath.Join(report.Dir, n)); err != nil {
			t.Errorf("%s missing: %v", n, err)
		}
	}
	data, _ := os.ReadFile(report.Artifacts[0].Script)
	if !strings.Contains(string(data), "source $HOME/herwig_env.sh") {
		t.Errorf("herwig environment not sourced:\n%s", data)
	}
}
