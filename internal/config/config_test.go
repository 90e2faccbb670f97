package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSimConfig(t *testing.T) {
	path := writeFile(t, "sim.yaml", `gen: powheg
proc: charm
numevents: 5000
numbjobs: [10, 20]
pthard: [5, 10, 20]
grid_config:
  aliphysics: vAN-20200301-1
  ttl: 7200
  max_files_per_job: 50
  load_packages_separately: true
herwig_config:
  tune: tune.in
  extra: 3
beam_type: pp
`)
	c, err := LoadSimConfig(path)
	if err != nil {
		t.Fatalf("LoadSimConfig() error = %v", err)
	}
	if c.Gen != "powheg" || c.Proc != "charm" || c.NumEvents != 5000 {
		t.Errorf("scalars = %q %q %d", c.Gen, c.Proc, c.NumEvents)
	}
	if len(c.NumJobs) != 2 || c.NumJobs[1] != 20 {
		t.Errorf("NumJobs = %v, want [10 20]", c.NumJobs)
	}
	if c.Grid == nil || !c.Grid.LoadPackagesSeparately || c.Grid.TTL != 7200 {
		t.Errorf("Grid = %+v", c.Grid)
	}
	if c.HerwigTune() != "tune.in" {
		t.Errorf("HerwigTune() = %q", c.HerwigTune())
	}
	if c.Physics["beam_type"] != "pp" {
		t.Errorf("Physics = %v, want beam_type retained", c.Physics)
	}
	if c.Path != path {
		t.Errorf("Path = %q, want %q", c.Path, path)
	}
	if err := c.RequireGrid(); err != nil {
		t.Errorf("RequireGrid() error = %v", err)
	}
}

func TestLoadSimConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"missing gen", "proc: dijet\nnumevents: 1\nnumbjobs: 1\n", "gen"},
		{"missing proc", "gen: pythia\nnumevents: 1\nnumbjobs: 1\n", "proc"},
		{"zero events", "gen: pythia\nproc: dijet\nnumevents: 0\nnumbjobs: 1\n", "numevents"},
		{"missing jobs", "gen: pythia\nproc: dijet\nnumevents: 1\n", "numbjobs"},
		{"negative jobs", "gen: pythia\nproc: dijet\nnumevents: 1\nnumbjobs: [1, -2]\n", "numbjobs"},
		{"too few jobs", "gen: pythia\nproc: dijet\nnumevents: 1\nnumbjobs: [1, 2]\npthard: [0, 5, 10, 20]\n", "numbjobs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSimConfig(writeFile(t, "sim.yaml", tt.yaml))
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("LoadSimConfig() error = %v, want FieldError", err)
			}
			if fe.Field != tt.field {
				t.Errorf("Field = %q, want %q", fe.Field, tt.field)
			}
		})
	}
}

func TestLoadSimConfigBadNumbjobs(t *testing.T) {
	_, err := LoadSimConfig(writeFile(t, "sim.yaml", "gen: pythia\nproc: dijet\nnumevents: 1\nnumbjobs: {a: 1}\n"))
	if err == nil {
		t.Fatal("LoadSimConfig() accepted a mapping for numbjobs")
	}
}

func TestJobCounts(t *testing.T) {
	scalar := JobCounts{7}
	if scalar.Total() != 7 {
		t.Errorf("Total() = %d, want 7", scalar.Total())
	}
	for _, bin := range []int{0, 3, 10} {
		if n, err := scalar.ForBin(bin); err != nil || n != 7 {
			t.Errorf("scalar ForBin(%d) = %d, %v", bin, n, err)
		}
	}

	list := JobCounts{1, 2, 3}
	if n, err := list.ForBin(2); err != nil || n != 3 {
		t.Errorf("ForBin(2) = %d, %v, want 3", n, err)
	}
	if _, err := list.ForBin(3); !errors.Is(err, ErrNoPtHardJobs) {
		t.Errorf("ForBin(3) error = %v, want ErrNoPtHardJobs", err)
	}
	if (JobCounts{}).Total() != 0 {
		t.Error("empty Total() should be 0")
	}
}

func TestRequireGrid(t *testing.T) {
	tests := []struct {
		name  string
		grid  *GridConfig
		field string
	}{
		{"missing block", nil, "grid_config"},
		{"missing aliphysics", &GridConfig{TTL: 1, MaxFilesPerJob: 1}, "grid_config.aliphysics"},
		{"zero ttl", &GridConfig{AliPhysics: "v", MaxFilesPerJob: 1}, "grid_config.ttl"},
		{"zero files", &GridConfig{AliPhysics: "v", TTL: 1}, "grid_config.max_files_per_job"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &SimConfig{Path: "sim.yaml", Grid: tt.grid}
			var fe *FieldError
			if err := c.RequireGrid(); !errors.As(err, &fe) || fe.Field != tt.field {
				t.Errorf("RequireGrid() error = %v, want field %q", err, tt.field)
			}
		})
	}
}

func TestResolveAliPhysics(t *testing.T) {
	tests := []struct {
		version string
		now     time.Time
		want    string
	}{
		{"vAN-20200101-1", time.Date(2020, 3, 5, 20, 0, 0, 0, time.Local), "vAN-20200101-1"},
		{"_last_", time.Date(2020, 3, 5, 10, 0, 0, 0, time.Local), "vAN-20200304-1"},
		{"_last_", time.Date(2020, 3, 5, 18, 0, 0, 0, time.Local), "vAN-20200305-1"},
		{"_last_", time.Date(2020, 3, 1, 0, 30, 0, 0, time.Local), "vAN-20200229-1"},
		{"_last_", time.Date(2020, 11, 20, 20, 0, 0, 0, time.Local), "vAN-20201120-1"},
		{"_last_", time.Date(2021, 1, 1, 9, 0, 0, 0, time.Local), "vAN-20201231-1"},
	}
	for _, tt := range tests {
		if got := ResolveAliPhysics(tt.version, tt.now); got != tt.want {
			t.Errorf("ResolveAliPhysics(%q, %v) = %q, want %q", tt.version, tt.now, got, tt.want)
		}
	}
}

func TestLoadBatchConfig(t *testing.T) {
	if _, err := LoadBatchConfig(""); !errors.Is(err, ErrMissingBatchConfig) {
		t.Errorf("LoadBatchConfig(\"\") error = %v, want ErrMissingBatchConfig", err)
	}

	bc, err := LoadBatchConfig(writeFile(t, "batch.yaml", "qos: regular\ntime: \"02:00:00\"\nsites:\n  perlmutter: 128\n"))
	if err != nil {
		t.Fatalf("LoadBatchConfig() error = %v", err)
	}
	if bc.Shared() || bc.Time != "02:00:00" || bc.Sites["perlmutter"] != 128 {
		t.Errorf("BatchConfig = %+v", bc)
	}

	if _, err := LoadBatchConfig(writeFile(t, "batch.yaml", "qos: shared\npartition: x\n")); err == nil {
		t.Error("unknown key accepted")
	}
	var fe *FieldError
	if _, err := LoadBatchConfig(writeFile(t, "batch.yaml", "qos: regular\nsites:\n  cori: 0\n")); !errors.As(err, &fe) {
		t.Errorf("non-positive capacity error = %v, want FieldError", err)
	}

	empty, err := LoadBatchConfig(writeFile(t, "batch.yaml", ""))
	if err != nil || !empty.Shared() {
		t.Errorf("empty batch config = %+v, %v, want shared", empty, err)
	}
}

func TestLoadUserConfig(t *testing.T) {
	path := writeFile(t, "userConf.yaml", "username: mfasel\nlocal_path: /data/sim\n")
	uc, err := LoadUserConfig(path)
	if err != nil {
		t.Fatalf("LoadUserConfig() error = %v", err)
	}
	if uc.Username != "mfasel" || uc.LocalPath != "/data/sim" {
		t.Errorf("UserConfig = %+v", uc)
	}
	if got := uc.GridHome("/alice/cern.ch/user"); got != "/alice/cern.ch/user/m/mfasel" {
		t.Errorf("GridHome() = %q", got)
	}

	t.Setenv("FASTSIM_LOCAL_PATH", "/scratch/sim")
	uc, err = LoadUserConfig(path)
	if err != nil || uc.LocalPath != "/scratch/sim" {
		t.Errorf("env override = %+v, %v", uc, err)
	}
}

func TestLoadUserConfigErrors(t *testing.T) {
	if _, err := LoadUserConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrUserConfigMissing) {
		t.Errorf("missing file error = %v, want ErrUserConfigMissing", err)
	}
	var fe *FieldError
	if _, err := LoadUserConfig(writeFile(t, "userConf.yaml", "local_path: /data\n")); !errors.As(err, &fe) || fe.Field != "username" {
		t.Errorf("missing username error = %v", err)
	}
	if _, err := LoadUserConfig(writeFile(t, "userConf.yaml", "username: a\nlocal_path: /d\ntoken: x\n")); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestLoadFromViper(t *testing.T) {
	defer viper.Reset()
	LoadDefaults("/usr/bin/fastsim")
	if Global.WorkerBin != "/usr/bin/fastsim" || Global.CopyAttempts != 3 || !Global.SubmitJob {
		t.Fatalf("defaults = %+v", Global)
	}

	viper.Set("copy_attempts", 5)
	viper.Set("submit_job", false)
	viper.Set("grid_root", "/alice/test")
	LoadFromViper()

	if Global.CopyAttempts != 5 || Global.SubmitJob || Global.GridRoot != "/alice/test" {
		t.Errorf("Global = %+v", Global)
	}
}
