package train

import (
	"errors"
	"testing"
	"time"

	"github.com/mfasDa/alice-fast-simulation/internal/config"
)

func TestName(t *testing.T) {
	if got := Name("powheg", "charm", 1500000000); got != "FastSim_powheg_charm_1500000000" {
		t.Errorf("Name() = %s", got)
	}
	name, ts := Now("pythia", "dijet", time.Unix(1600000000, 0))
	if name != "FastSim_pythia_dijet_1600000000" || ts != 1600000000 {
		t.Errorf("Now() = %s, %d", name, ts)
	}
}

func TestLast(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    string
		wantErr bool
	}{
		{
			name:    "max timestamp",
			entries: []string{"FastSim_powheg_charm_100/", "FastSim_powheg_charm_300", "FastSim_powheg_charm_200"},
			want:    "FastSim_powheg_charm_300",
		},
		{
			name:    "other trains ignored",
			entries: []string{"FastSim_powheg_beauty_900", "FastSim_powheg_charm_5", "output"},
			want:    "FastSim_powheg_charm_5",
		},
		{
			name:    "non-numeric suffix skipped",
			entries: []string{"FastSim_powheg_charm_old", "FastSim_powheg_charm_7"},
			want:    "FastSim_powheg_charm_7",
		},
		{
			name:    "full paths",
			entries: []string{"/alice/cern.ch/user/a/alice/FastSim_powheg_charm_42/"},
			want:    "FastSim_powheg_charm_42",
		},
		{
			name:    "none",
			entries: []string{"FastSim_pythia_charm_1"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Last(tt.entries, "powheg", "charm")
			if tt.wantErr {
				if !errors.Is(err, ErrTrainNotFound) {
					t.Fatalf("Last() error = %v, want ErrTrainNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Last() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	called := false
	list := func() ([]string, error) {
		called = true
		return []string{"FastSim_g_p_10", "FastSim_g_p_12"}, nil
	}

	got, err := Resolve("11", "g", "p", list)
	if err != nil || got != "FastSim_g_p_11" || called {
		t.Errorf("Resolve(11) = %s, %v (listed %v)", got, err, called)
	}
	got, err = Resolve("last", "g", "p", list)
	if err != nil || got != "FastSim_g_p_12" {
		t.Errorf("Resolve(last) = %s, %v", got, err)
	}
	if _, err := Resolve("yesterday", "g", "p", list); err == nil {
		t.Error("Resolve() should reject a non-numeric timestamp")
	}
	_, err = Resolve("last", "g", "p", func() ([]string, error) { return nil, errors.New("alien_ls failed") })
	if !errors.Is(err, ErrTrainNotFound) {
		t.Errorf("Resolve(last) with a failed listing = %v", err)
	}
}

func TestBins(t *testing.T) {
	bins := Bins([]float64{5, 10, 20, 40})
	if len(bins) != 3 {
		t.Fatalf("4 edges gave %d bins, want 3", len(bins))
	}
	for i, b := range bins {
		if b.Index != i {
			t.Errorf("bin %d has index %d", i, b.Index)
		}
		if b.Path("T") != "T/"+string(rune('0'+i)) {
			t.Errorf("bin %d path = %s", i, b.Path("T"))
		}
	}
	if bins[1].MinArg() != "10" || bins[1].MaxArg() != "20" {
		t.Errorf("bin 1 edges = %s, %s", bins[1].MinArg(), bins[1].MaxArg())
	}

	for _, edges := range [][]float64{nil, {5}} {
		got := Bins(edges)
		if len(got) != 1 || got[0].Binned() {
			t.Errorf("Bins(%v) = %v, want the unbinned pass", edges, got)
		}
		if got[0].Path("T") != "T" || got[0].MinArg() != "-1" {
			t.Errorf("unbinned path/min = %s/%s", got[0].Path("T"), got[0].MinArg())
		}
	}

	if got := (Bin{Index: 0, Min: 2.5, Max: 7}).MinArg(); got != "2.5" {
		t.Errorf("MinArg() = %s", got)
	}
}

func TestBinJobs(t *testing.T) {
	perBin := config.JobCounts{10, 20, 30}
	if n, _ := (Bin{Index: 2}).Jobs(perBin); n != 30 {
		t.Errorf("Jobs() = %d, want 30", n)
	}
	if n, _ := Unbinned.Jobs(config.JobCounts{50}); n != 50 {
		t.Errorf("Jobs() = %d, want 50", n)
	}
	if n, _ := (Bin{Index: 4}).Jobs(config.JobCounts{7}); n != 7 {
		t.Errorf("a scalar count should apply to every bin, got %d", n)
	}
	if _, err := (Bin{Index: 5}).Jobs(perBin); !errors.Is(err, config.ErrNoPtHardJobs) {
		t.Errorf("Jobs() error = %v", err)
	}
}
