package alien

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mfasDa/alice-fast-simulation/internal/testutil"
)

func writeLocal(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSchemeHelpers(t *testing.T) {
	if got := Plain("alien:///alice/x"); got != "/alice/x" {
		t.Errorf("Plain() = %s", got)
	}
	if got := URL("/alice/x"); got != "alien:///alice/x" {
		t.Errorf("URL() = %s", got)
	}
	if got := URL("alien:///alice/x"); got != "alien:///alice/x" {
		t.Errorf("URL() doubled the scheme: %s", got)
	}
}

func TestList(t *testing.T) {
	g := testutil.NewMemoryGrid()
	g.Put("/u/train/output/001/AnalysisResults.root", []byte("x"))
	g.Mkdir("/u/train/stage_0")
	fs := New(g.Runner())

	got, err := fs.List("/u/train")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"output", "stage_0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
	if _, err := fs.List("/u/missing"); err == nil {
		t.Error("List() of a missing directory should fail")
	}
}

func TestCopy(t *testing.T) {
	local := writeLocal(t, t.TempDir(), "sim.yaml", "gen: pythia\n")

	tests := []struct {
		name        string
		existing    string
		overwrite   bool
		failUploads int
		attempts    int
		wantContent string
		wantCopies  int
		wantErr     bool
	}{
		{name: "fresh", attempts: 3, wantContent: "gen: pythia\n", wantCopies: 1},
		{name: "existing kept", existing: "old", attempts: 3, wantContent: "old", wantCopies: 0},
		{name: "existing overwritten", existing: "old", overwrite: true, attempts: 3, wantContent: "gen: pythia\n", wantCopies: 1},
		{name: "retried", failUploads: 2, attempts: 3, wantContent: "gen: pythia\n", wantCopies: 3},
		{name: "exhausted", failUploads: 5, attempts: 3, wantCopies: 3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.NewMemoryGrid()
			if tt.existing != "" {
				g.Put("/u/t/sim.yaml", []byte(tt.existing))
			}
			g.FailUploads = tt.failUploads
			runner := g.Runner()
			err := New(runner).Copy(local, "/u/t/sim.yaml", tt.attempts, tt.overwrite)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Copy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrCopyFailed) {
				t.Errorf("error %v is not ErrCopyFailed", err)
			}
			if got := len(runner.CallsTo("alien_cp")); got != tt.wantCopies {
				t.Errorf("alien_cp calls = %d, want %d", got, tt.wantCopies)
			}
			if tt.wantContent != "" {
				data, _ := g.File("/u/t/sim.yaml")
				if string(data) != tt.wantContent {
					t.Errorf("remote content = %q, want %q", data, tt.wantContent)
				}
			}
		})
	}
}

func TestCopyFilesToGrid(t *testing.T) {
	src := t.TempDir()
	files := []string{writeLocal(t, src, "a.C", "a"), writeLocal(t, src, "b.sh", "b")}
	localDest := filepath.Join(t.TempDir(), "train")

	g := testutil.NewMemoryGrid()
	g.FailUploads = 3
	runner := g.Runner()
	err := New(runner).CopyFilesToGrid(files, "/u/train", localDest, Staging{Attempts: 3})
	if !IsCopyError(err) {
		t.Fatalf("CopyFilesToGrid() error = %v, want a CopyError for a.C", err)
	}
	if _, ok := g.File("/u/train/b.sh"); !ok {
		t.Error("b.sh should still be staged after a.C failed")
	}
	if len(runner.CallsTo("alien_mkdir")) != 2 {
		t.Errorf("alien_mkdir calls = %v", runner.Lines())
	}
	for _, name := range []string{"a.C", "b.sh"} {
		if _, err := os.Stat(filepath.Join(localDest, name)); err != nil {
			t.Errorf("local copy of %s missing: %v", name, err)
		}
	}
}

func TestCopyFilesToGridOffline(t *testing.T) {
	src := t.TempDir()
	files := []string{writeLocal(t, src, "a.C", "a")}
	runner := testutil.NewMemoryGrid().Runner()
	if err := New(runner).CopyFilesToGrid(files, "/u/train", t.TempDir(), Staging{Offline: true}); err != nil {
		t.Fatal(err)
	}
	if len(runner.Calls) != 0 {
		t.Errorf("offline staging issued %v", runner.Lines())
	}
}

func TestFindAndSubmit(t *testing.T) {
	g := testutil.NewMemoryGrid()
	g.Put("/u/t/output/001/AnalysisResults.root", []byte("1"))
	g.Put("/u/t/output/002/AnalysisResults.root", []byte("2"))
	g.Put("/u/t/output/002/log_archive.zip", []byte("l"))
	fs := New(g.Runner())

	xml, err := fs.Find("c.xml", "/u/t/output", "*/AnalysisResults*.root")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"/u/t/output/001/AnalysisResults.root", "/u/t/output/002/AnalysisResults.root"} {
		if !strings.Contains(xml, want) {
			t.Errorf("collection missing %s:\n%s", want, xml)
		}
	}
	if strings.Contains(xml, "log_archive") {
		t.Error("collection should only list result files")
	}

	if _, err := fs.Submit("alien_submit", "/u/t/job.jdl"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g.Submitted, []string{"/u/t/job.jdl"}) {
		t.Errorf("Submitted = %v", g.Submitted)
	}
}
