// Package grid drives the three grid workflows of a train: processing
// submission, merging and result download. Every workflow runs once per
// pT-hard bin; each bin has its own remote and local directory.
package grid

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/mfasDa/alice-fast-simulation/internal/alien"
	"github.com/mfasDa/alice-fast-simulation/internal/backend"
	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/generator"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// Driver runs grid workflows for one simulation configuration.
type Driver struct {
	FS      *alien.FS
	Backend backend.Backend // writes the JDL fields and names the submit tool
	Inputs  generator.InputGenerator
	Sim     *config.SimConfig

	Remote  string // user's grid home
	Local   string // user's local working area
	WorkDir string // holds the sources; temporary files are written here

	Staging  alien.Staging
	Comments string // provenance header of every JDL

	Now  func() time.Time
	Rand *rand.Rand
}

func (d *Driver) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Driver) backend() backend.Backend {
	if d.Backend == nil {
		d.Backend = backend.NewGrid()
	}
	return d.Backend
}

func (d *Driver) rng() *rand.Rand {
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return d.Rand
}

// path resolves a repository-relative file.
func (d *Driver) path(f string) string {
	if filepath.IsAbs(f) {
		return f
	}
	return filepath.Join(d.WorkDir, f)
}

// ListTrains lists the user's grid home, for resolving "last".
func (d *Driver) ListTrains() ([]string, error) {
	return d.FS.List(d.Remote)
}

// stageAndSubmit stages files into dest and submits the JDL among them.
// Failed remote copies are reported but do not stop the submission.
func (d *Driver) stageAndSubmit(files []string, dest, local, jdl string) error {
	if err := d.FS.CopyFilesToGrid(files, dest, local, d.Staging); err != nil {
		if !alien.IsCopyError(err) {
			return err
		}
		utils.PrintWarning("Some files could not be staged to %s", utils.StylePath(dest))
	}
	if d.Staging.Offline {
		utils.PrintNote("Offline mode: %s not submitted", utils.StylePath(jdl))
		return nil
	}
	out, err := d.FS.Submit(d.backend().SubmitCommand(), dest+"/"+filepath.Base(jdl))
	if err != nil {
		return fmt.Errorf("%s: %w", jdl, err)
	}
	utils.PrintMessage("%s", out)
	return nil
}

func removeAll(files []string) {
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			utils.PrintWarning("Failed to remove %s: %v", f, err)
		}
	}
}
