// Package alien wraps the grid file-system commands (alien_ls, alien_cp,
// alien_rm, alien_rmdir, alien_mkdir, alien_find, alien_submit). Their exit
// status and text output are the only feedback.
package alien

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/mfasDa/alice-fast-simulation/internal/shell"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// Scheme prefixes grid paths passed to alien_cp and alien_submit.
const Scheme = "alien://"

// DefaultAttempts is the number of tries per remote copy.
const DefaultAttempts = 3

// FS issues grid file-system commands through a shell.Runner.
type FS struct {
	runner shell.Runner
}

// New creates an FS. A nil runner executes commands on the host.
func New(r shell.Runner) *FS {
	if r == nil {
		r = shell.ExecRunner{}
	}
	return &FS{runner: r}
}

// Plain strips the alien:// scheme.
func Plain(p string) string {
	return strings.TrimPrefix(p, Scheme)
}

// URL adds the alien:// scheme when missing.
func URL(p string) string {
	if strings.HasPrefix(p, Scheme) {
		return p
	}
	return Scheme + p
}

func (fs *FS) run(bin string, args ...string) shell.Result {
	return fs.runner.Run(shell.Command{Bin: bin, Args: args})
}

// Delete removes a remote file.
func (fs *FS) Delete(p string) error {
	cmd := shell.Command{Bin: "alien_rm", Args: []string{Plain(p)}}
	return shell.MustSucceed(cmd, fs.runner.Run(cmd))
}

// DeleteDir removes a remote directory.
func (fs *FS) DeleteDir(p string) error {
	cmd := shell.Command{Bin: "alien_rmdir", Args: []string{Plain(p)}}
	return shell.MustSucceed(cmd, fs.runner.Run(cmd))
}

// Exists reports whether alien_ls succeeds on p.
func (fs *FS) Exists(p string) bool {
	return fs.run("alien_ls", Plain(p)).Err == nil
}

// List returns the base names of the entries alien_ls prints for p.
func (fs *FS) List(p string) ([]string, error) {
	cmd := shell.Command{Bin: "alien_ls", Args: []string{Plain(p)}}
	res := fs.runner.Run(cmd)
	if err := shell.MustSucceed(cmd, res); err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		names = append(names, path.Base(strings.TrimSuffix(line, "/")))
	}
	return names, nil
}

// Mkdir creates p and its parents.
func (fs *FS) Mkdir(p string) error {
	cmd := shell.Command{Bin: "alien_mkdir", Args: []string{"-p", Plain(p)}}
	return shell.MustSucceed(cmd, fs.runner.Run(cmd))
}

// Copy uploads src to dst. An existing destination is kept unless overwrite
// is set, in which case it is deleted first. The copy is retried until the
// destination exists or attempts are exhausted.
func (fs *FS) Copy(src, dst string, attempts int, overwrite bool) error {
	if attempts < 1 {
		attempts = 1
	}
	if fs.Exists(dst) {
		if !overwrite {
			utils.PrintDebug("%s exists, not copying", utils.StylePath(dst))
			return nil
		}
		if err := fs.Delete(dst); err != nil {
			utils.PrintWarning("Failed to delete %s before overwrite: %v", dst, err)
		}
	}

	for i := 1; i <= attempts; i++ {
		fs.run("alien_cp", src, URL(dst))
		if fs.Exists(dst) {
			return nil
		}
		utils.PrintDebug("Copy of %s to %s failed (attempt %d/%d)", src, dst, i, attempts)
	}
	return &CopyError{Source: src, Destination: URL(dst), Attempts: attempts}
}

// Fetch downloads a remote file to a local path.
func (fs *FS) Fetch(remote, local string) error {
	cmd := shell.Command{Bin: "alien_cp", Args: []string{URL(remote), local}}
	return shell.MustSucceed(cmd, fs.runner.Run(cmd))
}

// Find searches dir recursively for pattern and returns the XML collection
// alien_find prints, named xmlName.
func (fs *FS) Find(xmlName, dir, pattern string) (string, error) {
	cmd := shell.Command{Bin: "alien_find", Args: []string{"-x", xmlName, Plain(dir), pattern}}
	res := fs.runner.Run(cmd)
	if err := shell.MustSucceed(cmd, res); err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Submit submits a JDL already staged on the grid with tool and returns the
// tool output.
func (fs *FS) Submit(tool, jdl string) (string, error) {
	cmd := shell.Command{Bin: tool, Args: []string{URL(jdl)}}
	res := fs.runner.Run(cmd)
	if err := shell.MustSucceed(cmd, res); err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Staging copies files to a remote destination and mirrors them locally.
type Staging struct {
	Offline  bool // skip all remote operations
	Update   bool // overwrite existing remote files
	Attempts int
}

// CopyFilesToGrid stages files under remoteDest (creating remoteDest and
// remoteDest/output) and copies them into localDest. Remote copy failures are
// logged and collected; the remaining files are still staged. Local failures
// abort.
func (fs *FS) CopyFilesToGrid(files []string, remoteDest, localDest string, st Staging) error {
	if !st.Offline {
		for _, dir := range []string{remoteDest, remoteDest + "/output"} {
			if err := fs.Mkdir(dir); err != nil {
				utils.PrintWarning("%v", err)
			}
		}
	}

	if !utils.DirExists(localDest) {
		utils.PrintMessage("Creating directory %s", utils.StylePath(localDest))
	}
	if err := utils.EnsureDir(localDest); err != nil {
		return err
	}

	var failed []error
	for _, f := range files {
		name := filepath.Base(f)
		if !st.Offline {
			if err := fs.Copy(f, remoteDest+"/"+name, st.Attempts, st.Update); err != nil {
				utils.PrintError("%v", err)
				failed = append(failed, err)
			}
		}
		if err := utils.CopyFile(f, filepath.Join(localDest, name)); err != nil {
			return fmt.Errorf("failed to stage %s locally: %w", f, err)
		}
	}
	return errors.Join(failed...)
}
