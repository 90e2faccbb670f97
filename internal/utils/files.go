package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gvallee/go_util/pkg/util"
)

// Standard default permissions
// File: u=rw, g=rw, o=r
const PermFile os.FileMode = 0664

// Dir:  u=rwx, g=rwx, o=rx (Requires +x to traverse)
const PermDir os.FileMode = 0775

// Exec: job scripts handed to sbatch/qsub
const PermExec os.FileMode = 0755

// FileExists checks if a file exists and is not a directory.
func FileExists(path string) bool {
	return util.FileExists(path) && !DirExists(path)
}

// DirExists checks if a path exists and is a directory.
func DirExists(path string) bool {
	if !util.PathExists(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir checks if a directory exists, and creates it if it doesn't.
func EnsureDir(path string) error {
	if DirExists(path) {
		return nil
	}
	PrintDebug("Creating directory %s", StylePath(path))
	return os.MkdirAll(path, PermDir)
}

// FileSize returns the size of path in bytes, or -1 if it cannot be stat'ed.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}

// CopyFile copies src to dst, preserving the source permission bits.
// The destination directory must exist.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("could not stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// CopyFiles copies every source to its destination, in the given order.
// Output: [FSIM] Copying <src> to <dst>
func CopyFiles(pairs [][2]string) error {
	for _, p := range pairs {
		PrintMessage("Copying %s to %s", StylePath(p[0]), StylePath(p[1]))
		if err := EnsureDir(filepath.Dir(p[1])); err != nil {
			return err
		}
		if err := CopyFile(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}
