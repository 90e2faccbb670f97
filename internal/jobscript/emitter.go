// Package jobscript writes and submits the shell scripts that run simulation
// replicas on the local-cluster and container backends.
package jobscript

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mfasDa/alice-fast-simulation/internal/backend"
	"github.com/mfasDa/alice-fast-simulation/internal/config"
	"github.com/mfasDa/alice-fast-simulation/internal/shell"
	"github.com/mfasDa/alice-fast-simulation/internal/task"
	"github.com/mfasDa/alice-fast-simulation/internal/utils"
)

// Request describes N replicas of one task.
type Request struct {
	WorkDir        string
	ScriptTemplate string // file name containing the RANK placeholder
	LogTemplate    string // file name containing the RANK placeholder
	Task           task.Task
	EnvScript      string
	Replicas       int
	Offset         int
}

// Emitter writes job scripts for one backend and submits them.
type Emitter struct {
	Backend backend.Backend
	Runner  shell.Runner
	Batch   *config.BatchConfig

	// Header is the provenance comment written after the shebang.
	Header string

	// DryRun writes scripts without calling the submit tool.
	DryRun bool
}

// UseMPI reports whether requests fan out from one aggregate script:
// the backend must be the container backend and the queue not shared.
func (e *Emitter) UseMPI() bool {
	return e.Backend.Kind() == backend.KindContainer && e.Batch != nil && !e.Batch.Shared()
}

// Emit writes and submits the scripts for req. Artifacts written before a
// failure are returned with the error.
func (e *Emitter) Emit(req Request) ([]*Artifact, error) {
	if e.UseMPI() {
		a, err := e.emitMPI(req)
		if a == nil {
			return nil, err
		}
		return []*Artifact{a}, err
	}
	return e.emitSerial(req)
}

func (e *Emitter) emitSerial(req Request) ([]*Artifact, error) {
	arts := make([]*Artifact, 0, req.Replicas)
	for ijob := req.Offset; ijob < req.Offset+req.Replicas; ijob++ {
		a := &Artifact{
			Script:  filepath.Join(req.WorkDir, task.ReplicaName(req.ScriptTemplate, ijob)),
			Log:     filepath.Join(req.WorkDir, task.ReplicaName(req.LogTemplate, ijob)),
			Replica: ijob,
		}
		arts = append(arts, a)

		var buf bytes.Buffer
		e.writeHeader(&buf)
		if err := e.Backend.WriteDirectives(&buf, e.Batch, backend.Shape{Replicas: 1}, a.Log); err != nil {
			return arts, err
		}
		sim := backend.SimCommand{Command: req.Task.SerialCommand(ijob), EnvScript: req.EnvScript, WorkDir: req.WorkDir}
		if err := e.Backend.WriteSimCommand(&buf, sim); err != nil {
			return arts, err
		}
		fmt.Fprintf(&buf, "cd %s\n", req.WorkDir)
		for _, f := range e.Backend.CleanupFiles(req.EnvScript, ijob) {
			fmt.Fprintf(&buf, "rm -f %s\n", f)
		}

		if err := e.commit(a, buf.Bytes()); err != nil {
			return arts, err
		}
	}
	return arts, nil
}

func (e *Emitter) emitMPI(req Request) (*Artifact, error) {
	a := &Artifact{
		Script:  filepath.Join(req.WorkDir, task.MPIName(req.ScriptTemplate)),
		Log:     filepath.Join(req.WorkDir, task.AllName(req.LogTemplate)),
		Replica: -1,
	}

	var buf bytes.Buffer
	e.writeHeader(&buf)
	if err := e.Backend.WriteDirectives(&buf, e.Batch, backend.Shape{Replicas: req.Replicas}, a.Log); err != nil {
		return nil, err
	}
	mpi := backend.MPICommand{
		SimCommand:  backend.SimCommand{Command: req.Task.MPICommand(), EnvScript: req.EnvScript, WorkDir: req.WorkDir},
		Replicas:    req.Replicas,
		Offset:      req.Offset,
		LogTemplate: filepath.Join(req.WorkDir, req.LogTemplate),
	}
	if err := e.Backend.WriteSimCommandMPI(&buf, mpi); err != nil {
		return nil, err
	}
	return a, e.commit(a, buf.Bytes())
}

func (e *Emitter) writeHeader(buf *bytes.Buffer) {
	buf.WriteString("#!/bin/bash\n")
	buf.WriteString(e.Header)
}

// commit moves a through written, executable and submitted.
func (e *Emitter) commit(a *Artifact, content []byte) error {
	if err := os.WriteFile(a.Script, content, utils.PermFile); err != nil {
		return fmt.Errorf("failed to write job script %s: %w", a.Script, err)
	}
	a.advance(StateWritten)

	if err := os.Chmod(a.Script, utils.PermExec); err != nil {
		return fmt.Errorf("failed to make %s executable: %w", a.Script, err)
	}
	a.advance(StateExecutable)

	if e.DryRun {
		utils.PrintMessage("Written %s (not submitted)", utils.StylePath(a.Script))
		return nil
	}

	tool := e.Backend.SubmitCommand()
	runner := e.Runner
	if runner == nil {
		runner = shell.ExecRunner{}
	}
	res := runner.Run(shell.Command{Bin: tool, Args: []string{a.Script}, Dir: filepath.Dir(a.Script)})
	a.Output = strings.TrimSpace(res.Stdout)
	if res.Err != nil {
		return &SubmissionError{Script: a.Script, Tool: tool, Output: res.Output(), Err: res.Err}
	}
	a.advance(StateSubmitted)
	utils.PrintMessage("%s", a.Output)
	return nil
}
