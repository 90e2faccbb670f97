// Package task composes the command line a single simulation replica runs.
package task

import (
	"strconv"
	"strings"
)

// Arg is an optional flag with an optional value. An empty Value emits a bare flag.
type Arg struct {
	Flag  string
	Value string
}

// Task is an executable invocation with fixed arguments and a per-replica job id.
// A Task is immutable once built; all methods are pure.
type Task struct {
	executable   string
	defaultArgs  []string
	optionalArgs []Arg
	jobIDFlag    string
}

// New builds a Task. The argument slices are copied.
func New(executable string, defaultArgs []string, optionalArgs []Arg, jobIDFlag string) Task {
	return Task{
		executable:   executable,
		defaultArgs:  append([]string(nil), defaultArgs...),
		optionalArgs: append([]Arg(nil), optionalArgs...),
		jobIDFlag:    jobIDFlag,
	}
}

// SerialCommand returns the command for replica id.
func (t Task) SerialCommand(id int) string {
	return t.command(strconv.Itoa(id))
}

// MPICommand returns the command with the job id left as the RANK placeholder,
// to be substituted by each worker.
func (t Task) MPICommand() string {
	return t.command(RankToken)
}

// PlaceholderCommand returns the command with token in place of the job id,
// for schedulers that substitute their own counter.
func (t Task) PlaceholderCommand(token string) string {
	return t.command(token)
}

func (t Task) command(id string) string {
	var b strings.Builder
	b.WriteString(t.executable)
	for _, arg := range t.defaultArgs {
		b.WriteString(" ")
		b.WriteString(arg)
	}
	for _, arg := range t.optionalArgs {
		b.WriteString(" ")
		b.WriteString(arg.Flag)
		if arg.Value != "" {
			b.WriteString(" ")
			b.WriteString(arg.Value)
		}
	}
	b.WriteString(" ")
	b.WriteString(t.jobIDFlag)
	b.WriteString(" ")
	b.WriteString(id)
	return b.String()
}
