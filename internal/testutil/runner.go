// Package testutil holds the command and grid doubles shared by package tests.
package testutil

import (
	"strings"
	"sync"

	"github.com/mfasDa/alice-fast-simulation/internal/shell"
)

// FakeRunner records commands instead of running them. Handler, when set,
// decides the result of each call; otherwise every call succeeds silently.
type FakeRunner struct {
	mu      sync.Mutex
	Calls   []shell.Command
	Handler func(cmd shell.Command) shell.Result
}

// Run records cmd and returns the handler's result.
func (f *FakeRunner) Run(cmd shell.Command) shell.Result {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	handler := f.Handler
	f.mu.Unlock()
	if handler == nil {
		return shell.Result{}
	}
	return handler(cmd)
}

// CallsTo returns the recorded invocations of bin.
func (f *FakeRunner) CallsTo(bin string) []shell.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []shell.Command
	for _, c := range f.Calls {
		if c.Bin == bin {
			out = append(out, c)
		}
	}
	return out
}

// Lines joins each recorded command into one string, in call order.
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, strings.TrimSpace(c.String()))
	}
	return out
}
