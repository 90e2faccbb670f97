package jobscript

// State is the lifecycle position of one generated script.
type State int

const (
	StateNamed State = iota
	StateWritten
	StateExecutable
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateNamed:
		return "named"
	case StateWritten:
		return "written"
	case StateExecutable:
		return "executable"
	case StateSubmitted:
		return "submitted"
	}
	return "unknown"
}

// Artifact is one job script. It only moves forward through the states and
// is never rewritten once submitted.
type Artifact struct {
	Script  string // absolute script path
	Log     string // absolute log path
	Replica int    // replica index, or -1 for an aggregate MPI script
	State   State
	Output  string // submit tool stdout
}

func (a *Artifact) advance(to State) {
	if to > a.State {
		a.State = to
	}
}
