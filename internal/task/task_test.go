package task

import (
	"testing"
)

func TestSerialCommand(t *testing.T) {
	tk := New("run.py", []string{"--numevents", "1000"}, []Arg{{Flag: "--debug"}}, "--job-number")
	got := tk.SerialCommand(7)
	want := "run.py --numevents 1000 --debug --job-number 7"
	if got != want {
		t.Errorf("SerialCommand(7) = %q; want %q", got, want)
	}
}

func TestCommandTokenOrder(t *testing.T) {
	tests := []struct {
		name     string
		exe      string
		defaults []string
		optional []Arg
		idFlag   string
		id       int
		want     string
	}{
		{
			name:   "no arguments",
			exe:    "sim",
			idFlag: "--job",
			id:     0,
			want:   "sim --job 0",
		},
		{
			name:     "optional values kept in insertion order",
			exe:      "/work/runFastSim.py",
			defaults: []string{"cfg.yaml", "--numevents", "50"},
			optional: []Arg{{"--powheg-stage", "4"}, {"--batch-job", "lbnl3"}, {"--verbose", ""}},
			idFlag:   "--job-number",
			id:       12,
			want:     "/work/runFastSim.py cfg.yaml --numevents 50 --powheg-stage 4 --batch-job lbnl3 --verbose --job-number 12",
		},
		{
			name:     "optional before defaults in input still follows defaults",
			exe:      "x",
			defaults: []string{"a", "b"},
			optional: []Arg{{"--z", "1"}, {"--a", "2"}},
			idFlag:   "-j",
			id:       3,
			want:     "x a b --z 1 --a 2 -j 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := New(tt.exe, tt.defaults, tt.optional, tt.idFlag)
			if got := tk.SerialCommand(tt.id); got != tt.want {
				t.Errorf("SerialCommand(%d) = %q; want %q", tt.id, got, tt.want)
			}
			// identical inputs give identical output
			again := New(tt.exe, tt.defaults, tt.optional, tt.idFlag)
			if tk.SerialCommand(tt.id) != again.SerialCommand(tt.id) {
				t.Errorf("command is not deterministic")
			}
		})
	}
}

func TestMPICommandUsesPlaceholder(t *testing.T) {
	tk := New("run.py", []string{"cfg.yaml"}, nil, "--job-number")
	got := tk.MPICommand()
	want := "run.py cfg.yaml --job-number RANK"
	if got != want {
		t.Errorf("MPICommand() = %q; want %q", got, want)
	}
	if sub := ReplicaName(got, 5); sub != "run.py cfg.yaml --job-number 0005" {
		t.Errorf("substituted command = %q", sub)
	}
}

func TestNewCopiesArguments(t *testing.T) {
	defaults := []string{"a"}
	optional := []Arg{{"--x", "1"}}
	tk := New("exe", defaults, optional, "--id")
	defaults[0] = "changed"
	optional[0].Value = "changed"
	if got := tk.SerialCommand(1); got != "exe a --x 1 --id 1" {
		t.Errorf("task changed after construction: %q", got)
	}
}

func TestPlaceholderNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"replica", ReplicaName("RunJob_RANK.sh", 42), "RunJob_0042.sh"},
		{"replica wide", ReplicaName("RunJob_RANK.sh", 12345), "RunJob_12345.sh"},
		{"mpi", MPIName("RunJob_RANK.sh"), "RunJob_MPI.sh"},
		{"all", AllName("JobOutput_RANK.log"), "JobOutput_ALL.log"},
		{"no token", ReplicaName("plain.sh", 3), "plain.sh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q; want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPlaceholderCommand(t *testing.T) {
	tk := New("sim.yaml", nil, []Arg{{Flag: "--batch-job", Value: "grid"}}, "--job-number")
	want := "sim.yaml --batch-job grid --job-number #alien_counter#"
	if got := tk.PlaceholderCommand("#alien_counter#"); got != want {
		t.Errorf("PlaceholderCommand() = %q, want %q", got, want)
	}
}
