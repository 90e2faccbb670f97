package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoPtHardJobs is returned when numbjobs does not provide a count for a pT-hard bin.
var ErrNoPtHardJobs = errors.New("no job count for pT-hard bin")

// JobCounts is the numbjobs field: either one count for the whole train or
// one count per pT-hard bin.
type JobCounts []int

// UnmarshalYAML accepts a scalar or a sequence.
func (j *JobCounts) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var n int
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("numbjobs: %w", err)
		}
		*j = JobCounts{n}
		return nil
	case yaml.SequenceNode:
		var list []int
		if err := value.Decode(&list); err != nil {
			return fmt.Errorf("numbjobs: %w", err)
		}
		*j = list
		return nil
	}
	return fmt.Errorf("numbjobs: line %d: expected a number or a list of numbers", value.Line)
}

// Total returns the single count of an unbinned train.
func (j JobCounts) Total() int {
	if len(j) == 0 {
		return 0
	}
	return j[0]
}

// ForBin returns the job count for pT-hard bin i; a scalar applies to every bin.
func (j JobCounts) ForBin(i int) (int, error) {
	if len(j) == 1 {
		return j[0], nil
	}
	if i < 0 || i >= len(j) {
		return 0, fmt.Errorf("%w %d", ErrNoPtHardJobs, i)
	}
	return j[i], nil
}

// GridConfig is the grid_config block.
type GridConfig struct {
	AliPhysics             string `yaml:"aliphysics"`
	TTL                    int    `yaml:"ttl"`
	MaxFilesPerJob         int    `yaml:"max_files_per_job"`
	LoadPackagesSeparately bool   `yaml:"load_packages_separately"`
}

// HerwigConfig is the herwig_config block; only the tune file is read here.
type HerwigConfig struct {
	Tune string                 `yaml:"tune"`
	Rest map[string]interface{} `yaml:",inline"`
}

// SimConfig holds the fields of the simulation configuration that drive
// submission. Physics settings are kept in Physics and passed through untouched.
type SimConfig struct {
	Path string `yaml:"-"`

	Gen       string        `yaml:"gen"`
	Proc      string        `yaml:"proc"`
	NumEvents int           `yaml:"numevents"`
	NumJobs   JobCounts     `yaml:"numbjobs"`
	PtHard    []float64     `yaml:"pthard"`
	Grid      *GridConfig   `yaml:"grid_config"`
	Herwig    *HerwigConfig `yaml:"herwig_config"`

	Physics map[string]interface{} `yaml:",inline"`
}

// HerwigTune returns the configured tune file, or "".
func (c *SimConfig) HerwigTune() string {
	if c.Herwig == nil {
		return ""
	}
	return c.Herwig.Tune
}

// LoadSimConfig reads and validates the simulation configuration.
func LoadSimConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var c SimConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	c.Path = path
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *SimConfig) validate() error {
	switch {
	case c.Gen == "":
		return &FieldError{File: c.Path, Field: "gen", Reason: "is required"}
	case c.Proc == "":
		return &FieldError{File: c.Path, Field: "proc", Reason: "is required"}
	case c.NumEvents <= 0:
		return &FieldError{File: c.Path, Field: "numevents", Reason: "must be positive"}
	case len(c.NumJobs) == 0:
		return &FieldError{File: c.Path, Field: "numbjobs", Reason: "is required"}
	}
	for _, n := range c.NumJobs {
		if n <= 0 {
			return &FieldError{File: c.Path, Field: "numbjobs", Reason: "must be positive"}
		}
	}
	if len(c.NumJobs) > 1 && len(c.NumJobs) < len(c.PtHard)-1 {
		return &FieldError{File: c.Path, Field: "numbjobs", Reason: fmt.Sprintf("lists %d counts for %d pT-hard bins", len(c.NumJobs), len(c.PtHard)-1)}
	}
	return nil
}

// RequireGrid validates the grid_config block needed by grid submission.
func (c *SimConfig) RequireGrid() error {
	if c.Grid == nil {
		return &FieldError{File: c.Path, Field: "grid_config", Reason: "is required for grid submission"}
	}
	if c.Grid.AliPhysics == "" {
		return &FieldError{File: c.Path, Field: "grid_config.aliphysics", Reason: "is required"}
	}
	if c.Grid.TTL <= 0 {
		return &FieldError{File: c.Path, Field: "grid_config.ttl", Reason: "must be positive"}
	}
	if c.Grid.MaxFilesPerJob <= 0 {
		return &FieldError{File: c.Path, Field: "grid_config.max_files_per_job", Reason: "must be positive"}
	}
	return nil
}

// ResolveAliPhysics maps "_last_" to the most recent nightly tag. Tags are
// built in the evening, so before 18:00 the previous day's tag is used.
func ResolveAliPhysics(version string, now time.Time) string {
	if version != "_last_" {
		return version
	}
	if now.Hour() < 18 {
		now = now.AddDate(0, 0, -1)
	}
	return now.Format("vAN-20060102") + "-1"
}
