package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mfasDa/alice-fast-simulation/internal/utils"
	"gopkg.in/yaml.v3"
)

// ErrMissingBatchConfig is returned when the local batch submitter runs without --batch-conf.
var ErrMissingBatchConfig = errors.New("batch config has to be specified")

// QoSShared is the shared-queue class: one task, one CPU per job.
const QoSShared = "shared"

// BatchConfig holds scheduler settings for local and container submission.
type BatchConfig struct {
	QoS  string `yaml:"qos"`
	Time string `yaml:"time"`

	// Sites overrides or extends the per-node task capacity table, keyed by site name.
	Sites map[string]int `yaml:"sites"`
}

// Shared reports whether jobs go to the shared queue.
func (b *BatchConfig) Shared() bool {
	return b.QoS == "" || b.QoS == QoSShared
}

// LoadBatchConfig reads the batch configuration. Unknown keys are rejected and
// the time limit is normalised to HH:MM:SS.
func LoadBatchConfig(path string) (*BatchConfig, error) {
	if path == "" {
		return nil, ErrMissingBatchConfig
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var bc BatchConfig
	if err := dec.Decode(&bc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse batch config %s: %w", path, err)
	}
	if bc.Time != "" {
		d, err := utils.ParseWalltime(bc.Time)
		if err != nil {
			return nil, &FieldError{File: path, Field: "time", Reason: err.Error()}
		}
		bc.Time = utils.FormatWalltime(d)
	}
	for site, n := range bc.Sites {
		if n <= 0 {
			return nil, &FieldError{File: path, Field: "sites." + site, Reason: "must be positive"}
		}
	}
	return &bc, nil
}
