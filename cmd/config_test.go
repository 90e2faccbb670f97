package cmd

import (
	"strings"
	"testing"
)

func TestGetConfigEnvVars(t *testing.T) {
	vars := getConfigEnvVars()
	if len(vars) != len(configKeys) {
		t.Fatalf("got %d vars, expected %d", len(vars), len(configKeys))
	}
	for i, v := range vars {
		if !strings.HasPrefix(v, "FASTSIM_") {
			t.Errorf("env var[%d] = %q, want FASTSIM_ prefix", i, v)
		}
		if i > 0 && vars[i-1] > v {
			t.Errorf("env vars not sorted: %q before %q", vars[i-1], v)
		}
	}
}
