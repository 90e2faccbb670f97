// Package train names timestamped trains and iterates their pT-hard bins.
package train

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Prefix starts every train name.
const Prefix = "FastSim"

// LastRef resolves to the most recent train.
const LastRef = "last"

// ErrTrainNotFound is returned when no train matches a lookup.
var ErrTrainNotFound = errors.New("train not found")

// Base returns the timestamp-less part of a train name.
func Base(gen, proc string) string {
	return fmt.Sprintf("%s_%s_%s", Prefix, gen, proc)
}

// Name returns <Prefix>_<gen>_<proc>_<ts>.
func Name(gen, proc string, ts int64) string {
	return fmt.Sprintf("%s_%d", Base(gen, proc), ts)
}

// Now returns a name for a train created at t.
func Now(gen, proc string, t time.Time) (string, int64) {
	ts := t.Unix()
	return Name(gen, proc, ts), ts
}

// Last returns the entry with the highest timestamp among entries named
// <base>_<ts>. Entries with a non-numeric suffix are ignored.
func Last(entries []string, gen, proc string) (string, error) {
	prefix := Base(gen, proc) + "_"
	best := int64(-1)
	for _, e := range entries {
		e = strings.TrimSuffix(e, "/")
		if i := strings.LastIndex(e, "/"); i >= 0 {
			e = e[i+1:]
		}
		suffix, ok := strings.CutPrefix(e, prefix)
		if !ok {
			continue
		}
		ts, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			continue
		}
		if ts > best {
			best = ts
		}
	}
	if best < 0 {
		return "", fmt.Errorf("%w: no %s* entry", ErrTrainNotFound, prefix)
	}
	return Name(gen, proc, best), nil
}

// Resolve turns a timestamp or "last" into a train name. list is only called
// for "last".
func Resolve(ref, gen, proc string, list func() ([]string, error)) (string, error) {
	if ref == LastRef {
		entries, err := list()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTrainNotFound, err)
		}
		return Last(entries, gen, proc)
	}
	ts, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid train timestamp %q: expected a number or %q", ref, LastRef)
	}
	return Name(gen, proc, ts), nil
}
