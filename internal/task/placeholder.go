package task

import (
	"fmt"
	"strings"
)

// Placeholder vocabulary for script, log and command templates.
const (
	// RankToken marks where the replica index goes.
	RankToken = "RANK"
	// MPIMarker replaces RankToken in the name of an aggregate MPI job script.
	MPIMarker = "MPI"
	// AllMarker replaces RankToken in the name of an aggregate MPI log file.
	AllMarker = "ALL"
)

// Substitute replaces every RankToken in template with value.
func Substitute(template, value string) string {
	return strings.ReplaceAll(template, RankToken, value)
}

// ReplicaName substitutes the replica index, zero-padded to 4 digits.
func ReplicaName(template string, index int) string {
	return Substitute(template, fmt.Sprintf("%04d", index))
}

// MPIName names the aggregate script of an MPI batch.
func MPIName(template string) string {
	return Substitute(template, MPIMarker)
}

// AllName names the aggregate log of an MPI batch.
func AllName(template string) string {
	return Substitute(template, AllMarker)
}

// HasRank reports whether template contains the placeholder.
func HasRank(template string) bool {
	return strings.Contains(template, RankToken)
}
