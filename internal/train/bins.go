package train

import (
	"strconv"

	"github.com/mfasDa/alice-fast-simulation/internal/config"
)

// Bin is one pT-hard bin of a train. Index is -1 for an unbinned train,
// which has no pT-hard limits.
type Bin struct {
	Index int
	Min   float64
	Max   float64
}

// Unbinned is the single pass over a train without pT-hard bins.
var Unbinned = Bin{Index: -1, Min: -1, Max: -1}

// Bins returns the bins defined by the pT-hard edges. Fewer than two edges
// give the single unbinned pass; L edges give L-1 bins.
func Bins(edges []float64) []Bin {
	if len(edges) < 2 {
		return []Bin{Unbinned}
	}
	bins := make([]Bin, 0, len(edges)-1)
	for i := 0; i+1 < len(edges); i++ {
		bins = append(bins, Bin{Index: i, Min: edges[i], Max: edges[i+1]})
	}
	return bins
}

// Binned reports whether b is a real pT-hard bin.
func (b Bin) Binned() bool { return b.Index >= 0 }

// Path returns the train-relative directory of the bin.
func (b Bin) Path(train string) string {
	if !b.Binned() {
		return train
	}
	return train + "/" + strconv.Itoa(b.Index)
}

// Jobs returns the number of jobs for the bin.
func (b Bin) Jobs(counts config.JobCounts) (int, error) {
	if !b.Binned() {
		return counts.Total(), nil
	}
	return counts.ForBin(b.Index)
}

// MinArg formats the lower edge for a command line.
func (b Bin) MinArg() string { return formatEdge(b.Min) }

// MaxArg formats the upper edge for a command line.
func (b Bin) MaxArg() string { return formatEdge(b.Max) }

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (b Bin) String() string {
	if !b.Binned() {
		return "unbinned"
	}
	return "bin " + strconv.Itoa(b.Index) + " [" + b.MinArg() + ", " + b.MaxArg() + ")"
}
