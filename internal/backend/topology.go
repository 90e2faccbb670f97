package backend

import (
	"sort"
)

// defaultCapacity is the number of tasks per node at each known site.
var defaultCapacity = map[string]int{
	"edison": 24,
	"cori":   68,
}

// Capacity returns the per-node task capacity of site. Entries in overrides
// replace or extend the built-in table. An unknown site is an error.
func Capacity(site string, overrides map[string]int) (int, error) {
	if n, ok := overrides[site]; ok {
		return n, nil
	}
	if n, ok := defaultCapacity[site]; ok {
		return n, nil
	}
	known := make([]string, 0, len(defaultCapacity)+len(overrides))
	for s := range defaultCapacity {
		known = append(known, s)
	}
	for s := range overrides {
		if _, dup := defaultCapacity[s]; !dup {
			known = append(known, s)
		}
	}
	sort.Strings(known)
	return 0, &SiteError{Site: site, Known: known}
}

// NodeCount returns ceil(replicas / capacity).
func NodeCount(replicas, capacity int) int {
	if replicas <= 0 {
		return 0
	}
	return (replicas + capacity - 1) / capacity
}
