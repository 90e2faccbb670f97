package grid

import (
	"errors"
	"fmt"
)

// ErrNoResults is returned when a train has no output to merge or download.
var ErrNoResults = errors.New("could not find any results from train")

// BinError records a failure confined to one pT-hard bin.
type BinError struct {
	Bin string
	Err error
}

func (e *BinError) Error() string {
	return fmt.Sprintf("%s: %v", e.Bin, e.Err)
}

func (e *BinError) Unwrap() error { return e.Err }
