package folds

import (
	"errors"

	"github.com/google/uuid"
)

// SplitResult counts the outcome of one split of one fold.
type SplitResult struct {
	Name       string
	Copied     int
	Unresolved int
	Missing    int
	Invalid    int
	Duplicates int

	// Conflicts counts names whose label file was already claimed by an
	// earlier name in the split, e.g. a.png after a.jpg.
	Conflicts int

	Bytes int64
}

// Skipped returns the number of file names that produced no output.
// Every copied image has exactly one label file, so Copied is also the
// label count.
func (r SplitResult) Skipped() int {
	return r.Unresolved + r.Missing + r.Invalid + r.Duplicates + r.Conflicts
}

func (r *SplitResult) add(o SplitResult) {
	r.Copied += o.Copied
	r.Unresolved += o.Unresolved
	r.Missing += o.Missing
	r.Invalid += o.Invalid
	r.Duplicates += o.Duplicates
	r.Conflicts += o.Conflicts
	r.Bytes += o.Bytes
}

// FoldResult describes one generated fold.
type FoldResult struct {
	Name string

	// Dir is the absolute path of the fold tree.
	Dir string

	Splits []SplitResult

	// Problems holds recoverable conditions, e.g. ErrFoldNotFound.
	Problems []error
}

// Found reports whether the fold existed in the split manifest.
func (r FoldResult) Found() bool {
	for _, p := range r.Problems {
		if errors.Is(p, ErrFoldNotFound) {
			return false
		}
	}
	return true
}

// Totals sums the fold's split results.
func (r FoldResult) Totals() SplitResult {
	var t SplitResult
	for _, s := range r.Splits {
		t.add(s)
	}
	return t
}

// Report is the outcome of a Run.
type Report struct {
	RunID uuid.UUID
	Folds []FoldResult
}

// Totals sums every fold's results.
func (r *Report) Totals() SplitResult {
	var t SplitResult
	for _, f := range r.Folds {
		t.add(f.Totals())
	}
	return t
}
