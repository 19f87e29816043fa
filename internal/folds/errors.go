package folds

import "errors"

// Recoverable conditions recorded in a FoldResult. Neither stops the run.
var (
	ErrFoldNotFound = errors.New("fold not found in split manifest")
	ErrUnknownSplit = errors.New("unknown split")
)
