package coco

import (
	"errors"
	"fmt"
)

// ErrParse matches every *ParseError via errors.Is.
var ErrParse = errors.New("coco: parse failed")

// Document names reported by ParseError.
const (
	DocumentAnnotations = "annotations"
	DocumentSplits      = "splits"
)

// ParseError reports a malformed or incomplete input document.
// Path locates the offending value in JSON-path style, e.g. "images[3].width".
type ParseError struct {
	Document string
	Path     string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse %s: %v", e.Document, e.Err)
	}
	return fmt.Sprintf("parse %s: %s: %v", e.Document, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

var (
	errMissing   = errors.New("required field missing")
	errNotPos    = errors.New("must be a positive integer")
	errDuplicate = errors.New("duplicate id")
)

func missing(doc, path string) *ParseError {
	return &ParseError{Document: doc, Path: path, Err: errMissing}
}
