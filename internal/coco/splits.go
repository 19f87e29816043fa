package coco

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/JaimeStill/yolo-folds/pkg/storage"
)

// Fold maps a split name ("train", "val", "test") to its ordered file names.
type Fold map[string][]string

// Splits is the fold-split manifest: fold name to Fold.
type Splits map[string]Fold

// Fold returns the named fold. A fold that is absent or has no splits
// reports false.
func (s Splits) Fold(name string) (Fold, bool) {
	f, ok := s[name]
	if !ok || len(f) == 0 {
		return nil, false
	}
	return f, true
}

// LoadSplits reads and parses the split manifest stored at key.
func LoadSplits(ctx context.Context, src storage.System, key string) (Splits, error) {
	data, err := src.Retrieve(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read splits %s: %w", key, err)
	}
	return ParseSplits(data)
}

// ParseSplits decodes a split manifest.
func ParseSplits(data []byte) (Splits, error) {
	var s Splits
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &ParseError{Document: DocumentSplits, Err: err}
	}
	if s == nil {
		return nil, &ParseError{Document: DocumentSplits, Err: errMissing}
	}
	return s, nil
}
