// Package yolo renders YOLO segmentation labels and dataset manifests.
package yolo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JaimeStill/yolo-folds/internal/coco"
)

// ErrInvalidDimensions is returned for images whose width or height is not positive.
var ErrInvalidDimensions = errors.New("image dimensions must be positive")

// Precision is the number of decimals written per normalized coordinate.
const Precision = 6

// ClassLookup resolves a source category id to a class index.
type ClassLookup interface {
	ForCategory(id int64) (int, bool)
}

// Encode converts the annotations of img into label lines, one per
// annotation in input order. Only the first polygon ring is used.
// Annotations with an unknown category or without a non-empty ring are
// skipped. Coordinates are divided by the image size and not clamped.
func Encode(img coco.Image, anns []coco.Annotation, classes ClassLookup) ([]string, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrInvalidDimensions, img.FileName, img.Width, img.Height)
	}

	w, h := float64(img.Width), float64(img.Height)
	lines := make([]string, 0, len(anns))

	for _, ann := range anns {
		class, ok := classes.ForCategory(ann.CategoryID)
		if !ok {
			continue
		}
		if len(ann.Segmentation) == 0 || len(ann.Segmentation[0]) == 0 {
			continue
		}
		lines = append(lines, Line(class, ann.Segmentation[0], w, h))
	}

	return lines, nil
}

// Line formats one label line: the class index followed by ring's
// coordinates, even positions divided by w and odd positions by h.
func Line(class int, ring []float64, w, h float64) string {
	buf := make([]byte, 0, 4+len(ring)*(Precision+3))
	buf = strconv.AppendInt(buf, int64(class), 10)

	for i, v := range ring {
		if i%2 == 0 {
			v /= w
		} else {
			v /= h
		}
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, v, 'f', Precision, 64)
	}

	return string(buf)
}

// Render joins lines into label file content. No trailing newline is
// written and no lines yields empty content.
func Render(lines []string) []byte {
	return []byte(strings.Join(lines, "\n"))
}
