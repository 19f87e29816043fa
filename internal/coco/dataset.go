// Package coco loads COCO-style polygon annotation sets and fold-split
// manifests into indexed, read-only lookup structures.
package coco

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/JaimeStill/yolo-folds/pkg/storage"
)

// Image is one entry of the annotation set's images array.
type Image struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Annotation is one polygon-segmented object. Segmentation holds one or
// more rings of alternating absolute x, y pixel coordinates.
type Annotation struct {
	ImageID      int64       `json:"image_id"`
	CategoryID   int64       `json:"category_id"`
	Segmentation [][]float64 `json:"segmentation"`
}

// Category maps a source category id to its name.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Dataset is the indexed form of an annotation set.
type Dataset struct {
	images      map[int64]Image
	annotations map[int64][]Annotation
	categories  []Category
	byFileName  map[string]int64
}

// Image returns the image with id.
func (d *Dataset) Image(id int64) (Image, bool) {
	img, ok := d.images[id]
	return img, ok
}

// Annotations returns the annotations of image id in input order.
// Images without annotations yield nil.
func (d *Dataset) Annotations(id int64) []Annotation {
	return d.annotations[id]
}

// Categories returns the categories in input order.
func (d *Dataset) Categories() []Category {
	return d.categories
}

// Lookup resolves a file name to its image. When several images share a
// file name the first one in the document wins.
func (d *Dataset) Lookup(fileName string) (Image, bool) {
	id, ok := d.byFileName[fileName]
	if !ok {
		return Image{}, false
	}
	return d.images[id], true
}

// Len returns the number of images.
func (d *Dataset) Len() int {
	return len(d.images)
}

// Load reads and parses the annotation set stored at key.
func Load(ctx context.Context, src storage.System, key string) (*Dataset, error) {
	data, err := src.Retrieve(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read annotations %s: %w", key, err)
	}
	return Parse(data)
}

type rawDocument struct {
	Images      *[]rawImage      `json:"images"`
	Annotations *[]rawAnnotation `json:"annotations"`
	Categories  *[]rawCategory   `json:"categories"`
}

type rawImage struct {
	ID       *int64  `json:"id"`
	FileName *string `json:"file_name"`
	Width    *int    `json:"width"`
	Height   *int    `json:"height"`
}

type rawAnnotation struct {
	ImageID      *int64       `json:"image_id"`
	CategoryID   *int64       `json:"category_id"`
	Segmentation *[][]float64 `json:"segmentation"`
}

type rawCategory struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

// Parse decodes an annotation set. Absent required fields, non-positive
// dimensions and duplicate image or category ids fail with *ParseError.
func Parse(data []byte) (*Dataset, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Document: DocumentAnnotations, Err: err}
	}

	switch {
	case doc.Images == nil:
		return nil, missing(DocumentAnnotations, "images")
	case doc.Annotations == nil:
		return nil, missing(DocumentAnnotations, "annotations")
	case doc.Categories == nil:
		return nil, missing(DocumentAnnotations, "categories")
	}

	ds := &Dataset{
		images:      make(map[int64]Image, len(*doc.Images)),
		annotations: make(map[int64][]Annotation),
		categories:  make([]Category, 0, len(*doc.Categories)),
		byFileName:  make(map[string]int64, len(*doc.Images)),
	}

	for i, raw := range *doc.Images {
		img, err := raw.image(i)
		if err != nil {
			return nil, err
		}
		if _, dup := ds.images[img.ID]; dup {
			return nil, &ParseError{Document: DocumentAnnotations, Path: fmt.Sprintf("images[%d].id", i), Err: errDuplicate}
		}
		ds.images[img.ID] = img
		if _, seen := ds.byFileName[img.FileName]; !seen {
			ds.byFileName[img.FileName] = img.ID
		}
	}

	for i, raw := range *doc.Annotations {
		ann, err := raw.annotation(i)
		if err != nil {
			return nil, err
		}
		ds.annotations[ann.ImageID] = append(ds.annotations[ann.ImageID], ann)
	}

	seen := make(map[int64]struct{}, len(*doc.Categories))
	for i, raw := range *doc.Categories {
		cat, err := raw.category(i)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cat.ID]; dup {
			return nil, &ParseError{Document: DocumentAnnotations, Path: fmt.Sprintf("categories[%d].id", i), Err: errDuplicate}
		}
		seen[cat.ID] = struct{}{}
		ds.categories = append(ds.categories, cat)
	}

	return ds, nil
}

func (r rawImage) image(i int) (Image, error) {
	path := func(field string) string { return fmt.Sprintf("images[%d].%s", i, field) }

	switch {
	case r.ID == nil:
		return Image{}, missing(DocumentAnnotations, path("id"))
	case r.FileName == nil:
		return Image{}, missing(DocumentAnnotations, path("file_name"))
	case r.Width == nil:
		return Image{}, missing(DocumentAnnotations, path("width"))
	case r.Height == nil:
		return Image{}, missing(DocumentAnnotations, path("height"))
	case *r.Width <= 0:
		return Image{}, &ParseError{Document: DocumentAnnotations, Path: path("width"), Err: errNotPos}
	case *r.Height <= 0:
		return Image{}, &ParseError{Document: DocumentAnnotations, Path: path("height"), Err: errNotPos}
	}

	return Image{ID: *r.ID, FileName: *r.FileName, Width: *r.Width, Height: *r.Height}, nil
}

func (r rawAnnotation) annotation(i int) (Annotation, error) {
	path := func(field string) string { return fmt.Sprintf("annotations[%d].%s", i, field) }

	switch {
	case r.ImageID == nil:
		return Annotation{}, missing(DocumentAnnotations, path("image_id"))
	case r.CategoryID == nil:
		return Annotation{}, missing(DocumentAnnotations, path("category_id"))
	case r.Segmentation == nil:
		return Annotation{}, missing(DocumentAnnotations, path("segmentation"))
	}

	return Annotation{ImageID: *r.ImageID, CategoryID: *r.CategoryID, Segmentation: *r.Segmentation}, nil
}

func (r rawCategory) category(i int) (Category, error) {
	switch {
	case r.ID == nil:
		return Category{}, missing(DocumentAnnotations, fmt.Sprintf("categories[%d].id", i))
	case r.Name == nil:
		return Category{}, missing(DocumentAnnotations, fmt.Sprintf("categories[%d].name", i))
	}
	return Category{ID: *r.ID, Name: *r.Name}, nil
}
