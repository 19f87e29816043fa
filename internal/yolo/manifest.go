package yolo

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the file name of a fold's dataset descriptor.
const ManifestFile = "dataset.yaml"

// Split names in processing order.
var Splits = []string{"train", "val", "test"}

// Manifest is the dataset descriptor consumed by YOLO trainers.
type Manifest struct {
	Fold  string         `yaml:"-"`
	Path  string         `yaml:"path"`
	Train string         `yaml:"train"`
	Val   string         `yaml:"val"`
	Test  string         `yaml:"test"`
	NC    int            `yaml:"nc"`
	Names map[int]string `yaml:"names"`
}

// NewManifest describes the fold rooted at the absolute path root.
// names must be in class index order.
func NewManifest(fold, root string, names []string) Manifest {
	m := Manifest{
		Fold:  fold,
		Path:  root,
		Train: ImagesDir("train"),
		Val:   ImagesDir("val"),
		Test:  ImagesDir("test"),
		NC:    len(names),
		Names: make(map[int]string, len(names)),
	}
	for i, n := range names {
		m.Names[i] = n
	}
	return m
}

// Marshal renders the manifest as YAML under a header comment naming the fold.
func (m Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Dataset configuration for %s\n", strings.ToUpper(m.Fold))

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseManifest decodes a dataset descriptor.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// ImagesDir returns the relative image directory of split.
func ImagesDir(split string) string {
	return "images/" + split
}

// LabelsDir returns the relative label directory of split.
func LabelsDir(split string) string {
	return "labels/" + split
}
