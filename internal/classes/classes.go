// Package classes derives the YOLO class table from COCO categories.
//
// Class indices follow the ascending byte order of the distinct category
// names, so the table depends only on the set of names: reordering or
// renumbering categories never changes it.
package classes

import (
	"slices"

	"github.com/JaimeStill/yolo-folds/internal/coco"
)

// Table is an immutable class index table.
type Table struct {
	names      []string
	byName     map[string]int
	byCategory map[int64]int
}

// New builds the table for categories.
func New(categories []coco.Category) *Table {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	slices.Sort(names)
	names = slices.Compact(names)

	t := &Table{
		names:      names,
		byName:     make(map[string]int, len(names)),
		byCategory: make(map[int64]int, len(categories)),
	}
	for i, n := range names {
		t.byName[n] = i
	}
	for _, c := range categories {
		t.byCategory[c.ID] = t.byName[c.Name]
	}
	return t
}

// Names returns a copy of the class names in index order.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}

// Len returns the number of classes.
func (t *Table) Len() int {
	return len(t.names)
}

// Index returns the class index of name.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.byName[name]
	return i, ok
}

// ForCategory returns the class index of a source category id.
func (t *Table) ForCategory(id int64) (int, bool) {
	i, ok := t.byCategory[id]
	return i, ok
}
