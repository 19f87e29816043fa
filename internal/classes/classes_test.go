package classes_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/yolo-folds/internal/classes"
	"github.com/JaimeStill/yolo-folds/internal/coco"
)

func TestNew_SortsNames(t *testing.T) {
	table := classes.New([]coco.Category{{ID: 7, Name: "crown"}, {ID: 2, Name: "cavity"}})

	assert.Equal(t, []string{"cavity", "crown"}, table.Names())
	assert.Equal(t, 2, table.Len())

	i, ok := table.Index("cavity")
	require.True(t, ok)
	assert.Equal(t, 0, i)

	i, ok = table.ForCategory(7)
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = table.ForCategory(3)
	assert.False(t, ok)
	_, ok = table.Index("implant")
	assert.False(t, ok)
}

func TestNew_CaseSensitiveOrder(t *testing.T) {
	table := classes.New([]coco.Category{{ID: 1, Name: "filling"}, {ID: 2, Name: "Root"}, {ID: 3, Name: "crown"}})

	assert.Equal(t, []string{"Root", "crown", "filling"}, table.Names())
}

func TestNew_IndependentOfOrderAndIDs(t *testing.T) {
	names := []string{"caries", "crown", "filling", "implant", "root canal", "impacted"}
	base := make([]coco.Category, len(names))
	for i, n := range names {
		base[i] = coco.Category{ID: int64(i + 1), Name: n}
	}
	want := classes.New(base)

	r := rand.New(rand.NewPCG(1, 2))
	for trial := range 20 {
		shuffled := make([]coco.Category, len(base))
		for i, j := range r.Perm(len(base)) {
			shuffled[i] = coco.Category{ID: int64(100*trial + j*3), Name: base[j].Name}
		}

		got := classes.New(shuffled)
		assert.Equal(t, want.Names(), got.Names())
		for _, n := range names {
			wi, _ := want.Index(n)
			gi, _ := got.Index(n)
			assert.Equal(t, wi, gi, n)
		}
		for _, c := range shuffled {
			ci, ok := got.ForCategory(c.ID)
			require.True(t, ok)
			ni, _ := got.Index(c.Name)
			assert.Equal(t, ni, ci)
		}
	}
}

func TestNew_DuplicateNamesShareIndex(t *testing.T) {
	table := classes.New([]coco.Category{{ID: 1, Name: "crown"}, {ID: 2, Name: "cavity"}, {ID: 3, Name: "crown"}})

	assert.Equal(t, []string{"cavity", "crown"}, table.Names())

	a, _ := table.ForCategory(1)
	b, _ := table.ForCategory(3)
	assert.Equal(t, 1, a)
	assert.Equal(t, a, b)
}

func TestNames_ReturnsCopy(t *testing.T) {
	table := classes.New([]coco.Category{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})

	names := table.Names()
	names[0] = "z"

	assert.Equal(t, []string{"a", "b"}, table.Names())
}

func TestNew_Empty(t *testing.T) {
	table := classes.New(nil)

	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Names())
}
