package export

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansipixels/hetlattice/coincidence"
	"github.com/ansipixels/hetlattice/lattice"
	"github.com/ansipixels/hetlattice/linalg"
)

func sqrt3Stack(t *testing.T) Stack {
	t.Helper()
	bottom := lattice.Hexagonal("a", 1)
	top := lattice.Hexagonal("b", math.Sqrt(3))
	o := coincidence.DefaultOptions()
	o.NMax = 3
	o.Angles = []float64{30}
	results, err := coincidence.Run(bottom, top, o)
	require.NoError(t, err)
	return Stack{Bottom: bottom, Top: top, Result: results[0], Distance: 3.4, Vacuum: 15}
}

func TestSites(t *testing.T) {
	s := sqrt3Stack(t)
	bottom, top, err := s.Sites()
	require.NoError(t, err)
	assert.Len(t, bottom, 3)
	assert.Len(t, top, 1)
	for _, p := range bottom {
		assert.Equal(t, 0.0, p[2])
	}
	for _, p := range top {
		assert.Equal(t, 3.4, p[2])
	}
	assert.InDelta(t, 18.4, s.Height(), 1e-12)
}

func TestSitesStrained(t *testing.T) {
	bottom := lattice.Square("a", 1)
	top := lattice.Square("b", 1.02)
	cell := lattice.Square("c", 1.01)
	s := Stack{
		Bottom: bottom,
		Top:    top,
		Result: coincidence.Result{
			M:      linalg.Mat2[int]{{2, 0}, {0, 2}},
			N:      linalg.Mat2[int]{{2, 0}, {0, 2}},
			Bottom: bottom.Supercell(linalg.Mat2[int]{{2, 0}, {0, 2}}),
			Top:    top.Supercell(linalg.Mat2[int]{{2, 0}, {0, 2}}),
			Cell:   cell.Supercell(linalg.Mat2[int]{{2, 0}, {0, 2}}),
		},
		Distance: 4,
	}
	b, tp, err := s.Sites()
	require.NoError(t, err)
	require.Len(t, b, 4)
	require.Len(t, tp, 4)
	// Both layers land on the 1.01 grid.
	for _, p := range append(b, tp...) {
		for k := 0; k < 2; k++ {
			steps := p[k] / 1.01
			assert.InDelta(t, math.Round(steps), steps, 1e-9)
		}
	}
}

func TestBuildDocument(t *testing.T) {
	doc, err := BuildDocument(sqrt3Stack(t))
	require.NoError(t, err)
	require.Len(t, doc.Meshes, 3)
	require.Len(t, doc.Nodes, 3)
	require.Len(t, doc.Materials, 3)
	assert.Equal(t, []int{0, 1, 2}, doc.Scenes[0].Nodes)

	names := []string{doc.Meshes[0].Name, doc.Meshes[1].Name, doc.Meshes[2].Name}
	assert.Equal(t, []string{"bottom", "top", "cell"}, names)

	assert.Equal(t, gltf.PrimitivePoints, doc.Meshes[0].Primitives[0].Mode)
	assert.Equal(t, gltf.PrimitiveLineLoop, doc.Meshes[2].Primitives[0].Mode)

	pos := doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION]
	assert.Equal(t, 3, doc.Accessors[pos].Count)
	pos = doc.Meshes[1].Primitives[0].Attributes[gltf.POSITION]
	assert.Equal(t, 1, doc.Accessors[pos].Count)
}

func TestSaveRoundTrip(t *testing.T) {
	s := sqrt3Stack(t)
	for _, name := range []string{"stack.glb", "stack.gltf"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(s, path))

			doc, err := gltf.Open(path)
			require.NoError(t, err)
			require.Len(t, doc.Meshes, 3)
			assert.Equal(t, "hetlattice", doc.Asset.Generator)
		})
	}
}

func TestSaveRejectsFormat(t *testing.T) {
	err := Save(sqrt3Stack(t), filepath.Join(t.TempDir(), "stack.obj"))
	assert.ErrorIs(t, err, ErrFormat)
}
