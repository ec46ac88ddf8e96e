package lattice

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansipixels/hetlattice/linalg"
)

func TestPoint(t *testing.T) {
	l := Hexagonal("graphene", 2.46)
	p := l.Point(linalg.V2(1, 1))
	assert.InDelta(t, 1.23, p[0], 1e-9)
	assert.InDelta(t, 2.46*math.Sqrt(3)/2, p[1], 1e-9)

	assert.Equal(t, linalg.V2(0.0, 0.0), l.Point(linalg.V2(0, 0)))
}

func TestArea(t *testing.T) {
	assert.InDelta(t, 4.0, Square("sq", 2).Area(), 1e-12)
	assert.InDelta(t, 2.46*2.46*math.Sqrt(3)/2, Hexagonal("hex", 2.46).Area(), 1e-9)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Square("sq", 3.1).Validate())

	tests := []struct {
		name string
		l    Lattice
	}{
		{"zero", Lattice{Name: "zero"}},
		{"collinear", New("line", linalg.V2(1.0, 1.0), linalg.V2(2.0, 2.0))},
		{"one zero vector", New("half", linalg.V2(1.0, 0.0), linalg.V2(0.0, 0.0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.l.Validate()
			assert.True(t, errors.Is(err, ErrDegenerate), "got %v", err)
		})
	}
}

func TestSupercell(t *testing.T) {
	l := Square("sq", 1.5)
	s := l.Supercell(linalg.Mat2[int]{{2, 1}, {-1, 1}})
	assert.InDelta(t, 3.0, s.A1[0], 1e-12)
	assert.InDelta(t, 1.5, s.A1[1], 1e-12)
	assert.InDelta(t, -1.5, s.A2[0], 1e-12)
	assert.InDelta(t, 1.5, s.A2[1], 1e-12)
	assert.InDelta(t, 3*l.Area(), s.Area(), 1e-9)
}

func TestRotated(t *testing.T) {
	l := Square("sq", 1).Rotated(90)
	assert.InDelta(t, 0.0, l.A1[0], 1e-12)
	assert.InDelta(t, 1.0, l.A1[1], 1e-12)
	assert.InDelta(t, -1.0, l.A2[0], 1e-12)
	assert.InDelta(t, 0.0, l.A2[1], 1e-12)

	h := Hexagonal("hex", 2.46)
	r := h.Rotated(60)
	assert.InDelta(t, h.Area(), r.Area(), 1e-9)
	// A hexagonal lattice maps onto itself under a 60° turn.
	assert.InDelta(t, 1.23, r.A1[0], 1e-9)
}

func TestCell3(t *testing.T) {
	c := Square("sq", 2).Cell3(20)
	assert.Equal(t, linalg.Mat3[float64]{{2, 0, 0}, {0, 2, 0}, {0, 0, 20}}, c)
	assert.InDelta(t, 80.0, linalg.Determinant3(c), 1e-9)
}

func TestFractional(t *testing.T) {
	cell := Hexagonal("hex", 2.46).Cell3(10)
	p := linalg.Vec3DotMat3(linalg.V3(0.25, 0.5, 0.3), cell)
	f, err := Fractional(cell, p)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, f[0], 1e-9)
	assert.InDelta(t, 0.5, f[1], 1e-9)
	assert.InDelta(t, 0.3, f[2], 1e-9)

	_, err = Fractional(Lattice{}.Cell3(1), p)
	assert.ErrorIs(t, err, linalg.ErrSingular)
}

func TestPointsInCell(t *testing.T) {
	tests := []struct {
		name string
		l    Lattice
		m    linalg.Mat2[int]
		want int
	}{
		{"primitive", Square("sq", 1), linalg.Mat2[int]{{1, 0}, {0, 1}}, 1},
		{"2x2 square", Square("sq", 1), linalg.Mat2[int]{{2, 0}, {0, 2}}, 4},
		{"2x2 hexagonal", Hexagonal("hex", 2.46), linalg.Mat2[int]{{2, 0}, {0, 2}}, 4},
		{"sqrt3 hexagonal", Hexagonal("hex", 2.46), linalg.Mat2[int]{{2, 1}, {-1, 1}}, 3},
		{"skewed", Square("sq", 3), linalg.Mat2[int]{{3, 1}, {1, 2}}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := tt.l.Supercell(tt.m)
			pts, err := PointsInCell(tt.l, cell, 4)
			require.NoError(t, err)
			assert.Len(t, pts, tt.want)
			for _, p := range pts {
				assert.Equal(t, 4.0, p[2])
			}
		})
	}
}

func TestPointsInCellDegenerate(t *testing.T) {
	_, err := PointsInCell(Square("sq", 1), Lattice{Name: "empty"}, 0)
	assert.ErrorIs(t, err, ErrDegenerate)
}
