// Package lattice describes 2D Bravais lattices and the 3D cells built from
// them for stacking.
package lattice

import (
	"errors"
	"fmt"
	"math"

	"github.com/ansipixels/hetlattice/linalg"
)

// ErrDegenerate is returned for lattices whose vectors do not span the plane.
var ErrDegenerate = errors.New("lattice: degenerate basis")

// minArea is the smallest cell area (Å²) treated as non-degenerate.
const minArea = 1e-9

// fracTol widens the [0,1) fractional window so points on the cell boundary
// are not lost to rounding.
const fracTol = 1e-6

// Lattice is a 2D lattice spanned by A1 and A2, in Ångström.
type Lattice struct {
	Name string
	A1   linalg.Vec2[float64]
	A2   linalg.Vec2[float64]
}

// New creates a lattice from its two primitive vectors.
func New(name string, a1, a2 linalg.Vec2[float64]) Lattice {
	return Lattice{Name: name, A1: a1, A2: a2}
}

// Hexagonal returns a triangular lattice with lattice constant a, with A1
// along x and A2 at 120°.
func Hexagonal(name string, a float64) Lattice {
	return New(name, linalg.V2(a, 0), linalg.V2(-a/2, a*math.Sqrt(3)/2))
}

// Square returns a square lattice with lattice constant a.
func Square(name string, a float64) Lattice {
	return New(name, linalg.V2(a, 0), linalg.V2(0, a))
}

// Basis returns the matrix whose columns are A1 and A2, so that
// linalg.BasisDot(l.Basis(), m) is the lattice point m1*A1 + m2*A2.
func (l Lattice) Basis() linalg.Mat2[float64] {
	return linalg.Mat2[float64]{
		{l.A1[0], l.A2[0]},
		{l.A1[1], l.A2[1]},
	}
}

// Point returns the lattice point for integer coordinates m.
func (l Lattice) Point(m linalg.Vec2[int]) linalg.Vec2[float64] {
	return linalg.BasisDot(l.Basis(), linalg.Vec2Of[float64](m))
}

// Area returns the unsigned cell area.
func (l Lattice) Area() float64 {
	return math.Abs(l.A1.Cross(l.A2))
}

// Validate checks that the lattice vectors span the plane.
func (l Lattice) Validate() error {
	if a := l.Area(); a < minArea || math.IsNaN(a) {
		return fmt.Errorf("%s: cell area %g: %w", l.Name, a, ErrDegenerate)
	}
	return nil
}

// Supercell returns the lattice spanned by the rows of m expressed in this
// lattice's basis.
func (l Lattice) Supercell(m linalg.Mat2[int]) Lattice {
	return Lattice{
		Name: l.Name,
		A1:   l.Point(linalg.Vec2[int](m[0])),
		A2:   l.Point(linalg.Vec2[int](m[1])),
	}
}

// Rotated returns the lattice turned counter-clockwise by deg degrees.
func (l Lattice) Rotated(deg float64) Lattice {
	// linalg.Rotate turns through twice its angle argument.
	return Lattice{
		Name: l.Name,
		A1:   linalg.Rotate(l.A1, deg/2),
		A2:   linalg.Rotate(l.A2, deg/2),
	}
}

// Cell3 returns the 3D cell with the lattice vectors as in-plane rows and
// (0, 0, height) as the third row.
func (l Lattice) Cell3(height float64) linalg.Mat3[float64] {
	return linalg.Mat3[float64]{
		{l.A1[0], l.A1[1], 0},
		{l.A2[0], l.A2[1], 0},
		{0, 0, height},
	}
}

func (l Lattice) String() string {
	return fmt.Sprintf("%s a1=(%.4f, %.4f) a2=(%.4f, %.4f)", l.Name, l.A1[0], l.A1[1], l.A2[0], l.A2[1])
}

// Fractional returns the coordinates of the cartesian point p in the row
// vector cell, i.e. p · cell⁻¹.
func Fractional(cell linalg.Mat3[float64], p linalg.Vec3[float64]) (linalg.Vec3[float64], error) {
	inv, err := linalg.Invert3(cell)
	if err != nil {
		return linalg.Vec3[float64]{}, fmt.Errorf("fractional coordinates: %w", err)
	}
	return linalg.Vec3DotMat3(p, inv), nil
}

// PointsInCell returns the points of l that fall inside the parallelogram
// spanned by cell, placed at height z. Each periodic image is reported once.
func PointsInCell(l, cell Lattice, z float64) ([]linalg.Vec3[float64], error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := cell.Validate(); err != nil {
		return nil, err
	}
	cellInv, err := linalg.Invert3(cell.Cell3(1))
	if err != nil {
		return nil, fmt.Errorf("invert cell: %w", err)
	}
	latInv, err := linalg.Invert3(l.Cell3(1))
	if err != nil {
		return nil, fmt.Errorf("invert lattice: %w", err)
	}

	// Bound the search by the cell corners expressed in l's coordinates.
	corners := []linalg.Vec2[float64]{
		{0, 0},
		cell.A1,
		cell.A2,
		cell.A1.Add(cell.A2),
	}
	lo := linalg.V2(math.Inf(1), math.Inf(1))
	hi := linalg.V2(math.Inf(-1), math.Inf(-1))
	for _, c := range corners {
		f := linalg.Vec3DotMat3(linalg.V3(c[0], c[1], 0), latInv)
		for k := 0; k < 2; k++ {
			lo[k] = math.Min(lo[k], f[k])
			hi[k] = math.Max(hi[k], f[k])
		}
	}

	var points []linalg.Vec3[float64]
	for i := int(math.Floor(lo[0])) - 1; i <= int(math.Ceil(hi[0]))+1; i++ {
		for j := int(math.Floor(lo[1])) - 1; j <= int(math.Ceil(hi[1]))+1; j++ {
			p := l.Point(linalg.V2(i, j))
			f := linalg.Vec3DotMat3(linalg.V3(p[0], p[1], 0), cellInv)
			if inUnit(f[0]) && inUnit(f[1]) {
				points = append(points, linalg.V3(p[0], p[1], z))
			}
		}
	}
	return points, nil
}

func inUnit(f float64) bool {
	return f > -fracTol && f < 1-fracTol
}
