package coincidence

import (
	"fmt"
	"math"

	"github.com/ansipixels/hetlattice/lattice"
	"github.com/ansipixels/hetlattice/linalg"
)

// Evaluate builds the supercells M of bottom and N of top (rotated by theta
// degrees), the weighted coincidence cell C = A' + weight*(B' - A'), and the
// resulting stress.
func Evaluate(bottom, top lattice.Lattice, theta float64, m, n linalg.Mat2[int], weight float64) (Result, error) {
	sa := bottom.Supercell(m)
	sb := top.Rotated(theta).Supercell(n)
	cell := lattice.New("coincidence",
		sa.A1.Add(sb.A1.Sub(sa.A1).Scale(weight)),
		sa.A2.Add(sb.A2.Sub(sa.A2).Scale(weight)),
	)
	stress, err := Stress(sa, sb, cell)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Angle:  theta,
		M:      m,
		N:      n,
		Stress: stress,
		Bottom: sa,
		Top:    sb,
		Cell:   cell,
	}, nil
}

// Stress returns the mean in-plane strain, in percent, needed to deform both
// supercells onto cell.
func Stress(bottom, top, cell lattice.Lattice) (float64, error) {
	ga, err := Deformation(bottom, cell)
	if err != nil {
		return 0, fmt.Errorf("bottom deformation: %w", err)
	}
	gb, err := Deformation(top, cell)
	if err != nil {
		return 0, fmt.Errorf("top deformation: %w", err)
	}
	return 100 * (strain(ga) + strain(gb)) / 2, nil
}

// Deformation returns G with to = from · G, using row-vector 3D cells.
func Deformation(from, to lattice.Lattice) (linalg.Mat3[float64], error) {
	inv, err := linalg.Invert3(from.Cell3(1))
	if err != nil {
		return linalg.Mat3[float64]{}, err
	}
	return inv.Mul(to.Cell3(1)), nil
}

// strain is the Frobenius norm of the in-plane block of G - I.
func strain(g linalg.Mat3[float64]) float64 {
	sum := 0.0
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			d := g[r][c]
			if r == c {
				d--
			}
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}
