package coincidence

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"fortio.org/log"

	"github.com/ansipixels/hetlattice/lattice"
	"github.com/ansipixels/hetlattice/linalg"
)

// Pair is one coincidence: bottom translation M lands within tolerance of
// the rotated top translation N.
type Pair struct {
	M linalg.Vec2[int]
	N linalg.Vec2[int]
}

// Result is the best supercell found for one twist angle.
type Result struct {
	Angle  float64          // degrees
	M      linalg.Mat2[int] // rows are the bottom supercell vectors in bottom coordinates
	N      linalg.Mat2[int] // rows are the top supercell vectors in top coordinates
	Stress float64          // mean in-plane strain of both layers, percent

	Bottom lattice.Lattice // bottom supercell, unstrained
	Top    lattice.Lattice // rotated top supercell, unstrained
	Cell   lattice.Lattice // weighted coincidence cell
}

// Area returns the area of the coincidence cell in Å².
func (r Result) Area() float64 {
	return r.Cell.Area()
}

// Sites returns the number of lattice sites of both layers in the cell.
func (r Result) Sites() int {
	return r.M.Det() + r.N.Det()
}

func (r Result) String() string {
	return fmt.Sprintf("angle=%.2f M=%v N=%v stress=%.4f%% area=%.3f sites=%d",
		r.Angle, r.M, r.N, r.Stress, r.Area(), r.Sites())
}

// FindPairs returns all (m, n) within [-NMax, NMax]² with
// |A·m - R(theta)·B·n| < Tolerance. Zero translations and translations below
// NMin are skipped.
func FindPairs(bottom, top lattice.Lattice, theta float64, opts Options) []Pair {
	a := bottom.Basis()
	b := top.Basis()

	type point struct {
		n linalg.Vec2[int]
		p linalg.Vec2[float64]
	}
	var tops []point
	for n1 := -opts.NMax; n1 <= opts.NMax; n1++ {
		for n2 := -opts.NMax; n2 <= opts.NMax; n2++ {
			n := linalg.V2(n1, n2)
			if skip(n, opts.NMin) {
				continue
			}
			bn := linalg.BasisDot(b, linalg.Vec2Of[float64](n))
			// Rotate turns through twice its angle argument.
			tops = append(tops, point{n, linalg.Rotate(bn, theta/2)})
		}
	}

	var pairs []Pair
	for m1 := -opts.NMax; m1 <= opts.NMax; m1++ {
		for m2 := -opts.NMax; m2 <= opts.NMax; m2++ {
			m := linalg.V2(m1, m2)
			if skip(m, opts.NMin) {
				continue
			}
			am := linalg.BasisDot(a, linalg.Vec2Of[float64](m))
			for _, t := range tops {
				if linalg.Distance(am, t.p) < opts.Tolerance {
					pairs = append(pairs, Pair{M: m, N: t.n})
				}
			}
		}
	}
	return pairs
}

func skip(v linalg.Vec2[int], nmin int) bool {
	if v.IsZero() {
		return true
	}
	return max(abs(v[0]), abs(v[1])) < nmin
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Supercell picks the smallest right-handed supercell that can be built from
// two pairs and whose eight indices are coprime. Equal areas are decided by
// lower stress. ok is false when no two pairs qualify.
func Supercell(bottom, top lattice.Lattice, theta float64, pairs []Pair, weight float64) (best Result, ok bool) {
	for i := 0; i < len(pairs); i++ {
		for j := i + 1; j < len(pairs); j++ {
			p, q := pairs[i], pairs[j]
			m := linalg.Mat2[int]{p.M, q.M}
			n := linalg.Mat2[int]{p.N, q.N}
			dm, dn := m.Det(), n.Det()
			if dm == 0 || dn == 0 || (dm > 0) != (dn > 0) {
				continue
			}
			if dm < 0 {
				m = linalg.Mat2[int]{q.M, p.M}
				n = linalg.Mat2[int]{q.N, p.N}
				dm = -dm
			}
			if ok && dm > best.M.Det() {
				continue
			}
			indices := []int{m[0][0], m[0][1], m[1][0], m[1][1], n[0][0], n[0][1], n[1][0], n[1][1]}
			if g, err := linalg.ArrayGCD(indices, len(indices)); err != nil || g != 1 {
				continue
			}
			r, err := Evaluate(bottom, top, theta, m, n, weight)
			if err != nil {
				log.Debugf("angle %.2f: skipping %v/%v: %v", theta, m, n, err)
				continue
			}
			if !ok || dm < best.M.Det() || r.Stress < best.Stress {
				best, ok = r, true
			}
		}
	}
	return best, ok
}

// Run searches every angle of opts and returns one result per angle that has
// a supercell, ordered by cell area and then stress.
func Run(bottom, top lattice.Lattice, opts Options) ([]Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := bottom.Validate(); err != nil {
		return nil, fmt.Errorf("bottom layer: %w", err)
	}
	if err := top.Validate(); err != nil {
		return nil, fmt.Errorf("top layer: %w", err)
	}

	angles := AngleList(opts)
	log.LogVf("Searching %d angles, nmax %d, tolerance %.3f", len(angles), opts.NMax, opts.Tolerance)

	var results []Result
	for _, theta := range angles {
		pairs := FindPairs(bottom, top, theta, opts)
		if len(pairs) < 2 {
			continue
		}
		r, ok := Supercell(bottom, top, theta, pairs, opts.Weight)
		if !ok {
			continue
		}
		log.Debugf("angle %.2f: %d pairs, %s", theta, len(pairs), r)
		results = append(results, r)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%d angles at tolerance %.3f: %w", len(angles), opts.Tolerance, ErrNoMatch)
	}

	slices.SortStableFunc(results, func(x, y Result) int {
		if c := cmp.Compare(x.M.Det(), y.M.Det()); c != 0 {
			return c
		}
		return cmp.Compare(x.Stress, y.Stress)
	})
	return results, nil
}

// Match walks the tolerance ladder and returns the lowest-stress result of
// the first tolerance that produces any result. opts.Tolerance is ignored.
func Match(bottom, top lattice.Lattice, opts Options, ladder Ladder) (Result, error) {
	tolerances := ladder.Tolerances()
	if len(tolerances) == 0 {
		return Result{}, fmt.Errorf("empty tolerance ladder %+v: %w", ladder, ErrInvalidOptions)
	}
	for _, tol := range tolerances {
		log.Infof("Checking for tolerance %.2f ...", tol)
		opts.Tolerance = tol
		results, err := Run(bottom, top, opts)
		if errors.Is(err, ErrNoMatch) {
			continue
		}
		if err != nil {
			return Result{}, err
		}
		best := slices.MinFunc(results, func(x, y Result) int {
			return cmp.Compare(x.Stress, y.Stress)
		})
		return best, nil
	}
	return Result{}, fmt.Errorf("tolerances up to %.2f: %w", ladder.Max, ErrNoMatch)
}
