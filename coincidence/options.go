// Package coincidence searches for supercells in which two 2D lattices, one
// rotated against the other, nearly coincide.
//
// For every twist angle the search enumerates integer translations m of the
// bottom lattice A and n of the top lattice B and keeps the pairs with
// |A·m - R(θ)·B·n| below the tolerance. Two independent pairs form a
// supercell; the smallest coprime, right-handed one per angle is reported
// together with the strain needed to make both layers commensurate.
package coincidence

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoMatch is returned when no angle yields a coincidence supercell.
	ErrNoMatch = errors.New("coincidence: no matching supercell")

	// ErrInvalidOptions is returned by Options.Validate.
	ErrInvalidOptions = errors.New("coincidence: invalid options")
)

// Options controls the search space.
type Options struct {
	NMax int // largest translation index, searched in [-NMax, NMax]
	NMin int // translations whose largest |index| is below NMin are skipped

	// Angles, when non-empty, replaces the AngleMin..AngleMax range.
	Angles    []float64
	AngleMin  float64 // degrees
	AngleMax  float64 // degrees, inclusive
	AngleStep float64 // degrees

	Tolerance float64 // Å, maximum distance between matching points
	Weight    float64 // coincidence cell is A + Weight*(B-A)
}

// DefaultOptions returns the defaults of the command line tool.
func DefaultOptions() Options {
	return Options{
		NMax:      10,
		NMin:      0,
		AngleMin:  0,
		AngleMax:  90,
		AngleStep: 1,
		Tolerance: 0.1,
		Weight:    0.5,
	}
}

// Validate checks the options for values the search cannot work with.
func (o Options) Validate() error {
	switch {
	case o.NMax < 1:
		return fmt.Errorf("nmax %d must be at least 1: %w", o.NMax, ErrInvalidOptions)
	case o.NMin < 0 || o.NMin > o.NMax:
		return fmt.Errorf("nmin %d must be in [0, %d]: %w", o.NMin, o.NMax, ErrInvalidOptions)
	case !(o.Tolerance > 0):
		return fmt.Errorf("tolerance %g must be positive: %w", o.Tolerance, ErrInvalidOptions)
	case o.Weight < 0 || o.Weight > 1 || math.IsNaN(o.Weight):
		return fmt.Errorf("weight %g must be in [0, 1]: %w", o.Weight, ErrInvalidOptions)
	}
	if len(o.Angles) > 0 {
		return nil
	}
	if !(o.AngleStep > 0) {
		return fmt.Errorf("angle step %g must be positive: %w", o.AngleStep, ErrInvalidOptions)
	}
	if o.AngleMax < o.AngleMin {
		return fmt.Errorf("angle limits [%g, %g] are reversed: %w", o.AngleMin, o.AngleMax, ErrInvalidOptions)
	}
	return nil
}

// AngleList returns the twist angles to search, in degrees.
func AngleList(o Options) []float64 {
	if len(o.Angles) > 0 {
		return append([]float64(nil), o.Angles...)
	}
	if !(o.AngleStep > 0) || o.AngleMax < o.AngleMin {
		return nil
	}
	// Step by index so the upper limit is not lost to accumulated rounding.
	n := int(math.Floor((o.AngleMax-o.AngleMin)/o.AngleStep + 1e-9))
	angles := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		angles = append(angles, o.AngleMin+float64(i)*o.AngleStep)
	}
	return angles
}

// Ladder is the sequence of tolerances tried by Match: Step, 2*Step, ... up
// to and including Max.
type Ladder struct {
	Step float64
	Max  float64
}

// DefaultLadder sweeps 0.05 to 0.2 Å in 0.05 Å steps.
func DefaultLadder() Ladder {
	return Ladder{Step: 0.05, Max: 0.2}
}

// Tolerances expands the ladder.
func (l Ladder) Tolerances() []float64 {
	if !(l.Step > 0) || l.Max < l.Step {
		return nil
	}
	n := int(math.Floor(l.Max/l.Step + 1e-9))
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i+1) * l.Step
	}
	return out
}
