// Package config loads hetlattice run files.
//
// A run file names the two layers and, optionally, the search and stacking
// parameters:
//
//	bottom:
//	  name: graphene
//	  type: hexagonal
//	  a: 2.46
//	top:
//	  name: MoS2
//	  a1: [3.16, 0]
//	  a2: [-1.58, 2.7366]
//	search:
//	  nmax: 10
//	  angle_limits: [0, 30]
//	  angle_step: 0.5
//	  tolerance: 0.1
//	stack:
//	  distance: 3.4
//
// Absent keys keep the defaults of Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ansipixels/hetlattice/coincidence"
	"github.com/ansipixels/hetlattice/lattice"
	"github.com/ansipixels/hetlattice/linalg"
)

// ErrInvalid is returned for run files that cannot describe a search.
var ErrInvalid = errors.New("config: invalid run file")

// File is a parsed run file.
type File struct {
	Bottom LatticeSpec `yaml:"bottom"`
	Top    LatticeSpec `yaml:"top"`
	Search SearchSpec  `yaml:"search,omitempty"`
	Stack  StackSpec   `yaml:"stack,omitempty"`
}

// LatticeSpec describes one layer either by type and lattice constant or by
// its two explicit vectors.
type LatticeSpec struct {
	Name string    `yaml:"name"`
	Type string    `yaml:"type,omitempty"` // hexagonal, square or empty
	A    float64   `yaml:"a,omitempty"`
	A1   []float64 `yaml:"a1,omitempty"`
	A2   []float64 `yaml:"a2,omitempty"`
}

// SearchSpec mirrors coincidence.Options plus the match ladder.
type SearchSpec struct {
	NMax        int       `yaml:"nmax"`
	NMin        int       `yaml:"nmin"`
	Angles      []float64 `yaml:"angles,omitempty"`
	AngleLimits []float64 `yaml:"angle_limits,omitempty"`
	AngleStep   float64   `yaml:"angle_step"`
	Tolerance   float64   `yaml:"tolerance"`
	Weight      float64   `yaml:"weight"`
	LadderStep  float64   `yaml:"ladder_step"`
	LadderMax   float64   `yaml:"ladder_max"`
}

// StackSpec holds the out-of-plane geometry used for export.
type StackSpec struct {
	Distance float64 `yaml:"distance"` // interlayer distance, Å
	Vacuum   float64 `yaml:"vacuum"`   // vacuum thickness, Å
}

// Default returns a File with the command line defaults and no layers.
func Default() File {
	o := coincidence.DefaultOptions()
	l := coincidence.DefaultLadder()
	return File{
		Search: SearchSpec{
			NMax:        o.NMax,
			NMin:        o.NMin,
			AngleLimits: []float64{o.AngleMin, o.AngleMax},
			AngleStep:   o.AngleStep,
			Tolerance:   o.Tolerance,
			Weight:      o.Weight,
			LadderStep:  l.Step,
			LadderMax:   l.Max,
		},
		Stack: StackSpec{
			Distance: 4,
			Vacuum:   15,
		},
	}
}

// Load reads and validates the run file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read run file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a run file on top of Default and validates it. Unknown keys
// are rejected.
func Parse(data []byte) (File, error) {
	f := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("decode: %w: %w", err, ErrInvalid)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// Validate checks both layers, the search options and the stack geometry.
func (f File) Validate() error {
	if _, err := f.Bottom.ToLattice(); err != nil {
		return fmt.Errorf("bottom: %w", err)
	}
	if _, err := f.Top.ToLattice(); err != nil {
		return fmt.Errorf("top: %w", err)
	}
	if n := len(f.Search.AngleLimits); len(f.Search.Angles) == 0 && n != 2 {
		return fmt.Errorf("angle_limits needs 2 values, got %d: %w", n, ErrInvalid)
	}
	if err := f.Options().Validate(); err != nil {
		return fmt.Errorf("search: %w: %w", err, ErrInvalid)
	}
	if f.Stack.Distance < 0 || f.Stack.Vacuum < 0 {
		return fmt.Errorf("stack distance %g and vacuum %g must not be negative: %w",
			f.Stack.Distance, f.Stack.Vacuum, ErrInvalid)
	}
	return nil
}

// Options converts the search section.
func (f File) Options() coincidence.Options {
	s := f.Search
	o := coincidence.Options{
		NMax:      s.NMax,
		NMin:      s.NMin,
		Angles:    s.Angles,
		AngleStep: s.AngleStep,
		Tolerance: s.Tolerance,
		Weight:    s.Weight,
	}
	if len(s.AngleLimits) == 2 {
		o.AngleMin, o.AngleMax = s.AngleLimits[0], s.AngleLimits[1]
	}
	return o
}

// Ladder returns the tolerance ladder for match runs.
func (f File) Ladder() coincidence.Ladder {
	return coincidence.Ladder{Step: f.Search.LadderStep, Max: f.Search.LadderMax}
}

// Lattices returns both layers. Call Validate first.
func (f File) Lattices() (bottom, top lattice.Lattice, err error) {
	if bottom, err = f.Bottom.ToLattice(); err != nil {
		return bottom, top, fmt.Errorf("bottom: %w", err)
	}
	if top, err = f.Top.ToLattice(); err != nil {
		return bottom, top, fmt.Errorf("top: %w", err)
	}
	return bottom, top, nil
}

// ToLattice builds the lattice described by s.
func (s LatticeSpec) ToLattice() (lattice.Lattice, error) {
	var l lattice.Lattice
	switch strings.ToLower(s.Type) {
	case "hexagonal", "hex", "triangular":
		if !(s.A > 0) {
			return l, fmt.Errorf("%s: lattice constant %g must be positive: %w", s.Name, s.A, ErrInvalid)
		}
		l = lattice.Hexagonal(s.Name, s.A)
	case "square":
		if !(s.A > 0) {
			return l, fmt.Errorf("%s: lattice constant %g must be positive: %w", s.Name, s.A, ErrInvalid)
		}
		l = lattice.Square(s.Name, s.A)
	case "":
		if len(s.A1) != 2 || len(s.A2) != 2 {
			return l, fmt.Errorf("%s: a1 and a2 need 2 components each, got %d and %d: %w",
				s.Name, len(s.A1), len(s.A2), ErrInvalid)
		}
		l = lattice.New(s.Name, linalg.V2(s.A1[0], s.A1[1]), linalg.V2(s.A2[0], s.A2[1]))
	default:
		return l, fmt.Errorf("%s: unknown lattice type %q: %w", s.Name, s.Type, ErrInvalid)
	}
	if err := l.Validate(); err != nil {
		return l, fmt.Errorf("%w: %w", err, ErrInvalid)
	}
	return l, nil
}
