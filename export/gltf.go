// Package export writes coincidence supercells as glTF scenes so they can be
// inspected in any 3D viewer.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/ansipixels/hetlattice/coincidence"
	"github.com/ansipixels/hetlattice/lattice"
	"github.com/ansipixels/hetlattice/linalg"
)

// ErrFormat is returned by Save for file extensions other than .glb and .gltf.
var ErrFormat = errors.New("export: unsupported format")

// Stack is a coincidence result placed in 3D.
type Stack struct {
	Bottom   lattice.Lattice // primitive bottom layer
	Top      lattice.Lattice // primitive top layer, unrotated
	Result   coincidence.Result
	Distance float64 // interlayer distance, Å
	Vacuum   float64 // vacuum above the top layer, Å
}

// Height returns the out-of-plane cell length.
func (s Stack) Height() float64 {
	return s.Distance + s.Vacuum
}

// Layer colours, RGBA in 0-1 range.
var (
	bottomColor = [4]float64{0.20, 0.45, 0.90, 1}
	topColor    = [4]float64{0.90, 0.35, 0.20, 1}
	cellColor   = [4]float64{0.85, 0.85, 0.85, 1}
)

// Sites returns both layers' lattice sites, strained onto the coincidence
// cell. The bottom layer sits at z=0 and the top layer at z=Distance.
func (s Stack) Sites() (bottom, top []linalg.Vec3[float64], err error) {
	r := s.Result
	if bottom, err = strainedSites(s.Bottom, r.Bottom, r.Cell, 0); err != nil {
		return nil, nil, fmt.Errorf("bottom layer: %w", err)
	}
	if top, err = strainedSites(s.Top.Rotated(r.Angle), r.Top, r.Cell, s.Distance); err != nil {
		return nil, nil, fmt.Errorf("top layer: %w", err)
	}
	return bottom, top, nil
}

// strainedSites maps the sites of prim inside super onto cell, keeping their
// fractional coordinates.
func strainedSites(prim, super, cell lattice.Lattice, z float64) ([]linalg.Vec3[float64], error) {
	points, err := lattice.PointsInCell(prim, super, 0)
	if err != nil {
		return nil, err
	}
	from := super.Cell3(1)
	to := cell.Cell3(1)
	out := make([]linalg.Vec3[float64], 0, len(points))
	for _, p := range points {
		f, err := lattice.Fractional(from, p)
		if err != nil {
			return nil, err
		}
		q := linalg.Vec3DotMat3(f, to)
		q[2] = z
		out = append(out, q)
	}
	return out, nil
}

// BuildDocument returns a glTF document with one point mesh per layer and a
// line loop outlining the coincidence cell.
func BuildDocument(s Stack) (*gltf.Document, error) {
	bottom, top, err := s.Sites()
	if err != nil {
		return nil, err
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "hetlattice"

	addMesh(doc, "bottom", bottomColor, gltf.PrimitivePoints, toFloat32(bottom), nil)
	addMesh(doc, "top", topColor, gltf.PrimitivePoints, toFloat32(top), nil)

	c := s.Result.Cell
	corners := [][3]float32{
		{0, 0, 0},
		{float32(c.A1[0]), float32(c.A1[1]), 0},
		{float32(c.A1[0] + c.A2[0]), float32(c.A1[1] + c.A2[1]), 0},
		{float32(c.A2[0]), float32(c.A2[1]), 0},
	}
	addMesh(doc, "cell", cellColor, gltf.PrimitiveLineLoop, corners, []uint16{0, 1, 2, 3})

	return doc, nil
}

func addMesh(doc *gltf.Document, name string, color [4]float64, mode gltf.PrimitiveMode, positions [][3]float32, indices []uint16) {
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name: name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &color,
		},
	})
	material := len(doc.Materials) - 1

	prim := &gltf.Primitive{
		Mode:       mode,
		Attributes: map[string]int{gltf.POSITION: modeler.WritePosition(doc, positions)},
		Material:   gltf.Index(material),
	}
	if indices != nil {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
}

func toFloat32(points []linalg.Vec3[float64]) [][3]float32 {
	out := make([][3]float32, len(points))
	for i, p := range points {
		out[i] = [3]float32(linalg.Vec3Of[float32](p))
	}
	return out
}

// Save writes the stack to path as binary (.glb) or JSON (.gltf) glTF.
func Save(s Stack, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".glb" && ext != ".gltf" {
		return fmt.Errorf("%q (use .glb or .gltf): %w", ext, ErrFormat)
	}
	doc, err := BuildDocument(s)
	if err != nil {
		return fmt.Errorf("build gltf: %w", err)
	}
	if ext == ".glb" {
		err = gltf.SaveBinary(doc, path)
	} else {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("save gltf: %w", err)
	}
	return nil
}
