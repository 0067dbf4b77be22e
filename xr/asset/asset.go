// Package asset loads model documents into scene subgraphs plus animation
// clips.
//
// A model document is YAML:
//
//	name: reticle
//	root:
//	  name: reticle
//	  rotate: [-90, 0, 0]
//	  mesh: {primitive: ring, inner: 0.15, outer: 0.2, segments: 32, color: "#ffffff", unlit: true}
//	  children: [...]
//	clips:
//	  - name: sway
//	    tracks:
//	      - {node: petals, property: rotation, times: [0, 1], values: [...]}
//
// Primitives are box, plane, ring, torus and cone. Rotations are Euler angles
// in degrees applied X, then Y, then Z.
package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"sparkxr/xr/anim"
	"sparkxr/xr/quarkgl"
	"sparkxr/xr/scene"
)

var (
	ErrNotFound     = errors.New("asset not found")
	ErrInvalidModel = errors.New("invalid model")
)

// Model is a loaded subgraph and the clips that animate it.
type Model struct {
	URI   string
	Root  *scene.Node
	Clips []*anim.Clip
}

// Clone returns an independent copy of the node tree. Clips and meshes are
// shared; neither is mutated after load.
func (m *Model) Clone() *Model {
	return &Model{URI: m.URI, Root: m.Root.Clone(), Clips: m.Clips}
}

// Loader resolves a URI to a model.
type Loader interface {
	Load(ctx context.Context, uri string) (*Model, error)
}

type document struct {
	Name  string    `yaml:"name"`
	Root  *nodeDoc  `yaml:"root"`
	Clips []clipDoc `yaml:"clips"`
}

type nodeDoc struct {
	Name     string     `yaml:"name"`
	Position []float32  `yaml:"position"`
	Rotate   []float32  `yaml:"rotate"`
	Scale    []float32  `yaml:"scale"`
	Visible  *bool      `yaml:"visible"`
	Mesh     *meshDoc   `yaml:"mesh"`
	Children []*nodeDoc `yaml:"children"`
}

type meshDoc struct {
	Primitive string    `yaml:"primitive"`
	Size      []float32 `yaml:"size"`
	Radius    float32   `yaml:"radius"`
	Tube      float32   `yaml:"tube"`
	Inner     float32   `yaml:"inner"`
	Outer     float32   `yaml:"outer"`
	Height    float32   `yaml:"height"`
	Segments  int       `yaml:"segments"`
	Color     string    `yaml:"color"`
	Unlit     bool      `yaml:"unlit"`
}

type clipDoc struct {
	Name     string     `yaml:"name"`
	Duration float64    `yaml:"duration"`
	Tracks   []trackDoc `yaml:"tracks"`
}

type trackDoc struct {
	Node     string    `yaml:"node"`
	Property string    `yaml:"property"`
	Times    []float64 `yaml:"times"`
	Values   []float32 `yaml:"values"`
}

// Decode parses a model document. Unknown fields are rejected.
func Decode(uri string, data []byte) (*Model, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, uri, err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("%w: %s: no root node", ErrInvalidModel, uri)
	}
	root, err := buildNode(doc.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, uri, err)
	}
	if root.Name == "" {
		root.Name = doc.Name
	}

	m := &Model{URI: uri, Root: root}
	for _, cd := range doc.Clips {
		c := &anim.Clip{Name: cd.Name, Duration: cd.Duration}
		for _, td := range cd.Tracks {
			t := anim.Track{Node: td.Node, Property: anim.Property(td.Property), Times: td.Times, Values: td.Values}
			if err := t.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %s: clip %s: %v", ErrInvalidModel, uri, cd.Name, err)
			}
			c.Tracks = append(c.Tracks, t)
		}
		m.Clips = append(m.Clips, c)
	}
	return m, nil
}

func buildNode(d *nodeDoc) (*scene.Node, error) {
	n := scene.NewNode(d.Name)
	if d.Visible != nil {
		n.Visible = *d.Visible
	}

	switch len(d.Position) {
	case 0:
	case 3:
		n.Position = quarkgl.V3(d.Position[0], d.Position[1], d.Position[2])
	default:
		return nil, fmt.Errorf("node %s: position needs 3 values", d.Name)
	}

	switch len(d.Rotate) {
	case 0:
	case 3:
		n.Rotation = euler(d.Rotate[0], d.Rotate[1], d.Rotate[2])
	default:
		return nil, fmt.Errorf("node %s: rotate needs 3 values", d.Name)
	}

	switch len(d.Scale) {
	case 0:
	case 1:
		n.Scale = quarkgl.V3(d.Scale[0], d.Scale[0], d.Scale[0])
	case 3:
		n.Scale = quarkgl.V3(d.Scale[0], d.Scale[1], d.Scale[2])
	default:
		return nil, fmt.Errorf("node %s: scale needs 1 or 3 values", d.Name)
	}

	if d.Mesh != nil {
		mesh, err := buildMesh(d.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", d.Name, err)
		}
		n.Mesh = mesh
	}

	for _, cd := range d.Children {
		if cd == nil {
			continue
		}
		c, err := buildNode(cd)
		if err != nil {
			return nil, err
		}
		n.Add(c)
	}
	return n, nil
}

func euler(xDeg, yDeg, zDeg float32) quarkgl.Quat {
	rad := func(d float32) quarkgl.Scalar { return quarkgl.Scalar(float64(d) * math.Pi / 180) }
	qx := quarkgl.QuatFromAxisAngle(quarkgl.V3(1, 0, 0), rad(xDeg))
	qy := quarkgl.QuatFromAxisAngle(quarkgl.V3(0, 1, 0), rad(yDeg))
	qz := quarkgl.QuatFromAxisAngle(quarkgl.V3(0, 0, 1), rad(zDeg))
	return qz.Mul(qy.Mul(qx)).Normalize()
}
