// Package scene is the node graph the frame loop mutates and the renderer
// draws.
package scene

import (
	"github.com/google/uuid"

	"sparkxr/xr/quarkgl"
)

// Node is a transformable scene entity.
//
// With MatrixAutoUpdate set, the local matrix is composed from Position,
// Rotation and Scale. With it cleared, Matrix is used verbatim; SetMatrix
// installs it and keeps the TRS fields in step for readers.
type Node struct {
	ID   uuid.UUID
	Name string

	Position quarkgl.Vec3
	Rotation quarkgl.Quat
	Scale    quarkgl.Vec3

	MatrixAutoUpdate bool
	Matrix           quarkgl.Mat4

	Visible bool
	Mesh    *quarkgl.Mesh

	parent   *Node
	children []*Node
}

// NewNode returns a visible node at the origin.
func NewNode(name string) *Node {
	return &Node{
		ID:               uuid.New(),
		Name:             name,
		Rotation:         quarkgl.QuatIdentity(),
		Scale:            quarkgl.V3(1, 1, 1),
		MatrixAutoUpdate: true,
		Matrix:           quarkgl.Mat4Identity(),
		Visible:          true,
	}
}

func (n *Node) Parent() *Node { return n.parent }

// Children returns the child slice. Callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// Add attaches c to n, detaching it from any previous parent.
func (n *Node) Add(c *Node) {
	if c == nil || c == n {
		return
	}
	if c.parent != nil {
		c.parent.Remove(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

// Remove detaches c and reports whether it was a child of n.
func (n *Node) Remove(c *Node) bool {
	for i, ch := range n.children {
		if ch != c {
			continue
		}
		n.children = append(n.children[:i], n.children[i+1:]...)
		c.parent = nil
		return true
	}
	return false
}

// SetMatrix installs m as the local transform and disables automatic
// recomposition.
func (n *Node) SetMatrix(m quarkgl.Mat4) {
	n.MatrixAutoUpdate = false
	n.Matrix = m
	n.Position, n.Rotation, n.Scale = quarkgl.Mat4Decompose(m)
}

// LocalMatrix returns the node's transform relative to its parent.
func (n *Node) LocalMatrix() quarkgl.Mat4 {
	if !n.MatrixAutoUpdate {
		return n.Matrix
	}
	return quarkgl.Mat4Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix folds the local matrices from the root down to n.
func (n *Node) WorldMatrix() quarkgl.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = quarkgl.Mat4Mul(p.LocalMatrix(), m)
	}
	return m
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Find returns the first node named name in n's subtree, n included.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Clone deep-copies the subtree with fresh IDs. Meshes are shared; geometry
// is never mutated after load.
func (n *Node) Clone() *Node {
	c := *n
	c.ID = uuid.New()
	c.parent = nil
	c.children = make([]*Node, 0, len(n.children))
	for _, ch := range n.children {
		c.Add(ch.Clone())
	}
	return &c
}
