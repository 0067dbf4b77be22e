package scene

import "sparkxr/xr/quarkgl"

// Graph is a rooted scene.
type Graph struct {
	Root *Node
}

func NewGraph() *Graph {
	return &Graph{Root: NewNode("scene")}
}

// Add attaches n under the root.
func (g *Graph) Add(n *Node) { g.Root.Add(n) }

// Remove detaches n from wherever it hangs in the graph.
func (g *Graph) Remove(n *Node) bool {
	if n == nil || n.parent == nil || !g.Contains(n) {
		return false
	}
	return n.parent.Remove(n)
}

// Contains reports whether n is reachable from the root.
func (g *Graph) Contains(n *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == g.Root {
			return true
		}
	}
	return false
}

func (g *Graph) FindByName(name string) *Node { return g.Root.Find(name) }

// Collect appends a draw for every visible mesh. Invisible nodes hide their
// whole subtree.
func (g *Graph) Collect(dst []quarkgl.Draw) []quarkgl.Draw {
	return collect(dst, g.Root, quarkgl.Mat4Identity())
}

func collect(dst []quarkgl.Draw, n *Node, parent quarkgl.Mat4) []quarkgl.Draw {
	if !n.Visible {
		return dst
	}
	world := quarkgl.Mat4Mul(parent, n.LocalMatrix())
	if n.Mesh != nil {
		dst = append(dst, quarkgl.Draw{Mesh: n.Mesh, World: world})
	}
	for _, c := range n.children {
		dst = collect(dst, c, world)
	}
	return dst
}
