package scene

// Scene holds the node list a renderer walks. Bounds queries union the
// per-node caches, so an unchanged scene costs no rescans.
type Scene struct {
	nodes []*Node
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) Add(n *Node) *Node {
	s.nodes = append(s.nodes, n)
	return n
}

func (s *Scene) Remove(n *Node) {
	for i, other := range s.nodes {
		if other == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

func (s *Scene) Nodes() []*Node { return s.nodes }

// InvalidateBounds marks every node's cache stale.
func (s *Scene) InvalidateBounds() {
	for _, n := range s.nodes {
		n.InvalidateBounds()
	}
}

// Bounds unions the extents of all nodes. ok is false for a scene with no
// geometry.
func (s *Scene) Bounds() (box AABB, ok bool) {
	for _, n := range s.nodes {
		nb, valid := n.Bounds()
		if !valid {
			continue
		}
		if !ok {
			box, ok = nb, true
		} else {
			box = box.Union(nb)
		}
	}
	return box, ok
}
