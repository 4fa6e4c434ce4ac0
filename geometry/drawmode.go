package geometry

// DrawMode enumerates primitive topologies, numbered after glTF 2.0.
type DrawMode int

const (
	Points DrawMode = iota
	Lines
	LineLoop
	LineStrip
	Triangles
	TriangleStrip
	TriangleFan
)

// IndexStride is the number of indices forming one topology unit: isolated
// lines take 2 and triangle lists 3; every other mode consumes indices one
// at a time.
func (m DrawMode) IndexStride() int {
	switch m {
	case Lines:
		return 2
	case Triangles:
		return 3
	default:
		return 1
	}
}

func (m DrawMode) String() string {
	switch m {
	case Points:
		return "points"
	case Lines:
		return "lines"
	case LineLoop:
		return "line_loop"
	case LineStrip:
		return "line_strip"
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle_strip"
	case TriangleFan:
		return "triangle_fan"
	}
	return "unknown"
}
