package water

// Grid holds flat surface mesh data ready for GPU upload: XZ positions
// only, the vertex shader lifts them by the sampled displacement.
type Grid struct {
	Vertices []float32 // x, z per vertex
	Indices  []uint32
	Cells    int
	Spacing  float32
}

// BuildGrid creates a regular cells x cells grid centered on the origin
// with the given spacing between vertices.
func BuildGrid(cells int, spacing float32) *Grid {
	if cells < 1 {
		cells = 1
	}
	if spacing <= 0 {
		spacing = 1
	}

	side := cells + 1
	half := float32(cells) * spacing / 2

	vertices := make([]float32, 0, side*side*2)
	for z := 0; z < side; z++ {
		for x := 0; x < side; x++ {
			vertices = append(vertices,
				float32(x)*spacing-half,
				float32(z)*spacing-half,
			)
		}
	}

	indices := make([]uint32, 0, cells*cells*6)
	for z := 0; z < cells; z++ {
		for x := 0; x < cells; x++ {
			i := uint32(z*side + x)
			indices = append(indices,
				i, i+uint32(side), i+1,
				i+1, i+uint32(side), i+uint32(side)+1,
			)
		}
	}

	return &Grid{
		Vertices: vertices,
		Indices:  indices,
		Cells:    cells,
		Spacing:  spacing,
	}
}

// Extent returns the grid's side length in world units.
func (g *Grid) Extent() float32 {
	return float32(g.Cells) * g.Spacing
}
