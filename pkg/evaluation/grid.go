package evaluation

import (
	"math"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/geom"
)

const cellSize = 8.0

type cell struct{ x, y int }

// gridIndex buckets boundary vertices into square cells for nearest
// neighbour queries.
type gridIndex struct {
	cells map[cell][]geom.Point
	lo    geom.Point
	span  int
}

func newGridIndex(bnd *boundary.Boundary) *gridIndex {
	lo, hi := bnd.Bounds()
	idx := &gridIndex{cells: make(map[cell][]geom.Point), lo: lo}
	idx.span = int(math.Max(hi.X-lo.X, hi.Y-lo.Y)/cellSize) + 1
	for _, p := range bnd.Points() {
		c := idx.cellOf(p)
		idx.cells[c] = append(idx.cells[c], p)
	}
	return idx
}

func (g *gridIndex) cellOf(p geom.Point) cell {
	return cell{int(math.Floor((p.X - g.lo.X) / cellSize)), int(math.Floor((p.Y - g.lo.Y) / cellSize))}
}

// nearest returns the distance from q to the closest indexed point,
// scanning rings of cells outward until no closer point is possible.
func (g *gridIndex) nearest(q geom.Point) float64 {
	c := g.cellOf(q)
	best := math.Inf(1)
	// Cells outside the index extent are empty; start where it can matter.
	maxRing := g.span + abs(c.x) + abs(c.y) + 1
	for r := 0; r <= maxRing; r++ {
		// Points in ring r are at least (r-1)*cellSize away.
		if float64(r-1)*cellSize > best {
			break
		}
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				for _, p := range g.cells[cell{c.x + dx, c.y + dy}] {
					best = math.Min(best, p.Dist(q))
				}
			}
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
