package effect

import "github.com/fulcrumworks/fulcrum/internal/game/character"

// Shape is the closed set of area-of-effect geometries.
type Shape int

const (
	ShapeCircle Shape = iota // all cells within Size of the anchor
	ShapeLine                // cells along the source->anchor direction, within Size
	ShapeCone                // the spreading wedge toward the anchor, within Size
)

// String returns the data-file name of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeCircle:
		return "circle"
	case ShapeLine:
		return "line"
	case ShapeCone:
		return "cone"
	default:
		return "unknown"
	}
}

// Area describes one area of effect: a shape and its radius/length in cells.
type Area struct {
	Shape Shape
	Size  int
}

// distance is the Chebyshev (chessboard) distance used for grid movement.
func distance(a, b character.Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// sign returns -1, 0, or 1.
func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// inArea reports whether pos falls inside the area anchored at anchor, with
// the direction of lines and cones taken from origin toward anchor.
func inArea(area Area, origin, anchor, pos character.Position) bool {
	switch area.Shape {
	case ShapeCircle:
		return distance(anchor, pos) <= area.Size

	case ShapeLine:
		// Cells along the ray from origin through anchor, starting at the
		// anchor, with no lateral deviation.
		dx, dy := sign(anchor.X-origin.X), sign(anchor.Y-origin.Y)
		if dx == 0 && dy == 0 {
			return pos == anchor
		}
		for step := 0; step < area.Size; step++ {
			cell := character.Position{X: anchor.X + dx*step, Y: anchor.Y + dy*step}
			if pos == cell {
				return true
			}
		}
		return false

	case ShapeCone:
		// A wedge opening from the anchor away from the origin: within Size,
		// moving in the dominant direction, spreading one cell per step.
		dx, dy := sign(anchor.X-origin.X), sign(anchor.Y-origin.Y)
		if dx == 0 && dy == 0 {
			return pos == anchor
		}
		rx, ry := pos.X-anchor.X, pos.Y-anchor.Y
		depth := rx*dx + ry*dy // progress along the primary axis
		if dx != 0 && dy != 0 {
			// Diagonal cones use the deeper axis as depth.
			depth = max(rx*dx, ry*dy)
		}
		if depth < 0 || depth >= area.Size {
			return false
		}
		return distance(anchor, pos) <= depth || pos == anchor

	default:
		return false
	}
}

// TargetsInArea returns the live participants inside the area anchored at
// anchor. The source is excluded unless includeSource is set. Selection is
// deterministic: given identical geometry and participant positions, the
// returned slice preserves the input order.
//
// Precondition: source must be non-nil.
// Postcondition: Returned participants are all live; the source appears only
// when includeSource is true.
func TargetsInArea(area Area, source *character.Sheet, anchor character.Position, participants []*character.Sheet, includeSource bool) []*character.Sheet {
	var out []*character.Sheet
	for _, p := range participants {
		if p.IsDefeated() {
			continue
		}
		if p.ID == source.ID && !includeSource {
			continue
		}
		if inArea(area, source.Pos, anchor, p.Pos) {
			out = append(out, p)
		}
	}
	return out
}
