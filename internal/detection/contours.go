package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is one closed outline traced from an edge map.
//
// The outline is represented by the convex hull of an 8-connected component
// of edge pixels. For a sheet boundary the hull follows the paper edge; for
// noise it collapses to a small or thin polygon whose area ranks it low.
type Contour struct {
	// Hull lists the convex hull vertices in boundary order, without
	// repeating the first vertex.
	Hull []Point `json:"hull"`

	// Pixels is the number of edge pixels in the component.
	Pixels int `json:"pixels"`

	// Area is the enclosed hull area in square pixels.
	Area float64 `json:"area"`

	// Perimeter is the closed hull length in pixels.
	Perimeter float64 `json:"perimeter"`
}

// minContourPixels drops components too small to be anything but noise.
const minContourPixels = 10

// FindContours groups the edge pixels of m into 8-connected components and
// returns one Contour per component, largest area first.
//
// Components with fewer than 10 pixels are discarded. Equal areas keep
// their scan order (top-to-bottom, left-to-right by first pixel), so the
// result is deterministic for a given edge map.
func FindContours(m *imaging.EdgeMap) []Contour {
	width, height := m.Width, m.Height
	visited := make([]bool, width*height)
	contours := make([]Contour, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !m.Edges[i] || visited[i] {
				continue
			}
			extremes, count := floodFill(m, visited, x, y)
			if count < minContourPixels {
				continue
			}
			hull := ConvexHull(extremes)
			contours = append(contours, Contour{
				Hull:      hull,
				Pixels:    count,
				Area:      PolygonArea(hull),
				Perimeter: PolygonPerimeter(hull),
			})
		}
	}

	sort.SliceStable(contours, func(i, j int) bool {
		return contours[i].Area > contours[j].Area
	})
	return contours
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large contours. Uses 8-connectivity (includes diagonal neighbors).
// Only the leftmost and rightmost pixel of each row are returned, which is
// sufficient for the convex hull.
func floodFill(m *imaging.EdgeMap, visited []bool, startX, startY int) ([]Point, int) {
	width, height := m.Width, m.Height
	rowMin := make(map[int]int)
	rowMax := make(map[int]int)
	count := 0

	stack := []Point{{X: startX, Y: startY}}
	visited[startY*width+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++

		if v, ok := rowMin[p.Y]; !ok || p.X < v {
			rowMin[p.Y] = p.X
		}
		if v, ok := rowMax[p.Y]; !ok || p.X > v {
			rowMax[p.Y] = p.X
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if visited[j] || !m.Edges[j] {
					continue
				}
				visited[j] = true
				stack = append(stack, Point{X: nx, Y: ny})
			}
		}
	}

	rows := make([]int, 0, len(rowMin))
	for y := range rowMin {
		rows = append(rows, y)
	}
	sort.Ints(rows)

	extremes := make([]Point, 0, 2*len(rows))
	for _, y := range rows {
		extremes = append(extremes, Point{X: rowMin[y], Y: y})
		if rowMax[y] != rowMin[y] {
			extremes = append(extremes, Point{X: rowMax[y], Y: y})
		}
	}
	return extremes, count
}

// ConvexHull returns the convex hull of points using Andrew's monotone chain.
//
// Collinear points are dropped. The first hull vertex is the point with the
// smallest X (smallest Y on ties). Fewer than three distinct points are
// returned as-is after sorting.
func ConvexHull(points []Point) []Point {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	pts = dedupe(pts)
	if len(pts) < 3 {
		return pts
	}

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// PolygonArea returns the absolute shoelace area of a closed polygon.
func PolygonArea(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	for i := range poly {
		j := (i + 1) % len(poly)
		sum += float64(poly[i].X)*float64(poly[j].Y) - float64(poly[j].X)*float64(poly[i].Y)
	}
	return math.Abs(sum) / 2
}

// PolygonPerimeter returns the length of a closed polygon.
func PolygonPerimeter(poly []Point) float64 {
	if len(poly) < 2 {
		return 0
	}
	var sum float64
	for i := range poly {
		sum += distance(poly[i], poly[(i+1)%len(poly)])
	}
	return sum
}

func cross(o, a, b Point) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func distance(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func dedupe(sorted []Point) []Point {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
