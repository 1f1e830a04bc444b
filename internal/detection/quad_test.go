package detection

import (
	"testing"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// newEdgeMap creates an empty edge map
func newEdgeMap(width, height int) *imaging.EdgeMap {
	return &imaging.EdgeMap{Width: width, Height: height, Edges: make([]bool, width*height)}
}

// drawLine marks edge pixels along a straight line (Bresenham)
func drawLine(m *imaging.EdgeMap, x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if x0 >= 0 && y0 >= 0 && x0 < m.Width && y0 < m.Height {
			m.Edges[y0*m.Width+x0] = true
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawPolygon marks a closed polygon outline
func drawPolygon(m *imaging.EdgeMap, pts ...Point) {
	for i := range pts {
		j := (i + 1) % len(pts)
		drawLine(m, pts[i].X, pts[i].Y, pts[j].X, pts[j].Y)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func near(a, b Point, tol int) bool {
	return abs(a.X-b.X) <= tol && abs(a.Y-b.Y) <= tol
}

func TestOrderCorners(t *testing.T) {
	tests := []struct {
		name string
		pts  [4]Point
		want Quad
	}{
		{
			"axis aligned, shuffled",
			[4]Point{{100, 80}, {10, 10}, {10, 80}, {100, 10}},
			Quad{TopLeft: Point{10, 10}, TopRight: Point{100, 10}, BottomRight: Point{100, 80}, BottomLeft: Point{10, 80}},
		},
		{
			"rotated",
			[4]Point{{20, 140}, {150, 160}, {170, 40}, {30, 20}},
			Quad{TopLeft: Point{30, 20}, TopRight: Point{170, 40}, BottomRight: Point{150, 160}, BottomLeft: Point{20, 140}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderCorners(tt.pts)
			if got != tt.want {
				t.Errorf("OrderCorners: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFindQuad_Rectangle(t *testing.T) {
	m := newEdgeMap(200, 200)
	drawPolygon(m, Point{20, 30}, Point{180, 30}, Point{180, 150}, Point{20, 150})

	search := FindQuad(FindContours(m), 5, 0.02)
	if !search.Found {
		t.Fatalf("expected a quadrilateral, candidates: %+v", search.Candidates)
	}
	if search.Winner != 0 {
		t.Errorf("Winner: got %d, want 0", search.Winner)
	}

	want := Quad{TopLeft: Point{20, 30}, TopRight: Point{180, 30}, BottomRight: Point{180, 150}, BottomLeft: Point{20, 150}}
	if search.Quad != want {
		t.Errorf("Quad: got %+v, want %+v", search.Quad, want)
	}
}

func TestFindQuad_RotatedWithDilation(t *testing.T) {
	m := newEdgeMap(200, 200)
	corners := []Point{{30, 20}, {170, 40}, {150, 160}, {20, 140}}
	drawPolygon(m, corners...)

	search := FindQuad(FindContours(m.Dilate(1)), 5, 0.02)
	if !search.Found {
		t.Fatalf("expected a quadrilateral, candidates: %+v", search.Candidates)
	}

	got := search.Quad.Points()
	want := [4]Point{{30, 20}, {170, 40}, {150, 160}, {20, 140}}
	for i := range want {
		if !near(got[i], want[i], 2) {
			t.Errorf("corner %d: got %+v, want near %+v", i, got[i], want[i])
		}
	}
}

func TestFindQuad_SlightTilt(t *testing.T) {
	// A thin outline tilted by about half a degree: the hull vertex with the
	// smallest coordinates sits partway along an edge, not at a corner
	m := newEdgeMap(1400, 1400)
	want := [4]Point{{100, 100}, {1300, 110}, {1290, 1300}, {90, 1290}}
	drawPolygon(m, want[:]...)

	search := FindQuad(FindContours(m.Dilate(1)), 5, 0.02)
	if !search.Found {
		t.Fatalf("expected a quadrilateral, candidates: %+v", search.Candidates)
	}

	got := search.Quad.Points()
	for i := range want {
		if !near(got[i], want[i], 3) {
			t.Errorf("corner %d: got %+v, want near %+v", i, got[i], want[i])
		}
	}
}

func TestFindQuad_PrefersLargestQuad(t *testing.T) {
	m := newEdgeMap(300, 300)
	drawPolygon(m, Point{10, 10}, Point{290, 10}, Point{290, 290}, Point{10, 290})
	drawPolygon(m, Point{100, 100}, Point{150, 100}, Point{150, 150}, Point{100, 150})

	search := FindQuad(FindContours(m), 5, 0.02)
	if !search.Found {
		t.Fatal("expected a quadrilateral")
	}
	if search.Quad.TopLeft != (Point{10, 10}) || search.Quad.BottomRight != (Point{290, 290}) {
		t.Errorf("expected the outer boundary, got %+v", search.Quad)
	}
	if len(search.Candidates) != 1 {
		t.Errorf("search should stop at the first match, examined %d", len(search.Candidates))
	}
}

func TestFindQuad_SkipsNonQuadCandidates(t *testing.T) {
	m := newEdgeMap(300, 300)
	// Large triangle ranks first but is not a quadrilateral
	drawPolygon(m, Point{10, 280}, Point{150, 10}, Point{290, 280})
	drawPolygon(m, Point{130, 200}, Point{170, 200}, Point{170, 240}, Point{130, 240})

	search := FindQuad(FindContours(m), 5, 0.02)
	if !search.Found {
		t.Fatalf("expected the square to be found, candidates: %+v", search.Candidates)
	}
	if search.Winner != 1 {
		t.Errorf("Winner: got %d, want 1", search.Winner)
	}
	if search.Candidates[0].Vertices != 3 {
		t.Errorf("first candidate vertices: got %d, want 3", search.Candidates[0].Vertices)
	}
}

func TestFindQuad_NoCandidates(t *testing.T) {
	search := FindQuad(FindContours(newEdgeMap(50, 50)), 5, 0.02)
	if search.Found {
		t.Error("empty edge map must not yield a quadrilateral")
	}
	if search.Winner != -1 {
		t.Errorf("Winner: got %d, want -1", search.Winner)
	}
}

func TestFindQuad_LimitBoundsSearch(t *testing.T) {
	m := newEdgeMap(300, 300)
	// Two triangles outrank the square
	drawPolygon(m, Point{5, 140}, Point{140, 5}, Point{140, 140})
	drawPolygon(m, Point{160, 140}, Point{295, 5}, Point{295, 140})
	drawPolygon(m, Point{100, 200}, Point{140, 200}, Point{140, 240}, Point{100, 240})

	if search := FindQuad(FindContours(m), 2, 0.02); search.Found {
		t.Error("square is outside the top-2 candidates and must not be found")
	}
	if search := FindQuad(FindContours(m), 3, 0.02); !search.Found {
		t.Error("square is within the top-3 candidates and should be found")
	}
}

func TestRankContours(t *testing.T) {
	contours := []Contour{{Area: 5}, {Area: 50}, {Area: 20}}

	ranked := RankContours(contours, 2)
	if len(ranked) != 2 || ranked[0].Area != 50 || ranked[1].Area != 20 {
		t.Errorf("RankContours: got %+v", ranked)
	}
	if contours[0].Area != 5 {
		t.Error("RankContours must not reorder its input")
	}
	if all := RankContours(contours, 0); len(all) != 3 {
		t.Errorf("limit 0 should keep all contours, got %d", len(all))
	}
}
