package detection

import "sort"

// Quad is a quadrilateral with its corners in canonical order.
type Quad struct {
	TopLeft     Point `json:"top_left"`
	TopRight    Point `json:"top_right"`
	BottomRight Point `json:"bottom_right"`
	BottomLeft  Point `json:"bottom_left"`
}

// Points returns the corners as (top-left, top-right, bottom-right, bottom-left).
func (q Quad) Points() [4]Point {
	return [4]Point{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// OrderCorners assigns four points to canonical corners.
//
// top-left has the minimal x+y, bottom-right the maximal x+y, top-right the
// minimal y-x and bottom-left the maximal y-x. Ties go to the earliest point.
// Degenerate input can assign one point to two corners; the homography
// stage rejects such quads.
func OrderCorners(pts [4]Point) Quad {
	tl, br, tr, bl := 0, 0, 0, 0
	for i := 1; i < 4; i++ {
		p := pts[i]
		if p.X+p.Y < pts[tl].X+pts[tl].Y {
			tl = i
		}
		if p.X+p.Y > pts[br].X+pts[br].Y {
			br = i
		}
		if p.Y-p.X < pts[tr].Y-pts[tr].X {
			tr = i
		}
		if p.Y-p.X > pts[bl].Y-pts[bl].X {
			bl = i
		}
	}
	return Quad{
		TopLeft:     pts[tl],
		TopRight:    pts[tr],
		BottomRight: pts[br],
		BottomLeft:  pts[bl],
	}
}

// Candidate summarises one contour examined by FindQuad.
type Candidate struct {
	Rank      int     `json:"rank"`
	Area      float64 `json:"area"`
	Perimeter float64 `json:"perimeter"`
	Vertices  int     `json:"vertices"`
}

// QuadSearch is the outcome of a ranked quadrilateral search.
type QuadSearch struct {
	// Found reports whether a 4-vertex candidate was accepted.
	Found bool `json:"found"`

	// Quad is the accepted boundary with ordered corners. Zero when !Found.
	Quad Quad `json:"quad"`

	// Winner is the rank of the accepted candidate, or -1.
	Winner int `json:"winner"`

	// Candidates lists every candidate examined, in rank order, up to and
	// including the winner.
	Candidates []Candidate `json:"candidates"`
}

// RankContours returns at most limit contours ordered by area, largest first.
// A limit of zero or less keeps every contour.
func RankContours(contours []Contour, limit int) []Contour {
	ranked := make([]Contour, len(contours))
	copy(ranked, contours)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Area > ranked[j].Area
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// FindQuad searches for a sheet boundary among contours.
//
// Contours are ranked by area (largest first) and truncated to limit. Each
// candidate's hull is simplified with ApproxPolygon using a tolerance of
// epsilonFactor times its perimeter; the first candidate whose
// approximation has exactly four vertices is accepted and the search stops.
// Running the search again over the same contours yields the same winner.
func FindQuad(contours []Contour, limit int, epsilonFactor float64) QuadSearch {
	search := QuadSearch{Winner: -1}

	for rank, c := range RankContours(contours, limit) {
		approx := ApproxPolygon(c.Hull, epsilonFactor*c.Perimeter)
		search.Candidates = append(search.Candidates, Candidate{
			Rank:      rank,
			Area:      c.Area,
			Perimeter: c.Perimeter,
			Vertices:  len(approx),
		})
		if len(approx) != 4 {
			continue
		}

		search.Found = true
		search.Winner = rank
		search.Quad = OrderCorners([4]Point{approx[0], approx[1], approx[2], approx[3]})
		return search
	}

	return search
}
