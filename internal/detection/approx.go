package detection

import "math"

// ApproxPolygon simplifies a closed polygon with the Douglas-Peucker
// algorithm.
//
// Vertices closer than epsilon to the simplified outline are removed. The
// polygon is split at two mutually distant vertices (the vertex farthest
// from poly[0], and the vertex farthest from that one) and each half is
// simplified independently. On a convex outline both split vertices are
// extreme points, so a corner is never replaced by a point partway along an
// edge. Polygons with fewer than three vertices are returned unchanged.
func ApproxPolygon(poly []Point, epsilon float64) []Point {
	n := len(poly)
	if n < 3 {
		out := make([]Point, n)
		copy(out, poly)
		return out
	}

	a := farthestFrom(poly, 0)
	b := farthestFrom(poly, a)
	if a > b {
		a, b = b, a
	}

	first := make([]Point, b-a+1)
	copy(first, poly[a:b+1])

	second := make([]Point, 0, n-b+a+1)
	second = append(second, poly[b:]...)
	second = append(second, poly[:a+1]...)

	l := douglasPeucker(first, epsilon)
	r := douglasPeucker(second, epsilon)

	out := make([]Point, 0, len(l)+len(r)-2)
	out = append(out, l[:len(l)-1]...)
	out = append(out, r[:len(r)-1]...)
	return out
}

// farthestFrom returns the index of the vertex farthest from poly[from],
// never from itself.
func farthestFrom(poly []Point, from int) int {
	far := -1
	best := -1.0
	for i := range poly {
		if i == from {
			continue
		}
		if d := distance(poly[from], poly[i]); d > best {
			best = d
			far = i
		}
	}
	return far
}

// douglasPeucker simplifies an open polyline, always keeping both endpoints.
func douglasPeucker(pts []Point, epsilon float64) []Point {
	if len(pts) < 3 {
		return pts
	}

	keep := make([]bool, len(pts))
	keep[0] = true
	keep[len(pts)-1] = true

	type span struct{ lo, hi int }
	stack := []span{{0, len(pts) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := -1
		maxDist := epsilon
		for i := s.lo + 1; i < s.hi; i++ {
			if d := segmentDistance(pts[i], pts[s.lo], pts[s.hi]); d > maxDist {
				maxDist = d
				idx = i
			}
		}
		if idx < 0 {
			continue
		}
		keep[idx] = true
		stack = append(stack, span{s.lo, idx}, span{idx, s.hi})
	}

	out := make([]Point, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

// segmentDistance returns the distance from p to the segment a-b.
func segmentDistance(p, a, b Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return distance(p, a)
	}

	t := (float64(p.X-a.X)*dx + float64(p.Y-a.Y)*dy) / lenSq
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	px := float64(a.X) + t*dx - float64(p.X)
	py := float64(a.Y) + t*dy - float64(p.Y)
	return math.Sqrt(px*px + py*py)
}
