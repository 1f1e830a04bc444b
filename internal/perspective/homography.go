package perspective

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// PointF is a sub-pixel coordinate.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Matrix is a 3x3 projective transform in row-major order.
//
//	| m[0] m[1] m[2] |   | x |
//	| m[3] m[4] m[5] | * | y |
//	| m[6] m[7] m[8] |   | 1 |
type Matrix [9]float64

// Identity is the transform that leaves every point in place.
var Identity = Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Apply maps p through the transform. ok is false when p maps to infinity.
func (m Matrix) Apply(p PointF) (PointF, bool) {
	w := m[6]*p.X + m[7]*p.Y + m[8]
	if math.Abs(w) < 1e-12 {
		return PointF{}, false
	}
	return PointF{
		X: (m[0]*p.X + m[1]*p.Y + m[2]) / w,
		Y: (m[3]*p.X + m[4]*p.Y + m[5]) / w,
	}, true
}

// Inverse returns the inverse transform.
func (m Matrix) Inverse() (Matrix, error) {
	a := mat.NewDense(3, 3, m[:])

	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return Matrix{}, errors.Wrap(ErrSingularTransform, err.Error())
	}

	var out Matrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	if !out.finite() {
		return Matrix{}, errors.Wrap(ErrSingularTransform, "inverse has non-finite entries")
	}
	return out, nil
}

func (m Matrix) finite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Homography computes the projective transform that maps each src[i] onto
// dst[i].
//
// The transform is normalised so that m[8] = 1, leaving eight unknowns
// solved from the 8x8 linear system formed by the four correspondences:
//
//	u = (h0 x + h1 y + h2) / (h6 x + h7 y + 1)
//	v = (h3 x + h4 y + h5) / (h6 x + h7 y + 1)
//
// Coordinates are scaled into [-1, 1] before solving to keep the system well
// conditioned for large photographs. Three collinear source points make the
// system singular and yield ErrSingularTransform.
func Homography(src, dst [4]PointF) (Matrix, error) {
	s := 1.0
	for i := 0; i < 4; i++ {
		s = math.Max(s, math.Max(math.Abs(src[i].X), math.Abs(src[i].Y)))
		s = math.Max(s, math.Max(math.Abs(dst[i].X), math.Abs(dst[i].Y)))
	}

	A := mat.NewDense(8, 8, nil)
	B := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		x, y := src[i].X/s, src[i].Y/s
		u, v := dst[i].X/s, dst[i].Y/s

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		A.Set(i*2, 6, -u*x)
		A.Set(i*2, 7, -u*y)
		B.SetVec(i*2, u)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		A.Set(i*2+1, 6, -v*x)
		A.Set(i*2+1, 7, -v*y)
		B.SetVec(i*2+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(A, B); err != nil {
		return Matrix{}, errors.Wrap(ErrSingularTransform, err.Error())
	}

	// Undo the scaling: H = S * Hn * S^-1 with S = diag(s, s, 1)
	m := Matrix{
		h.AtVec(0), h.AtVec(1), h.AtVec(2) * s,
		h.AtVec(3), h.AtVec(4), h.AtVec(5) * s,
		h.AtVec(6) / s, h.AtVec(7) / s, 1,
	}
	if !m.finite() {
		return Matrix{}, errors.Wrap(ErrSingularTransform, "solution has non-finite entries")
	}
	return m, nil
}
