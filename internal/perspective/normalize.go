package perspective

import (
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

var (
	// ErrBoundaryNotFound means no ranked contour simplified to four vertices.
	ErrBoundaryNotFound = errors.New("sheet boundary not found")

	// ErrDegenerateQuad means the accepted quadrilateral is too small or
	// collapsed to produce a usable target rectangle.
	ErrDegenerateQuad = errors.New("degenerate quadrilateral")

	// ErrSingularTransform means the homography could not be solved or inverted.
	ErrSingularTransform = errors.New("singular perspective transform")
)

// Status tags the outcome of a normalization.
type Status string

const (
	StatusRectified        Status = "rectified"
	StatusBoundaryNotFound Status = "boundary_not_found"
	StatusTransformFailed  Status = "transform_failed"
)

// Options tunes boundary detection.
type Options struct {
	// BlurSigma is the Gaussian smoothing applied before edge detection.
	BlurSigma float64

	// CannyLow and CannyHigh are the hysteresis thresholds (0-255 scale).
	CannyLow  float64
	CannyHigh float64

	// Dilate grows edge pixels by this radius to close small gaps at
	// corners before contours are traced.
	Dilate int

	// MaxCandidates bounds the ranked contour search.
	MaxCandidates int

	// ApproxEpsilon is the polygon approximation tolerance as a fraction of
	// each contour's perimeter.
	ApproxEpsilon float64

	// DetectMaxSide downsizes the photograph for boundary detection only.
	// Zero detects at full resolution.
	DetectMaxSide int

	// MinSide is the smallest acceptable target width or height.
	MinSide int
}

// DefaultOptions returns the detection settings used for phone photographs
// of a letter-size sheet.
func DefaultOptions() Options {
	return Options{
		BlurSigma:     1.0,
		CannyLow:      10,
		CannyHigh:     70,
		Dilate:        1,
		MaxCandidates: 5,
		ApproxEpsilon: 0.02,
		DetectMaxSide: 1200,
		MinSide:       16,
	}
}

// Result is the outcome of Normalize.
//
// Image is always usable: the rectified sheet when Status is
// StatusRectified, otherwise the input image itself.
type Result struct {
	Image  image.Image `json:"-"`
	Status Status      `json:"status"`

	// Corners are the ordered source corners (top-left, top-right,
	// bottom-right, bottom-left) in input image coordinates.
	Corners [4]PointF `json:"corners,omitempty"`

	Width  int `json:"width"`
	Height int `json:"height"`

	// Search describes the candidates examined during boundary detection.
	Search detection.QuadSearch `json:"search"`

	// Err explains a fallback. Nil when rectified.
	Err error `json:"-"`
}

// Normalizer rectifies photographed sheets.
type Normalizer struct {
	opts Options
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize finds the sheet boundary in img and warps it to an upright
// rectangle.
//
// When no boundary is found, or the transform cannot be computed, the
// returned Result carries img unchanged with the matching fallback status.
func (n *Normalizer) Normalize(img image.Image) Result {
	b := img.Bounds()

	small, scale := imaging.Downscale(img, n.opts.DetectMaxSide)
	edges := imaging.Canny(imaging.GraySmooth(small, n.opts.BlurSigma), n.opts.CannyLow, n.opts.CannyHigh)
	if n.opts.Dilate > 0 {
		edges = edges.Dilate(n.opts.Dilate)
	}

	search := detection.FindQuad(detection.FindContours(edges), n.opts.MaxCandidates, n.opts.ApproxEpsilon)
	if !search.Found {
		return Result{
			Image:  img,
			Status: StatusBoundaryNotFound,
			Width:  b.Dx(),
			Height: b.Dy(),
			Search: search,
			Err:    ErrBoundaryNotFound,
		}
	}

	var corners [4]PointF
	for i, p := range search.Quad.Points() {
		corners[i] = PointF{X: float64(p.X) * scale, Y: float64(p.Y) * scale}
	}

	fallback := func(err error) Result {
		return Result{
			Image:   img,
			Status:  StatusTransformFailed,
			Corners: corners,
			Width:   b.Dx(),
			Height:  b.Dy(),
			Search:  search,
			Err:     err,
		}
	}

	w, h := TargetSize(corners)
	minSide := n.opts.MinSide
	if minSide < 2 {
		minSide = 2
	}
	if w < minSide || h < minSide {
		return fallback(errors.Wrapf(ErrDegenerateQuad, "target %dx%d below %d px", w, h, minSide))
	}

	dst := [4]PointF{
		{X: 0, Y: 0},
		{X: float64(w - 1), Y: 0},
		{X: float64(w - 1), Y: float64(h - 1)},
		{X: 0, Y: float64(h - 1)},
	}
	fwd, err := Homography(corners, dst)
	if err != nil {
		return fallback(err)
	}
	inv, err := fwd.Inverse()
	if err != nil {
		return fallback(err)
	}

	return Result{
		Image:   Warp(img, inv, w, h),
		Status:  StatusRectified,
		Corners: corners,
		Width:   w,
		Height:  h,
		Search:  search,
	}
}

// TargetSize returns the rectified width and height for ordered corners:
// the longer of each pair of opposing edges, truncated to whole pixels.
func TargetSize(c [4]PointF) (width, height int) {
	tl, tr, br, bl := c[0], c[1], c[2], c[3]
	width = int(math.Max(dist(br, bl), dist(tr, tl)))
	height = int(math.Max(dist(tr, br), dist(tl, bl)))
	return width, height
}

func dist(a, b PointF) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
