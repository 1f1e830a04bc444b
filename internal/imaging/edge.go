package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
)

// EdgeMap is a binary edge image produced by Canny.
//
// Edges is row-major with Width*Height entries; true marks an edge pixel.
// Coordinates are 0-based regardless of the source image origin.
type EdgeMap struct {
	Width  int
	Height int
	Edges  []bool
}

// At reports whether (x, y) is an edge pixel. Out-of-range coordinates are never edges.
func (m *EdgeMap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Edges[y*m.Width+x]
}

// Count returns the number of edge pixels.
func (m *EdgeMap) Count() int {
	n := 0
	for _, e := range m.Edges {
		if e {
			n++
		}
	}
	return n
}

// Dilate returns a copy of the map where every edge pixel is grown into a
// (2r+1)x(2r+1) square. Small breaks left by non-maximum suppression at
// corners are closed this way before contours are traced.
func (m *EdgeMap) Dilate(r int) *EdgeMap {
	out := &EdgeMap{Width: m.Width, Height: m.Height, Edges: make([]bool, len(m.Edges))}
	if r <= 0 {
		copy(out.Edges, m.Edges)
		return out
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Edges[y*m.Width+x] {
				continue
			}
			for dy := -r; dy <= r; dy++ {
				py := y + dy
				if py < 0 || py >= m.Height {
					continue
				}
				for dx := -r; dx <= r; dx++ {
					px := x + dx
					if px < 0 || px >= m.Width {
						continue
					}
					out.Edges[py*m.Width+px] = true
				}
			}
		}
	}
	return out
}

// Image renders the map as grayscale: edges white (255), background black.
func (m *EdgeMap) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, e := range m.Edges {
		if e {
			img.Pix[(i/m.Width)*img.Stride+i%m.Width] = 255
		}
	}
	return img
}

// Canny runs Canny edge detection over an already smoothed grayscale image.
//
// Thresholds are gradient magnitudes in 8-bit intensity units, as used by
// common computer-vision libraries (e.g. low=10, high=70 for sheet
// boundaries in photographs).
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y gradients,
//     magnitude = sqrt(Gx² + Gy²), direction = atan2(Gy, Gx)
//
//  2. Non-maximum suppression: thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction
//
//  3. Hysteresis: pixels at or above high are strong edges; pixels at or
//     above low are kept only when 8-connected (transitively) to a strong edge
//
// Smoothing is the caller's responsibility (see GraySmooth); gray is
// expected to have its origin at (0, 0).
func Canny(gray *image.Gray, low, high float64) *EdgeMap {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	m := &EdgeMap{Width: width, Height: height, Edges: make([]bool, width*height)}
	if width < 3 || height < 3 {
		return m
	}

	px := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return float64(gray.Pix[y*gray.Stride+x])
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -px(x-1, y-1) + px(x+1, y-1) -
				2*px(x-1, y) + 2*px(x+1, y) -
				px(x-1, y+1) + px(x+1, y+1)
			gy := -px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1) +
				px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)
			magnitude[y*width+x] = math.Sqrt(gx*gx + gy*gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			angle := direction[i]
			mag := magnitude[i]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1 = magnitude[i-width+1]
				n2 = magnitude[i+width-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1 = magnitude[i-width]
				n2 = magnitude[i+width]
			default:
				n1 = magnitude[i-width-1]
				n2 = magnitude[i+width+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	// Hysteresis: grow strong edges through weak ones
	stack := make([]int, 0, 1024)
	for i, v := range suppressed {
		if v >= high && v > 0 {
			m.Edges[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if !m.Edges[j] && suppressed[j] >= low && suppressed[j] > 0 {
					m.Edges[j] = true
					stack = append(stack, j)
				}
			}
		}
	}

	return m
}

// EdgeDetectResult contains an edge-detected image encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) represent detected
// edges and black pixels (0) represent non-edges.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// EdgeDetect smooths img with the given Gaussian sigma, runs Canny, and
// returns the edge map as a PNG. This is the edge stage of sheet boundary
// detection, exposed for inspecting why a photograph failed to rectify.
func EdgeDetect(img image.Image, sigma, thresholdLow, thresholdHigh float64) (*EdgeDetectResult, error) {
	edges := Canny(GraySmooth(img, sigma), thresholdLow, thresholdHigh)

	encoded, err := EncodePNGBase64(edges.Image())
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	return &EdgeDetectResult{
		Width:       edges.Width,
		Height:      edges.Height,
		EdgePixels:  edges.Count(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EncodePNGBase64 encodes img as PNG and returns it base64 encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
