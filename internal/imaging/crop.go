package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropResult contains the cropped image data
type CropResult struct {
	// Region is the cropped rectangle in source image coordinates.
	Region image.Rectangle `json:"region"`

	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts r from img, resizes it by scale and returns it as PNG.
//
// A scale of 0 or 1 keeps the original size. Enlarging uses nearest-neighbour
// sampling so bubble edges stay sharp for visual review.
func Crop(img image.Image, r image.Rectangle, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", r)
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}
	if scale < 0 {
		return nil, fmt.Errorf("scale must not be negative, got %v", scale)
	}

	cropped := imaging.Crop(img, r)
	if scale != 0 && scale != 1 {
		w := max(1, int(float64(r.Dx())*scale))
		h := max(1, int(float64(r.Dy())*scale))
		filter := imaging.Lanczos
		if scale > 1 {
			filter = imaging.NearestNeighbor
		}
		cropped = imaging.Resize(cropped, w, h, filter)
	}

	encoded, err := EncodePNGBase64(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Region:      r,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
