package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/disintegration/imaging"
)

// Decode decodes raw image bytes into an image.Image.
//
// Supported formats are PNG, JPEG, and GIF. JPEG photographs taken by phones
// often carry an EXIF orientation tag instead of rotated pixels; the tag is
// applied here so that later stages always see the sheet the way the camera
// user saw it.
//
// Returns:
//   - image.Image: The decoded image, auto-oriented.
//   - string: The format name reported by the registered decoder ("png", "jpeg", "gif").
//   - error: Non-nil if the bytes are empty or not a supported raster.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("failed to decode image: empty input")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	return img, format, nil
}

// ReadFile reads the raw bytes of an image file without decoding them.
//
// The grading pipeline takes bytes rather than paths so that the single
// blocking read happens at its entry and nowhere else.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return data, nil
}

// ImageInfo contains metadata about a loaded image file.
//
// This struct provides essential information about an image without requiring
// the caller to analyze the image data directly.
type ImageInfo struct {
	// Width is the image width in pixels, after orientation is applied.
	Width int `json:"width"`

	// Height is the image height in pixels, after orientation is applied.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg" or "gif".
	// Detection is based on file contents.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo reads an image file and returns metadata about it.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(path string) (*ImageInfo, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}

	info := Describe(img)
	info.Format = format
	info.FileSizeBytes = int64(len(data))
	return info, nil
}

// Describe reports dimensions, color depth and alpha presence of a decoded image.
func Describe(img image.Image) *ImageInfo {
	bounds := img.Bounds()

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	return &ImageInfo{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     "unknown",
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
	}
}
