// Package imaging provides the raster primitives used by the grading pipeline.
//
// This package decodes photographed answer sheets, converts them to smoothed
// grayscale, runs Canny edge detection for sheet boundary search, renders
// diagnostic overlays and crops regions for review. All operations work with
// standard Go image.Image types and use a coordinate system where (0,0) is at
// the top-left corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left), Max is exclusive (bottom-right)
//
// Images produced here (GraySmooth, EdgeMap) always have their origin at
// (0, 0), even when the source image does not.
//
// # Thread Safety
//
// Functions are stateless and never mutate their inputs, so they can be
// called concurrently on different or shared images.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Empty or undecodable image bytes
//   - File I/O errors during image loading
//   - Encoding errors during image output
package imaging
