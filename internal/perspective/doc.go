// Package perspective rectifies a photographed answer sheet.
//
// The sheet boundary is located with the detection package, a planar
// homography is solved from its four ordered corners to an upright
// rectangle, and the photograph is resampled through the inverse transform.
//
// Every failure degrades to the unmodified input image with a tagged Status,
// so callers can always continue with the next stage.
package perspective
