// Package detection finds the outer boundary of a photographed answer sheet.
//
// # Algorithm Overview
//
// Boundary search runs over a Canny edge map (see imaging.Canny):
//
//  1. Contour Finding: flood-fill groups 8-connected edge pixels into
//     components; each component is represented by its convex hull
//  2. Ranking: contours are ordered by enclosed hull area, largest first,
//     and only the top few are kept
//  3. Approximation: each candidate hull is simplified with Douglas-Peucker
//     using a tolerance proportional to its perimeter
//  4. Selection: the first candidate that simplifies to exactly four
//     vertices is the sheet boundary; its corners are put in canonical
//     (top-left, top-right, bottom-right, bottom-left) order
//
// The search is a pure function of the edge map, so repeating it yields the
// same winner.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Limitations
//
// Hulls ignore concavities, so a sheet with a torn corner still reads as a
// quadrilateral, while a sheet whose edge is partly outside the photograph
// usually does not. Callers fall back to the unrectified image in that case.
package detection
