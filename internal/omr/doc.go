// Package omr grades photographed bubble-sheet answer forms.
//
// # Pipeline
//
// A sheet passes through these stages, each consuming the previous output:
//
//  1. Identification: decode the QR code or barcode carrying the student ID
//  2. Normalization: find the sheet boundary and rectify the perspective
//  3. Binarization: a fixed luminance threshold separates marks from paper
//  4. Sampling: the mask is cut into the Layout grid and every bubble's fill
//     ratio is measured
//  5. Resolution: each question becomes a letter, Ambiguous or Blank
//  6. Grading: answers are compared with the key position by position
//
// Only an undecodable image stops a run. Every other problem (no boundary,
// no marker, a bubble region padded away, a key of the wrong length, a
// failed artifact write) is recorded as a Degradation and grading continues.
//
// # Answer Order
//
// Questions are numbered block by block: all rows of the leftmost
// column-block first, top to bottom, then the next block to the right.
// Answer keys must follow the same order.
package omr
