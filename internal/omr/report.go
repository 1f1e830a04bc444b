package omr

import (
	"github.com/ironsheep/omr-tools-mcp/internal/identify"
	"github.com/ironsheep/omr-tools-mcp/internal/perspective"
)

// DegradationKind names a condition the pipeline recovered from.
type DegradationKind string

const (
	DegradationBoundaryNotFound DegradationKind = "boundary_not_found"
	DegradationTransformFailed  DegradationKind = "transform_failed"
	DegradationMarkerAbsent     DegradationKind = "marker_absent"
	DegradationDegenerateCell   DegradationKind = "degenerate_cell"
	DegradationLengthMismatch   DegradationKind = "length_mismatch"
	DegradationArtifactFailed   DegradationKind = "artifact_write_failed"
)

// Degradation is one recovered condition, with the stage that hit it.
type Degradation struct {
	Kind   DegradationKind `json:"kind"`
	Stage  string          `json:"stage"`
	Detail string          `json:"detail,omitempty"`
}

// Normalization summarises the perspective stage for a report.
type Normalization struct {
	Status  perspective.Status    `json:"status"`
	Corners [4]perspective.PointF `json:"corners"`
	Width   int                   `json:"width"`
	Height  int                   `json:"height"`
}

// Report is everything known about one graded sheet.
//
// Result is always schema-valid. When the image could not be decoded, Err is
// set and Result holds a zero score with no answers; every other problem is
// listed in Degradations and grading still completes.
type Report struct {
	Result GradingResult `json:"result"`

	// StudentID is the decoded identification marker, empty when absent.
	StudentID      string          `json:"student_id"`
	Identification identify.Result `json:"identification"`

	Normalization Normalization `json:"normalization"`

	// Questions holds the sampled fill ratios when sample retention is on.
	Questions []Question `json:"questions,omitempty"`

	Compared int       `json:"compared"`
	Mismatch *Mismatch `json:"mismatch,omitempty"`

	Degradations []Degradation `json:"degradations"`

	// Artifacts lists the locations of stored diagnostic images.
	Artifacts []string `json:"artifacts,omitempty"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Degraded reports whether any fallback was taken.
func (r *Report) Degraded() bool {
	return len(r.Degradations) > 0
}

// Has reports whether a degradation of kind was recorded.
func (r *Report) Has(kind DegradationKind) bool {
	for _, d := range r.Degradations {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func newReport() *Report {
	return &Report{
		Result:       GradingResult{Answers: Answers{}},
		Degradations: []Degradation{},
	}
}

func (r *Report) fail(err error) *Report {
	r.Result = GradingResult{Answers: Answers{}}
	r.Err = err
	r.Error = err.Error()
	return r
}
