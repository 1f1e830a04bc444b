package omr

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/omr-tools-mcp/internal/artifact"
	"github.com/ironsheep/omr-tools-mcp/internal/identify"
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
	"github.com/ironsheep/omr-tools-mcp/internal/perspective"
)

// ErrUndecodableImage means the input bytes are not a supported raster image.
var ErrUndecodableImage = errors.New("undecodable image")

// Config holds the tunable parts of the grading pipeline.
type Config struct {
	Layout Layout

	// BinarizeThreshold is the luminance at or below which a pixel is a mark.
	BinarizeThreshold uint8

	// FillThreshold is the fill ratio an option must exceed to be marked.
	FillThreshold float64

	Perspective perspective.Options

	// ArtifactEncoding is the image format of stored artifacts.
	ArtifactEncoding artifact.Encoding

	// ArtifactOverlay also stores the rectified sheet annotated with the
	// sampled grid and resolved answers.
	ArtifactOverlay bool

	// KeepSamples copies per-question fill ratios into each Report.
	KeepSamples bool
}

// DefaultConfig returns the settings for the standard 30-question sheet.
func DefaultConfig() Config {
	return Config{
		Layout:            DefaultLayout(),
		BinarizeThreshold: DefaultBinarizeThreshold,
		FillThreshold:     DefaultFillThreshold,
		Perspective:       perspective.DefaultOptions(),
		ArtifactEncoding:  artifact.PNG,
	}
}

// Validate checks the layout and thresholds.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if c.FillThreshold < 0 || c.FillThreshold > 1 {
		return errors.Errorf("fill threshold must be within [0, 1], got %v", c.FillThreshold)
	}
	return nil
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) { p.cfg = cfg }
}

// WithLogger sets the logger for degradations and results.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithStore enables diagnostic artifacts.
func WithStore(store artifact.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithDecoder replaces the identification decoder.
func WithDecoder(d *identify.Decoder) Option {
	return func(p *Pipeline) { p.decoder = d }
}

// Pipeline grades photographed answer sheets.
//
// A Pipeline holds only configuration; every call owns its intermediate
// images, so one Pipeline may grade many sheets concurrently.
type Pipeline struct {
	cfg        Config
	log        logrus.FieldLogger
	store      artifact.Store
	decoder    *identify.Decoder
	normalizer *perspective.Normalizer
}

// New builds a Pipeline. Without options it uses DefaultConfig, no artifact
// store and a silent logger.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	if p.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.log = l
	}
	if p.decoder == nil {
		p.decoder = identify.NewDecoder()
	}
	p.normalizer = perspective.NewNormalizer(p.cfg.Perspective)
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Grade decodes raw image bytes and grades the sheet against key.
//
// Grade never fails outright: undecodable bytes produce a Report with Err
// set and a zero result.
func (p *Pipeline) Grade(ctx context.Context, data []byte, key AnswerKey) *Report {
	img, _, err := imaging.Decode(data)
	if err != nil {
		err = errors.Wrap(ErrUndecodableImage, err.Error())
		p.log.WithError(err).WithField("stage", "decode").Error("failed to decode sheet image")
		return newReport().fail(err)
	}
	return p.GradeImage(ctx, img, key)
}

// GradeImage grades an already decoded sheet.
func (p *Pipeline) GradeImage(ctx context.Context, img image.Image, key AnswerKey) *Report {
	report := newReport()
	if img == nil || img.Bounds().Empty() {
		err := errors.Wrap(ErrUndecodableImage, "image is empty")
		p.log.WithError(err).WithField("stage", "decode").Error("failed to decode sheet image")
		return report.fail(err)
	}

	ident := p.decoder.Decode(img)
	report.Identification = ident
	report.StudentID = ident.Text
	if !ident.Found {
		p.degrade(report, DegradationMarkerAbsent, "identify", ident.Reason)
	}

	norm := p.normalizer.Normalize(img)
	report.Normalization = Normalization{
		Status:  norm.Status,
		Corners: norm.Corners,
		Width:   norm.Width,
		Height:  norm.Height,
	}
	switch norm.Status {
	case perspective.StatusBoundaryNotFound:
		p.degrade(report, DegradationBoundaryNotFound, "normalize", norm.Err.Error())
	case perspective.StatusTransformFailed:
		p.degrade(report, DegradationTransformFailed, "normalize", norm.Err.Error())
	}

	mask := Binarize(norm.Image, p.cfg.BinarizeThreshold)

	questions := Sample(mask, p.cfg.Layout)
	degenerate := 0
	for _, q := range questions {
		degenerate += q.Degenerate()
	}
	if degenerate > 0 {
		p.degrade(report, DegradationDegenerateCell, "sample",
			fmt.Sprintf("%d of %d option cells have no pixels after padding", degenerate, len(questions)*p.cfg.Layout.Options))
	}
	if p.cfg.KeepSamples {
		report.Questions = questions
	}

	answers := Resolve(questions, p.cfg.FillThreshold)

	grade := GradeAnswers(answers, key)
	report.Result = grade.GradingResult
	report.Compared = grade.Compared
	report.Mismatch = grade.Mismatch
	if grade.Mismatch != nil {
		p.degrade(report, DegradationLengthMismatch, "grade",
			fmt.Sprintf("%d answers, %d key entries; compared %d", grade.Mismatch.Answers, grade.Mismatch.Key, grade.Compared))
	}

	if p.store != nil {
		p.saveArtifacts(ctx, report, norm.Image, mask, questions, answers)
	}

	p.log.WithFields(logrus.Fields{
		"score":      report.Result.Score,
		"questions":  len(report.Result.Answers),
		"student_id": report.StudentID,
		"degraded":   len(report.Degradations),
	}).Info("sheet graded")

	return report
}

func (p *Pipeline) degrade(r *Report, kind DegradationKind, stage, detail string) {
	r.Degradations = append(r.Degradations, Degradation{Kind: kind, Stage: stage, Detail: detail})
	p.log.WithFields(logrus.Fields{
		"stage":  stage,
		"reason": kind,
	}).Warn(detail)
}

func (p *Pipeline) saveArtifacts(ctx context.Context, r *Report, sheet image.Image, mask *Mask, questions []Question, answers Answers) {
	location, err := artifact.Save(ctx, p.store, mask.Image(), "mask", p.cfg.ArtifactEncoding)
	if err != nil {
		p.degrade(r, DegradationArtifactFailed, "artifact", err.Error())
		return
	}
	if location != "" {
		r.Artifacts = append(r.Artifacts, location)
	}

	if !p.cfg.ArtifactOverlay {
		return
	}
	overlay := Overlay(sheet, p.cfg.Layout, questions, answers, p.cfg.FillThreshold)
	location, err = artifact.Save(ctx, p.store, overlay, "overlay", p.cfg.ArtifactEncoding)
	if err != nil {
		p.degrade(r, DegradationArtifactFailed, "artifact", err.Error())
		return
	}
	if location != "" {
		r.Artifacts = append(r.Artifacts, location)
	}
}

var (
	gridColor   = imaging.ParseColor("#9E9E9E", color.Gray{Y: 158})
	markColor   = imaging.ParseColor("#2E7D32", color.RGBA{G: 128, A: 255})
	answerColor = imaging.ParseColor("#C62828", color.RGBA{R: 200, A: 255})
)

// Overlay draws the sampled bubble regions over the rectified sheet: every
// region is outlined, marked regions are tinted and each question's resolved
// symbol is written in its label gutter.
func Overlay(sheet image.Image, layout Layout, questions []Question, answers Answers, threshold float64) *image.RGBA {
	b := sheet.Bounds()
	var boxes []imaging.Box
	var labels []imaging.Label

	for i, q := range questions {
		for _, c := range q.Cells {
			r := layout.OptionRect(b, q.Column, q.Row, c.Option)
			if r.Empty() {
				continue
			}
			boxes = append(boxes, imaging.Box{Rect: r, Color: gridColor})
			if c.Fill > threshold {
				boxes = append(boxes, imaging.Box{Rect: r, Color: markColor, Fill: true})
			}
		}
		if i < len(answers) {
			gutter := layout.SlotRect(layout.CellRect(b, q.Column, q.Row), 0)
			labels = append(labels, imaging.Label{
				X:     gutter.Min.X + 2,
				Y:     gutter.Min.Y + 2,
				Text:  fmt.Sprintf("%d%s", q.Number, answers[i]),
				Color: answerColor,
			})
		}
	}

	return imaging.Annotate(sheet, boxes, labels)
}
