package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ironsheep/omr-tools-mcp/internal/identify"
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
	"github.com/ironsheep/omr-tools-mcp/internal/omr"
	"github.com/ironsheep/omr-tools-mcp/internal/perspective"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "omr_grade", "omr_normalize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// A degraded grading is not an error: its report lists the degradations.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Warn("tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Image inspection
	case "image_load":
		return s.handleImageLoad(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	// Pipeline stages
	case "omr_decode_id":
		return s.handleDecodeID(args)
	case "omr_normalize":
		return s.handleNormalize(args)
	case "omr_binarize":
		return s.handleBinarize(args)
	case "omr_sample_grid":
		return s.handleSampleGrid(args)
	case "omr_resolve":
		return s.handleResolve(args)
	case "omr_grade_answers":
		return s.handleGradeAnswers(args)
	case "omr_crop_question":
		return s.handleCropQuestion(args)

	// End-to-end grading
	case "omr_grade":
		return s.handleGrade(ctx, args)
	case "omr_grade_batch":
		return s.handleGradeBatch(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadImage reads and decodes the image at path.
func loadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	data, err := imaging.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := imaging.Decode(data)
	if err != nil {
		return nil, errors.Wrap(omr.ErrUndecodableImage, err.Error())
	}
	return img, nil
}

// layoutArgs are optional per-call grid overrides. Zero values keep the
// configured layout.
type layoutArgs struct {
	Rows          int      `json:"rows"`
	Columns       int      `json:"columns"`
	Options       int      `json:"options"`
	Padding       *int     `json:"padding"`
	FillThreshold *float64 `json:"fill_threshold"`
}

// configFor applies overrides to the server configuration.
func (s *Server) configFor(l layoutArgs) (omr.Config, bool) {
	cfg := s.cfg
	changed := false
	if l.Rows > 0 {
		cfg.Layout.Rows = l.Rows
		changed = true
	}
	if l.Columns > 0 {
		cfg.Layout.Columns = l.Columns
		changed = true
	}
	if l.Options > 0 {
		cfg.Layout.Options = l.Options
		changed = true
	}
	if l.Padding != nil {
		cfg.Layout.Padding = *l.Padding
		changed = true
	}
	if l.FillThreshold != nil {
		cfg.FillThreshold = *l.FillThreshold
		changed = true
	}
	return cfg, changed
}

// pipelineFor returns the shared pipeline, or a new one when the call
// overrides the layout.
func (s *Server) pipelineFor(l layoutArgs) (*omr.Pipeline, error) {
	cfg, changed := s.configFor(l)
	if !changed {
		return s.pipeline, nil
	}
	return s.newPipeline(cfg)
}

// parseKey accepts a key as a JSON string ("ABCD", "A,B,C,D") or an array
// of letters or 1-based option numbers.
func parseKey(raw json.RawMessage, options int) (omr.AnswerKey, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.Wrap(omr.ErrInvalidKey, "key is required")
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return omr.ParseKeyString(str, options)
	}

	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrap(omr.ErrInvalidKey, "key must be a string or an array")
	}
	entries := make([]string, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			entries[i] = v
		case float64:
			entries[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, errors.Wrapf(omr.ErrInvalidKey, "entry %d has unsupported type %T", i+1, item)
		}
	}
	return omr.ParseKey(entries, options)
}

// parseAnswers accepts resolved answers as a string ("AX?B") or an array of
// one-character symbols.
func parseAnswers(raw json.RawMessage) (omr.Answers, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		answers := make(omr.Answers, 0, len(str))
		for _, r := range str {
			var sym omr.Symbol
			if err := sym.UnmarshalText([]byte(string(r))); err != nil {
				return nil, err
			}
			answers = append(answers, sym)
		}
		return answers, nil
	}

	var answers omr.Answers
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, errors.Wrap(err, "answers must be a string or an array of symbols")
	}
	return answers, nil
}

// === Image Inspection Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(a.Path)
}

type imageEdgeDetectArgs struct {
	Path          string   `json:"path"`
	ThresholdLow  float64  `json:"threshold_low"`
	ThresholdHigh float64  `json:"threshold_high"`
	Sigma         *float64 `json:"sigma"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ThresholdLow == 0 {
		a.ThresholdLow = s.cfg.Perspective.CannyLow
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = s.cfg.Perspective.CannyHigh
	}
	sigma := s.cfg.Perspective.BlurSigma
	if a.Sigma != nil {
		sigma = *a.Sigma
	}
	img, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, sigma, a.ThresholdLow, a.ThresholdHigh)
}

// === Pipeline Stage Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleDecodeID(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	return identify.NewDecoder().Decode(img), nil
}

// normalizeResult is perspective.Result with the rectified image attached.
type normalizeResult struct {
	perspective.Result
	Reason      string `json:"reason,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

type normalizeArgs struct {
	Path         string `json:"path"`
	IncludeImage *bool  `json:"include_image"`
}

func (s *Server) handleNormalize(args json.RawMessage) (interface{}, error) {
	var a normalizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	res := perspective.NewNormalizer(s.cfg.Perspective).Normalize(img)
	out := normalizeResult{Result: res}
	if res.Err != nil {
		out.Reason = res.Err.Error()
	}
	if a.IncludeImage == nil || *a.IncludeImage {
		encoded, err := imaging.EncodePNGBase64(res.Image)
		if err != nil {
			return nil, err
		}
		out.ImageBase64 = encoded
		out.MimeType = "image/png"
	}
	return out, nil
}

type binarizeArgs struct {
	Path      string `json:"path"`
	Threshold *int   `json:"threshold"`
	Normalize *bool  `json:"normalize"`
}

type binarizeResult struct {
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Threshold   int                `json:"threshold"`
	Foreground  float64            `json:"foreground_fraction"`
	Status      perspective.Status `json:"normalization_status,omitempty"`
	ImageBase64 string             `json:"image_base64"`
	MimeType    string             `json:"mime_type"`
}

func (s *Server) handleBinarize(args json.RawMessage) (interface{}, error) {
	var a binarizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	threshold := int(s.cfg.BinarizeThreshold)
	if a.Threshold != nil {
		if *a.Threshold < 0 || *a.Threshold > 255 {
			return nil, fmt.Errorf("threshold must be between 0 and 255, got %d", *a.Threshold)
		}
		threshold = *a.Threshold
	}
	img, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	out := binarizeResult{Threshold: threshold, MimeType: "image/png"}
	if a.Normalize == nil || *a.Normalize {
		res := perspective.NewNormalizer(s.cfg.Perspective).Normalize(img)
		img = res.Image
		out.Status = res.Status
	}

	mask := omr.Binarize(img, uint8(threshold))
	out.Width = mask.Width
	out.Height = mask.Height
	out.Foreground = mask.Fraction()
	out.ImageBase64, err = imaging.EncodePNGBase64(mask.Image())
	if err != nil {
		return nil, err
	}
	return out, nil
}

type sampleGridArgs struct {
	Path string `json:"path"`
	layoutArgs
}

type sampleGridResult struct {
	Layout        omr.Layout         `json:"layout"`
	Normalization perspective.Status `json:"normalization_status"`
	Questions     []omr.Question     `json:"questions"`
	Answers       omr.Answers        `json:"answers"`
}

func (s *Server) handleSampleGrid(args json.RawMessage) (interface{}, error) {
	var a sampleGridArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, _ := s.configFor(a.layoutArgs)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	img, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	res := perspective.NewNormalizer(cfg.Perspective).Normalize(img)
	questions := omr.Sample(omr.Binarize(res.Image, cfg.BinarizeThreshold), cfg.Layout)
	return sampleGridResult{
		Layout:        cfg.Layout,
		Normalization: res.Status,
		Questions:     questions,
		Answers:       omr.Resolve(questions, cfg.FillThreshold),
	}, nil
}

type resolveArgs struct {
	Fills     [][]float64 `json:"fills"`
	Threshold *float64    `json:"threshold"`
}

type resolveResult struct {
	Answers omr.Answers `json:"answers"`
	Text    string      `json:"text"`
}

func (s *Server) handleResolve(args json.RawMessage) (interface{}, error) {
	var a resolveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	threshold := s.cfg.FillThreshold
	if a.Threshold != nil {
		threshold = *a.Threshold
	}

	answers := make(omr.Answers, len(a.Fills))
	for i, fills := range a.Fills {
		if len(fills) > omr.MaxOptions {
			return nil, fmt.Errorf("question %d has %d options, at most %d are supported", i+1, len(fills), omr.MaxOptions)
		}
		answers[i] = omr.ResolveFills(fills, threshold)
	}
	return resolveResult{Answers: answers, Text: answers.String()}, nil
}

type gradeAnswersArgs struct {
	Answers json.RawMessage `json:"answers"`
	Key     json.RawMessage `json:"key"`
	Options int             `json:"options"`
}

func (s *Server) handleGradeAnswers(args json.RawMessage) (interface{}, error) {
	var a gradeAnswersArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Options == 0 {
		a.Options = s.cfg.Layout.Options
	}
	answers, err := parseAnswers(a.Answers)
	if err != nil {
		return nil, err
	}
	key, err := parseKey(a.Key, a.Options)
	if err != nil {
		return nil, err
	}
	return omr.GradeAnswers(answers, key), nil
}

type cropQuestionArgs struct {
	Path     string   `json:"path"`
	Question int      `json:"question"`
	Scale    *float64 `json:"scale"`
	layoutArgs
}

type cropQuestionResult struct {
	*imaging.CropResult
	Question omr.Question `json:"question"`
	Answer   omr.Symbol   `json:"answer"`
}

// handleCropQuestion returns one question cell of the rectified sheet,
// enlarged for review, together with its sampled fills.
func (s *Server) handleCropQuestion(args json.RawMessage) (interface{}, error) {
	var a cropQuestionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, _ := s.configFor(a.layoutArgs)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	column, row, ok := cfg.Layout.Locate(a.Question)
	if !ok {
		return nil, fmt.Errorf("question must be between 1 and %d, got %d", cfg.Layout.Questions(), a.Question)
	}
	scale := 3.0
	if a.Scale != nil {
		scale = *a.Scale
	}
	img, err := loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	sheet := perspective.NewNormalizer(cfg.Perspective).Normalize(img).Image
	crop, err := imaging.Crop(sheet, cfg.Layout.CellRect(sheet.Bounds(), column, row), scale)
	if err != nil {
		return nil, err
	}

	q := omr.Sample(omr.Binarize(sheet, cfg.BinarizeThreshold), cfg.Layout)[a.Question-1]
	return cropQuestionResult{
		CropResult: crop,
		Question:   q,
		Answer:     omr.ResolveFills(q.Fills(), cfg.FillThreshold),
	}, nil
}

// === End-to-end Grading Handlers ===

type gradeArgs struct {
	Path string          `json:"path"`
	Key  json.RawMessage `json:"key"`
	layoutArgs
}

func (s *Server) handleGrade(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a gradeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := s.pipelineFor(a.layoutArgs)
	if err != nil {
		return nil, err
	}
	key, err := parseKey(a.Key, p.Config().Layout.Options)
	if err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	// A missing file is a tool failure; an unreadable image is a graded
	// report with a zero result.
	data, err := imaging.ReadFile(a.Path)
	if err != nil {
		return nil, err
	}
	return p.Grade(ctx, data, key), nil
}

type gradeBatchArgs struct {
	Sheets []struct {
		Path string          `json:"path"`
		Key  json.RawMessage `json:"key"`
	} `json:"sheets"`
	Key         json.RawMessage `json:"key"`
	Concurrency int             `json:"concurrency"`
	layoutArgs
}

type batchEntry struct {
	Path   string      `json:"path"`
	Report *omr.Report `json:"report"`
}

func (s *Server) handleGradeBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a gradeBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Sheets) == 0 {
		return nil, errors.New("sheets must not be empty")
	}
	p, err := s.pipelineFor(a.layoutArgs)
	if err != nil {
		return nil, err
	}
	options := p.Config().Layout.Options

	var shared omr.AnswerKey
	if len(a.Key) > 0 && string(a.Key) != "null" {
		if shared, err = parseKey(a.Key, options); err != nil {
			return nil, err
		}
	}

	sheets := make([]omr.Sheet, len(a.Sheets))
	for i, in := range a.Sheets {
		key := shared
		if len(in.Key) > 0 && string(in.Key) != "null" {
			if key, err = parseKey(in.Key, options); err != nil {
				return nil, errors.Wrapf(err, "sheet %d", i+1)
			}
		}
		if key == nil {
			return nil, errors.Wrapf(omr.ErrInvalidKey, "sheet %d has no key and no shared key was given", i+1)
		}

		// Unreadable files become input-error reports rather than failing
		// the whole batch.
		data, err := imaging.ReadFile(in.Path)
		sheets[i] = omr.Sheet{Name: in.Path, Data: data, Key: key, Err: err}
	}

	concurrency := a.Concurrency
	if concurrency <= 0 {
		concurrency = s.batchConcurrency
	}

	reports := p.GradeBatch(ctx, sheets, concurrency)
	out := make([]batchEntry, len(reports))
	for i, r := range reports {
		out[i] = batchEntry{Path: a.Sheets[i].Path, Report: r}
	}
	return map[string]interface{}{"results": out}, nil
}
