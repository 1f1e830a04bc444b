package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema shared by every tool that reads an image file.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// keyProperty accepts "ABCD", "A,B,C,D", ["A","B"] or [1,2].
var keyProperty = map[string]interface{}{
	"description": "Answer key: a string of letters (\"ABCD\" or \"A,B,C,D\") or an array of letters or 1-based option numbers",
	"oneOf": []interface{}{
		map[string]interface{}{"type": "string"},
		map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": []string{"string", "integer"}},
		},
	},
}

// layoutProperties are the optional per-call grid overrides.
func layoutProperties(props map[string]interface{}) map[string]interface{} {
	props["rows"] = map[string]interface{}{
		"type":        "integer",
		"description": "Questions per column block. Defaults to the server configuration",
		"minimum":     1,
	}
	props["columns"] = map[string]interface{}{
		"type":        "integer",
		"description": "Number of column blocks. Defaults to the server configuration",
		"minimum":     1,
	}
	props["options"] = map[string]interface{}{
		"type":        "integer",
		"description": "Answer options per question (at most 23). Defaults to the server configuration",
		"minimum":     1,
		"maximum":     23,
	}
	props["padding"] = map[string]interface{}{
		"type":        "integer",
		"description": "Pixels trimmed from each side of an option slot before counting fill",
		"minimum":     0,
	}
	props["fill_threshold"] = map[string]interface{}{
		"type":        "number",
		"description": "Fill fraction an option must exceed to count as marked",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Inspection
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and color depth.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Run the Canny edge stage of sheet boundary detection and return the edge map as base64-encoded PNG. Use this to see why a photograph failed to rectify.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"threshold_low": map[string]interface{}{
						"type":        "number",
						"description": "Low hysteresis threshold (0-255)",
						"default":     10,
					},
					"threshold_high": map[string]interface{}{
						"type":        "number",
						"description": "High hysteresis threshold (0-255)",
						"default":     70,
					},
					"sigma": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian blur sigma applied before edge detection",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},

		// Pipeline Stages
		{
			Name:        "omr_decode_id",
			Description: "Decode the student identifier from the QR code or barcode printed on a sheet. Returns found=false with a reason when no marker is readable.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_normalize",
			Description: "Find the sheet boundary in a photograph and warp it to an upright rectangle. Returns the status, ordered corners, output size, the contour candidates examined and the rectified image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the rectified image as base64-encoded PNG",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_binarize",
			Description: "Produce the mark mask of a sheet: pixels at or below the luminance threshold are marks. Returns the mask as base64-encoded PNG (marks white) and the marked fraction.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Luminance threshold (0-255)",
						"default":     120,
						"minimum":     0,
						"maximum":     255,
					},
					"normalize": map[string]interface{}{
						"type":        "boolean",
						"description": "Rectify the sheet before binarizing",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_sample_grid",
			Description: "Measure the fill fraction of every option slot on a sheet. Questions are numbered down each column block, then across blocks.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": layoutProperties(map[string]interface{}{"path": pathProperty}),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "omr_resolve",
			Description: "Resolve per-question fill fractions to answers: a letter when exactly one option exceeds the threshold, X when several do, ? when none do.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"fills": map[string]interface{}{
						"type":        "array",
						"description": "Fill fractions per question, one inner array per question in option order",
						"items": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "number"},
						},
					},
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Fill fraction an option must exceed",
						"default":     0.2,
					},
				},
				"required": []string{"fills"},
			},
		},
		{
			Name:        "omr_grade_answers",
			Description: "Score resolved answers against a key. Only exact letter matches score; X and ? never do. Reports a mismatch when the lengths differ.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"answers": map[string]interface{}{
						"description": "Resolved answers as a string (\"AX?B\") or an array of symbols",
					},
					"key": keyProperty,
					"options": map[string]interface{}{
						"type":        "integer",
						"description": "Options per question used to validate the key",
					},
				},
				"required": []string{"answers", "key"},
			},
		},

		{
			Name:        "omr_crop_question",
			Description: "Return one question cell of the rectified sheet as base64-encoded PNG, enlarged for review, with its option fills and resolved answer. Use this to check ambiguous or blank answers by eye.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": layoutProperties(map[string]interface{}{
					"path": pathProperty,
					"question": map[string]interface{}{
						"type":        "integer",
						"description": "1-based question number in answer order",
						"minimum":     1,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Resize factor for the cropped cell",
						"default":     3.0,
					},
				}),
				"required": []string{"path", "question"},
			},
		},

		// End-to-end Grading
		{
			Name:        "omr_grade",
			Description: "Grade one photographed answer sheet: decode the student ID, rectify, binarize, sample the grid, resolve answers and score against the key. Degraded stages are reported rather than failing the call.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": layoutProperties(map[string]interface{}{
					"path": pathProperty,
					"key":  keyProperty,
				}),
				"required": []string{"path", "key"},
			},
		},
		{
			Name:        "omr_grade_batch",
			Description: "Grade several sheets concurrently. Results are returned in input order; an unreadable sheet yields an error report without affecting the others.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": layoutProperties(map[string]interface{}{
					"sheets": map[string]interface{}{
						"type":        "array",
						"description": "Sheets to grade; a per-sheet key overrides the shared key",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"path": pathProperty,
								"key":  keyProperty,
							},
							"required": []string{"path"},
						},
					},
					"key": keyProperty,
					"concurrency": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum sheets graded in parallel. Defaults to the server configuration",
						"minimum":     1,
					},
				}),
				"required": []string{"sheets"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
