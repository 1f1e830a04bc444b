// Package server implements the MCP (Model Context Protocol) server for grading
// photographed bubble answer sheets.
//
// This package provides a JSON-RPC 2.0 server that exposes the grading
// pipeline, and each of its stages, through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Inspection:
//   - image_load: Load image and get metadata
//   - image_edge_detect: Canny edge map used by boundary detection
//
// Pipeline Stages:
//   - omr_decode_id: Read the student identifier from a QR code or barcode
//   - omr_normalize: Find the sheet boundary and rectify it
//   - omr_binarize: Threshold a sheet into a mark mask
//   - omr_sample_grid: Measure the fill of every option slot
//   - omr_resolve: Turn fill fractions into answers
//   - omr_grade_answers: Score answers against a key
//   - omr_crop_question: Enlarged crop of one question cell for review
//
// End-to-end Grading:
//   - omr_grade: Grade one sheet
//   - omr_grade_batch: Grade several sheets concurrently
//
// Grid tools accept rows, columns, options, padding and fill_threshold to
// override the configured layout for a single call.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A sheet that grades with fallbacks (no boundary found, no identifier,
// length mismatch) is not an error: the report lists its degradations. An
// image that cannot be decoded yields a report with a zero result and an
// error field.
//
// # Usage
//
//	srv, err := server.New(server.WithConfig(cfg), server.WithLogger(log))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
