package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/SamuelRCrider/scrub-go/core"
	"github.com/SamuelRCrider/scrub-go/utils"
)

type scrubRecordResult struct {
	Record   json.RawMessage    `json:"record"`
	Warnings []utils.Diagnostic `json:"warnings"`
}

type scrubBatchResult struct {
	Summary     *core.Summary      `json:"summary"`
	Diagnostics []utils.Diagnostic `json:"diagnostics"`
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("scrub_record",
		mcp.WithDescription("Remove first name, last name and email address from one customer record, add C_EMAIL_DOMAIN and record_date"),
		mcp.WithString("record", mcp.Description("Customer record as a JSON object"), mcp.Required()),
		mcp.WithString("record_date", mcp.Description("Date tag to store in record_date"), mcp.Required()),
	), s.handleScrubRecord)

	s.mcp.AddTool(mcp.NewTool("scrub_batch",
		mcp.WithDescription("Scrub every newline-delimited JSON file of a directory into transformed_<name> files"),
		mcp.WithString("input_dir", mcp.Description("Input directory (optional, server default otherwise)")),
		mcp.WithString("output_dir", mcp.Description("Output directory, created if missing (optional)")),
		mcp.WithString("file_extension", mcp.Description("Extension of the files to process, e.g. txt (optional)")),
		mcp.WithNumber("date_field_position", mcp.Description("Zero-based index of the date in the dot-separated filename (optional)")),
	), s.handleScrubBatch)
}

func (s *Server) handleScrubRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	recordDate, _ := args["record_date"].(string)
	if recordDate == "" {
		return mcp.NewToolResultError("record_date is required"), nil
	}

	// record may come as a JSON string or as an already decoded object
	var line []byte
	switch v := args["record"].(type) {
	case string:
		line = []byte(v)
	case nil:
		return mcp.NewToolResultError("record is required"), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("record is not JSON encodable: %v", err)), nil
		}
		line = b
	}

	rec, err := core.ParseRecord(line)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid record: %v", err)), nil
	}

	recorder := core.NewRecorder()
	core.TransformRecord(rec, recordDate, recorder)

	encoded, err := rec.Encode()
	if err != nil {
		return nil, err
	}

	return jsonResult(scrubRecordResult{
		Record:   encoded,
		Warnings: recorder.Diagnostics(),
	})
}

func (s *Server) handleScrubBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	cfg := s.base

	if v, ok := args["input_dir"].(string); ok && v != "" {
		cfg.InputDir = v
	}
	if v, ok := args["output_dir"].(string); ok && v != "" {
		cfg.OutputDir = v
	}
	if v, ok := args["file_extension"].(string); ok && v != "" {
		cfg.FileExtension = v
	}
	if v, ok := args["date_field_position"].(float64); ok {
		if v != math.Trunc(v) {
			return mcp.NewToolResultError(fmt.Sprintf("date_field_position must be an integer, got %v", v)), nil
		}
		cfg.DateFieldPosition = int(v)
	}

	recorder := core.NewRecorder()
	driver, err := core.NewDriver(cfg, core.MultiReporter{recorder, core.NewLogReporter(s.logger)}, s.logger)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := driver.Run()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("batch run failed: %v", err)), nil
	}

	return jsonResult(scrubBatchResult{
		Summary:     summary,
		Diagnostics: recorder.Diagnostics(),
	})
}
