package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/tourguide/internal/classify"
	"github.com/ironsheep/tourguide/internal/errs"
	"github.com/ironsheep/tourguide/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "scene_analyze").
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
// Invalid tool arguments return -32602; other failures return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidArgument) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
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
	switch name {
	case "scene_analyze":
		return s.handleSceneAnalyze(ctx, args)
	case "scene_classify":
		return s.handleSceneClassify(args)
	case "blueprint_validate":
		return s.handleBlueprintValidate(args)
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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type sceneAnalyzeArgs struct {
	Path         string   `json:"path"`
	Mode         string   `json:"mode"`
	CameraHeight *float64 `json:"camera_height"`
	FOV          *float64 `json:"fov"`
	Prompt       string   `json:"prompt"`
	OutputDir    string   `json:"output_dir"`
}

func (s *Server) handleSceneAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sceneAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required: %w", errs.ErrInvalidArgument)
	}
	return s.runner.Run(ctx, a.Path, pipeline.Params{
		ModeOverride: a.Mode,
		CameraHeight: a.CameraHeight,
		FOV:          a.FOV,
		Prompt:       a.Prompt,
		OutputDir:    a.OutputDir,
	})
}

type pathArgs struct {
	Path string `json:"path"`
}

// parsePathArgs decodes single-image tool arguments.
func parsePathArgs(args json.RawMessage) (string, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", err
	}
	if a.Path == "" {
		return "", fmt.Errorf("path is required: %w", errs.ErrInvalidArgument)
	}
	return a.Path, nil
}

// handleSceneClassify never fails on an unreadable image; it reports a
// degraded room result instead, as the batch pipeline does.
func (s *Server) handleSceneClassify(args json.RawMessage) (interface{}, error) {
	path, err := parsePathArgs(args)
	if err != nil {
		return nil, err
	}
	defer s.cache.Evict(path)
	return s.runner.Classifier().ClassifyFile(s.cache, path), nil
}

func (s *Server) handleBlueprintValidate(args json.RawMessage) (interface{}, error) {
	path, err := parsePathArgs(args)
	if err != nil {
		return nil, err
	}
	defer s.cache.Evict(path)
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return classify.Validate(img, s.runner.Config().Validator), nil
}
