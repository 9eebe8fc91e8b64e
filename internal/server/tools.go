package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "scene_analyze",
			Description: "Analyze a room photo or floor plan, or every image in a directory. " +
				"Returns one record per image with detected objects, depth statistics, floor-plane " +
				"geometry, a dimension estimate, window-light orientation, and the path of an annotated overlay. " +
				"Images that fail appear as {image, error} entries.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to an image file or a directory of images"),
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"blueprint", "room"},
						"description": "Force a perception mode instead of classifying each image",
					},
					"camera_height": map[string]interface{}{
						"type":        "number",
						"description": "Camera height above the floor in meters. Requires fov.",
					},
					"fov": map[string]interface{}{
						"type":        "number",
						"description": "Horizontal field of view in degrees. Requires camera_height.",
					},
					"prompt": map[string]interface{}{
						"type":        "string",
						"description": "Comma-separated object classes for open-vocabulary detection",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for overlays, depth maps and count tables",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "scene_classify",
			Description: "Classify an image as a blueprint (floor-plan drawing) or a room photo, with the colorfulness and edge-density scores behind the decision.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "blueprint_validate",
			Description: "Check whether an image looks like an architectural floor plan using edge density and straight line count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
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
