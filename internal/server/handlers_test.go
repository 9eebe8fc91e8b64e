package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, fill func(x, y int) color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill(x, y))
		}
	}

	path := filepath.Join(t.TempDir(), "scene.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// colorfulFill is a smooth color gradient, like a photo.
func colorfulFill(x, y int) color.Color {
	return color.RGBA{uint8(x % 256), uint8(60 + y%100), uint8(220 - x%200), 255}
}

// gridFill draws a thin black grid on white, a crude floor plan.
func gridFill(x, y int) color.Color {
	if x%8 < 1 || y%8 < 1 {
		return color.Black
	}
	return color.White
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	paramsJSON, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatal(err)
	}
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: paramsJSON})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// resultText extracts the JSON text payload of a successful tool call.
func resultText(t *testing.T, resp *MCPResponse) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	return text
}

func TestHandleToolsCall_SceneAnalyze(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 60, 40, colorfulFill)
	outDir := t.TempDir()

	resp := callTool(t, s, "scene_analyze", map[string]interface{}{
		"path":       path,
		"mode":       "room",
		"output_dir": outDir,
	})

	var records []map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(t, resp)), &records); err != nil {
		t.Fatalf("result is not a JSON array: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec["source_image"] != path || rec["mode"] != "room" || rec["mode_source"] != "override" {
		t.Errorf("record header: %v", rec)
	}
	objects, _ := rec["objects"].([]interface{})
	if len(objects) != 1 {
		t.Errorf("objects: got %v", rec["objects"])
	}
	if dir := filepath.Dir(rec["annotated_image"].(string)); dir != outDir {
		t.Errorf("overlay written to %s, want %s", dir, outDir)
	}
}

func TestHandleToolsCall_SceneAnalyze_InvalidArguments(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 10, 10, colorfulFill)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing path", map[string]interface{}{}},
		{"bad mode", map[string]interface{}{"path": path, "mode": "floorplan"}},
		{"height without fov", map[string]interface{}{"path": path, "camera_height": 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "scene_analyze", tt.args)
			if resp.Error == nil {
				t.Fatal("expected error response")
			}
			if resp.Error.Code != -32602 {
				t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_SceneAnalyze_MissingPath(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "scene_analyze", map[string]interface{}{"path": "/nonexistent/dir"})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("expected -32000 error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_SceneClassify(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		fill func(x, y int) color.Color
		want string
	}{
		{"photo", colorfulFill, "room"},
		{"plan", gridFill, "blueprint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestImageFile(t, 120, 120, tt.fill)
			var res struct {
				Mode   string `json:"mode"`
				Scores struct {
					Colorfulness float64 `json:"colorfulness"`
					EdgeDensity  float64 `json:"edge_density"`
				} `json:"scores"`
			}
			text := resultText(t, callTool(t, s, "scene_classify", map[string]interface{}{"path": path}))
			if err := json.Unmarshal([]byte(text), &res); err != nil {
				t.Fatal(err)
			}
			if res.Mode != tt.want {
				t.Errorf("mode: got %s, want %s (scores %+v)", res.Mode, tt.want, res.Scores)
			}
		})
	}
}

func TestHandleToolsCall_BlueprintValidate(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 50, 50, func(x, y int) color.Color { return color.White })

	var res struct {
		IsBlueprint bool   `json:"is_blueprint"`
		Reason      string `json:"reason"`
	}
	text := resultText(t, callTool(t, s, "blueprint_validate", map[string]interface{}{"path": path}))
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatal(err)
	}
	if res.IsBlueprint {
		t.Error("blank image should not validate as a blueprint")
	}
	if res.Reason == "" {
		t.Error("reason should be set")
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "blueprint_validate", map[string]interface{}{"path": "/nonexistent/image.png"})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("expected -32000 error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_SceneClassify_UnreadableDegrades(t *testing.T) {
	s := newTestServer(t)
	corrupt := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(corrupt, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/nonexistent/image.png", corrupt} {
		var res struct {
			Mode     string `json:"mode"`
			Degraded bool   `json:"degraded"`
		}
		text := resultText(t, callTool(t, s, "scene_classify", map[string]interface{}{"path": path}))
		if err := json.Unmarshal([]byte(text), &res); err != nil {
			t.Fatal(err)
		}
		if res.Mode != "room" || !res.Degraded {
			t.Errorf("%s: got %+v, want degraded room", path, res)
		}
	}
}

func TestHandleToolsCall_MissingPath(t *testing.T) {
	s := newTestServer(t)
	for _, tool := range []string{"scene_classify", "blueprint_validate"} {
		resp := callTool(t, s, tool, map[string]interface{}{})
		if resp.Error == nil || resp.Error.Code != -32602 {
			t.Errorf("%s: expected -32602 error, got %+v", tool, resp.Error)
		}
	}
}

func TestHandleToolsCall_ReleasesCachedImages(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 40, 40, colorfulFill)

	for _, tool := range []string{"scene_classify", "blueprint_validate"} {
		resultText(t, callTool(t, s, tool, map[string]interface{}{"path": path}))
		if n := s.cache.Len(); n != 0 {
			t.Errorf("%s: %d images still cached after the call", tool, n)
		}
	}
}

func TestServe_PassesContextToTools(t *testing.T) {
	s := newTestServer(t)
	dir := filepath.Dir(createTestImageFile(t, 40, 40, colorfulFill))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := s.handleRequest(ctx, &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name":"scene_analyze","arguments":{"path":"` + dir + `"}}`),
	})
	if resp == nil {
		t.Fatal("expected a response")
	}
	text := resultText(t, resp)
	var entries []map[string]interface{}
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0]["error"] == nil {
		t.Errorf("cancelled call should record the image as failed: %s", text)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("expected -32000 error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json}`),
	})
	if resp == nil || resp.Error == nil {
		t.Fatal("expected error response")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}
