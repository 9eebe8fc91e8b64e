package detection

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/tourguide/internal/errs"
	"github.com/ironsheep/tourguide/internal/inference"
)

// wireDetection is one entry of a detector service response.
type wireDetection struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

// wireResponse is the detector service's /predict reply. When Normalized is
// set, bbox values are fractions of the image size.
type wireResponse struct {
	Detections []wireDetection `json:"detections"`
	Normalized bool            `json:"normalized"`
}

// HTTPDetector calls a detector model served over HTTP.
type HTTPDetector struct {
	client     *inference.Client
	name       string
	confidence float64
	extra      map[string]string
}

// NewHTTPDetector creates a detector for model at baseURL.
func NewHTTPDetector(baseURL, model string, confidence float64, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{
		client:     inference.NewClient(baseURL, model, timeout),
		name:       model,
		confidence: confidence,
		extra:      map[string]string{},
	}
}

// Name returns the model name.
func (h *HTTPDetector) Name() string { return h.name }

// Detect posts img to the service and converts the reply to instances.
// The prompt, if any, is forwarded as a comma-separated class list.
func (h *HTTPDetector) Detect(ctx context.Context, img image.Image, prompt string) ([]Instance, error) {
	fields := map[string]string{
		"conf": strconv.FormatFloat(h.confidence, 'f', -1, 64),
	}
	for k, v := range h.extra {
		fields[k] = v
	}
	if prompt = strings.TrimSpace(prompt); prompt != "" {
		fields["prompt"] = prompt
	}

	var resp wireResponse
	if err := h.client.PostImage(ctx, "/predict", img, fields, &resp); err != nil {
		return nil, err
	}
	return convertDetections(resp, img.Bounds())
}

func convertDetections(resp wireResponse, bounds image.Rectangle) ([]Instance, error) {
	out := make([]Instance, 0, len(resp.Detections))
	for i, d := range resp.Detections {
		if len(d.BBox) != 4 {
			return nil, fmt.Errorf("detection %d: bbox has %d values, want 4", i, len(d.BBox))
		}
		x1, y1, x2, y2 := d.BBox[0], d.BBox[1], d.BBox[2], d.BBox[3]
		if resp.Normalized {
			w, h := float64(bounds.Dx()), float64(bounds.Dy())
			x1, x2 = x1*w+float64(bounds.Min.X), x2*w+float64(bounds.Min.X)
			y1, y2 = y1*h+float64(bounds.Min.Y), y2*h+float64(bounds.Min.Y)
		}
		out = append(out, Instance{
			Label:      d.Label,
			Confidence: d.Confidence,
			Box:        NewBox(x1, y1, x2, y2).Clamp(bounds),
		})
	}
	return out, nil
}

// checkHealth checks the service health and wraps failures as provider
// unavailability.
func checkHealth(ctx context.Context, c *inference.Client) error {
	if err := c.CheckHealth(ctx); err != nil {
		return fmt.Errorf("%w: %s at %s: %v", errs.ErrProviderUnavailable, c.Model(), c.BaseURL(), err)
	}
	return nil
}

// HTTPFactory returns a Factory that acquires an HTTPDetector after a
// successful health check.
func HTTPFactory(baseURL, model string, confidence float64, timeout time.Duration) Factory {
	return func(ctx context.Context) (Provider, error) {
		h := NewHTTPDetector(baseURL, model, confidence, timeout)
		if err := checkHealth(ctx, h.client); err != nil {
			return nil, err
		}
		return h, nil
	}
}
