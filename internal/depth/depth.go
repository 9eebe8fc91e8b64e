// Package depth obtains monocular relative-depth predictions and prepares
// them for geometry estimation and rendering.
//
// A Provider returns a raw prediction at whatever resolution its model
// produces. Normalize resizes that prediction to the source image's exact
// pixel grid and rescales it to [0, 1]; everything downstream assumes the
// resulting Field has the source image's dimensions.
package depth

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/tourguide/internal/errs"
	"github.com/ironsheep/tourguide/internal/inference"
)

// Prediction is a raw row-major depth map at the model's native resolution.
// Larger values mean nearer for disparity-style models; only the relative
// ordering matters here.
type Prediction struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Values []float64 `json:"depth"`
}

// Validate checks that the prediction is well formed.
func (p Prediction) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: depth prediction is %dx%d", errs.ErrDegenerateInput, p.Width, p.Height)
	}
	if len(p.Values) != p.Width*p.Height {
		return fmt.Errorf("%w: depth prediction has %d values for %dx%d",
			errs.ErrDegenerateInput, len(p.Values), p.Width, p.Height)
	}
	return nil
}

// Provider predicts relative depth for an image.
type Provider interface {
	Name() string
	Predict(ctx context.Context, img image.Image) (Prediction, error)
}

// HTTPProvider calls a depth model served over HTTP at /depth.
type HTTPProvider struct {
	client *inference.Client
}

// NewHTTPProvider creates a provider for model at baseURL.
func NewHTTPProvider(baseURL, model string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{client: inference.NewClient(baseURL, model, timeout)}
}

// Name returns the model name.
func (p *HTTPProvider) Name() string { return p.client.Model() }

// Predict posts img and decodes the depth map.
func (p *HTTPProvider) Predict(ctx context.Context, img image.Image) (Prediction, error) {
	var pred Prediction
	if err := p.client.PostImage(ctx, "/depth", img, nil, &pred); err != nil {
		return Prediction{}, fmt.Errorf("depth %s: %w", p.Name(), err)
	}
	if err := pred.Validate(); err != nil {
		return Prediction{}, err
	}
	return pred, nil
}
