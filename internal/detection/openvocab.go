package detection

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log"
	"strconv"
	"strings"
	"time"

	// PNG is the mask wire format.
	_ "image/png"

	"github.com/ironsheep/tourguide/internal/classify"
	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/imaging"
	"github.com/ironsheep/tourguide/internal/inference"
)

// Segmenter produces a binary mask for the object filling a crop. The
// returned image has the crop's dimensions.
type Segmenter interface {
	Segment(ctx context.Context, crop image.Image) (image.Image, error)
}

// HTTPSegmenter calls a box-prompted segmentation model over HTTP. The
// service replies with {"mask_png": "<base64 PNG>"}.
type HTTPSegmenter struct {
	client *inference.Client
}

// NewHTTPSegmenter creates a segmenter for the service at baseURL.
func NewHTTPSegmenter(baseURL string, timeout time.Duration) *HTTPSegmenter {
	return &HTTPSegmenter{client: inference.NewClient(baseURL, "", timeout)}
}

// Segment posts the crop and decodes the returned mask.
func (s *HTTPSegmenter) Segment(ctx context.Context, crop image.Image) (image.Image, error) {
	var resp struct {
		MaskPNG string `json:"mask_png"`
	}
	if err := s.client.PostImage(ctx, "/segment", crop, nil, &resp); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(resp.MaskPNG)
	if err != nil {
		return nil, fmt.Errorf("decode mask base64: %w", err)
	}
	mask, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode mask image: %w", err)
	}
	return mask, nil
}

// OpenVocab detects prompt-named classes and, when a segmenter is
// available, attaches a full-image mask to each instance.
type OpenVocab struct {
	detector      *HTTPDetector
	segmenter     Segmenter
	defaultPrompt string
}

// NewOpenVocab pairs a prompt-driven detector with an optional segmenter.
func NewOpenVocab(detector *HTTPDetector, segmenter Segmenter, defaultPrompt string) *OpenVocab {
	return &OpenVocab{detector: detector, segmenter: segmenter, defaultPrompt: defaultPrompt}
}

// Name identifies the detector and whether masks are produced.
func (o *OpenVocab) Name() string {
	if o.segmenter != nil {
		return o.detector.Name() + "+segmenter"
	}
	return o.detector.Name()
}

// Detect runs the detector with the parsed class list, then segments each
// box. A failed segmentation leaves that instance without a mask.
func (o *OpenVocab) Detect(ctx context.Context, img image.Image, prompt string) ([]Instance, error) {
	classes := ParsePrompt(prompt, o.defaultPrompt)
	if len(classes) == 0 {
		return nil, nil
	}
	instances, err := o.detector.Detect(ctx, img, strings.Join(classes, ", "))
	if err != nil {
		return nil, err
	}
	if o.segmenter == nil {
		return instances, nil
	}

	full := img.Bounds()
	for i := range instances {
		crop, clipped, err := imaging.Crop(img, instances[i].Box.Rect())
		if err != nil {
			continue
		}
		m, err := o.segmenter.Segment(ctx, crop)
		if err != nil {
			log.Printf("Segmenting %s at %v failed: %v", instances[i].Label, clipped, err)
			continue
		}
		if m.Bounds().Size() != clipped.Size() {
			m = imaging.ResizeNearest(m, clipped.Dx(), clipped.Dy())
		}
		instances[i].Mask = PlaceMask(m, clipped.Min, full)
	}
	return instances, nil
}

// OpenVocabFactory acquires the open-vocabulary detector. The segmenter is
// checked once; if it is unreachable detection proceeds without masks.
func OpenVocabFactory(cfg config.DetectionConfig) Factory {
	return func(ctx context.Context) (Provider, error) {
		det := NewHTTPDetector(cfg.OpenVocabURL, "open-vocabulary", cfg.BoxThreshold, cfg.Timeout)
		det.extra["box_threshold"] = strconv.FormatFloat(cfg.BoxThreshold, 'f', -1, 64)
		det.extra["text_threshold"] = strconv.FormatFloat(cfg.TextThreshold, 'f', -1, 64)
		if err := checkHealth(ctx, det.client); err != nil {
			return nil, err
		}

		var seg Segmenter
		if cfg.SegmenterURL != "" {
			s := NewHTTPSegmenter(cfg.SegmenterURL, cfg.Timeout)
			if err := s.client.CheckHealth(ctx); err != nil {
				log.Printf("Segmenter at %s unavailable, masks disabled: %v", cfg.SegmenterURL, err)
			} else {
				seg = s
			}
		}
		return NewOpenVocab(det, seg, cfg.DefaultPrompt), nil
	}
}

// NewDispatcherFromConfig registers the configured providers and label
// allow-lists. The open-vocabulary provider is registered only when its URL
// is set.
func NewDispatcherFromConfig(cfg config.DetectionConfig) *Dispatcher {
	d := NewDispatcher()
	d.Register(KindBlueprint, HTTPFactory(cfg.BlueprintURL, cfg.BlueprintModel, cfg.Confidence, cfg.Timeout))
	d.Register(KindGeneral, HTTPFactory(cfg.GeneralURL, cfg.GeneralModel, cfg.Confidence, cfg.Timeout))
	if cfg.OpenVocabURL != "" {
		d.Register(KindOpenVocab, OpenVocabFactory(cfg))
	}
	d.SetLabels(classify.Blueprint, cfg.BlueprintLabels)
	d.SetLabels(classify.Room, cfg.RoomLabels)
	return d
}
