// Package pipeline runs the per-image perception pipeline over a batch of
// images and collects one entry per image.
//
// A Runner owns its providers for the lifetime of one Run call: the detection
// dispatcher is created at the start of every batch and acquires models on
// first use, so nothing outlives the batch that loaded it. Failures inside a
// single image, including panics, become that image's error entry; only an
// invalid call parameter or a missing root path fails the whole batch.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/tourguide/internal/caption"
	"github.com/ironsheep/tourguide/internal/classify"
	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/depth"
	"github.com/ironsheep/tourguide/internal/detection"
	"github.com/ironsheep/tourguide/internal/errs"
	"github.com/ironsheep/tourguide/internal/geometry"
	"github.com/ironsheep/tourguide/internal/imaging"
	"github.com/ironsheep/tourguide/internal/ocr"
	"github.com/ironsheep/tourguide/internal/orientation"
	"github.com/ironsheep/tourguide/internal/render"
	"github.com/ironsheep/tourguide/internal/scene"
)

// Params are the per-call pipeline parameters.
type Params struct {
	ModeOverride string   // "", "blueprint" or "room"
	CameraHeight *float64 // Meters; must be given together with FOV
	FOV          *float64 // Horizontal degrees; must be given together with CameraHeight
	Prompt       string   // Open-vocabulary class list; empty uses the default
	OutputDir    string   // Empty uses the configured default
}

// Runner executes batches.
type Runner struct {
	cfg           config.Config
	classifier    *classify.Classifier
	newDispatcher func() *detection.Dispatcher
	depth         depth.Provider
	orientation   *orientation.Estimator
	renderer      *render.Renderer
	ocr           *ocr.Reader
	captioner     caption.Captioner
}

// Option customizes a Runner.
type Option func(*Runner)

// WithDispatcherFactory replaces the per-batch dispatcher constructor.
func WithDispatcherFactory(f func() *detection.Dispatcher) Option {
	return func(r *Runner) { r.newDispatcher = f }
}

// WithDepthProvider replaces the depth provider.
func WithDepthProvider(p depth.Provider) Option {
	return func(r *Runner) { r.depth = p }
}

// WithCaptioner enables scene captions.
func WithCaptioner(c caption.Captioner) Option {
	return func(r *Runner) { r.captioner = c }
}

// WithOCR enables or disables blueprint dimension reading.
func WithOCR(rd *ocr.Reader) Option {
	return func(r *Runner) { r.ocr = rd }
}

// New creates a Runner wired to the HTTP providers named in cfg.
func New(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:         cfg,
		classifier:  classify.New(cfg.Classifier),
		depth:       depth.NewHTTPProvider(cfg.Depth.URL, cfg.Depth.Model, cfg.Depth.Timeout),
		orientation: orientation.New(cfg.Orientation),
		renderer:    render.New(cfg.Render),
		newDispatcher: func() *detection.Dispatcher {
			return detection.NewDispatcherFromConfig(cfg.Detection)
		},
	}
	if cfg.OCR.Enabled {
		r.ocr = ocr.New(cfg.OCR)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classifier exposes the mode classifier.
func (r *Runner) Classifier() *classify.Classifier { return r.classifier }

// Config returns the runner's configuration.
func (r *Runner) Config() config.Config { return r.cfg }

// batch is the state shared by the images of one Run.
type batch struct {
	params     Params
	mode       classify.Mode // Resolved override; empty when classifying
	outDir     string
	stems      map[string]string // Source path to artifact file stem, unique per batch
	dispatcher *detection.Dispatcher
	cache      *imaging.ImageCache
}

// Run processes every image under input.
//
// Call parameters are validated before anything is read: an unknown mode
// override or a camera height without a field of view (or vice versa) wraps
// errs.ErrInvalidArgument. An input that is neither an image nor a directory
// holding images wraps errs.ErrNotFound. Past that point Run always returns a
// BatchResult with one entry per image, in enumeration order.
func (r *Runner) Run(ctx context.Context, input string, p Params) (BatchResult, error) {
	b := &batch{params: p}

	if p.ModeOverride != "" {
		mode, err := classify.ParseMode(p.ModeOverride)
		if err != nil {
			return nil, err
		}
		b.mode = mode
	}
	cam := geometry.Camera{HeightM: p.CameraHeight, FOVDeg: p.FOV}
	if cam.Partial() {
		return nil, fmt.Errorf("camera height and field of view must be given together: %w", errs.ErrInvalidArgument)
	}

	images, err := imaging.ListImages(input)
	if err != nil {
		return nil, err
	}

	b.outDir = p.OutputDir
	if b.outDir == "" {
		b.outDir = r.cfg.OutputDir
	}
	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	b.stems = artifactStems(images)
	b.dispatcher = r.newDispatcher()
	b.cache = imaging.NewImageCache()

	results := make(BatchResult, len(images))
	if r.cfg.Workers <= 1 {
		for i, path := range images {
			results[i] = r.processSafe(ctx, b, path)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.cfg.Workers)
		for i, path := range images {
			g.Go(func() error {
				results[i] = r.processSafe(ctx, b, path)
				return nil
			})
		}
		_ = g.Wait()
	}

	log.Printf("Processed %d image(s), %d failed", len(results), results.Failed())
	return results, nil
}

// processSafe runs one image and converts any error or panic into an entry.
func (r *Runner) processSafe(ctx context.Context, b *batch, path string) (entry Entry) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Panic processing %s: %v\n%s", path, rec, debug.Stack())
			entry = Entry{Image: path, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	defer b.cache.Evict(path)

	if err := ctx.Err(); err != nil {
		return Entry{Image: path, Err: err}
	}

	rec, err := r.process(ctx, b, path)
	if err != nil {
		log.Printf("Failed to process %s: %v", path, err)
		return Entry{Image: path, Err: err}
	}
	return Entry{Image: path, Record: rec}
}

func (r *Runner) process(ctx context.Context, b *batch, path string) (*scene.Record, error) {
	in := scene.Inputs{SourceImage: path, Mode: b.mode, Override: b.mode != ""}
	if !in.Override {
		res := r.classifier.ClassifyFile(b.cache, path)
		in.Mode = res.Mode
		in.Classification = &res
	}
	r.debugf("%s: mode %s (override %v)", path, in.Mode, in.Override)

	img, err := b.cache.Load(path)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()

	det, err := b.dispatcher.Detect(ctx, in.Mode, b.params.ModeOverride, img, b.params.Prompt)
	if err != nil {
		return nil, fmt.Errorf("detection: %w", err)
	}
	in.Detection = det
	r.debugf("%s: %d object(s) from %s, %d discarded by label filter", path, len(det.Instances), det.Provider, det.Discarded)

	if in.Mode == classify.Blueprint && r.ocr != nil {
		in.Annotations = annotations(r.ocr.ReadDimensions(img, det.Instances))
	}

	stem := b.stems[path]
	pred, err := r.depth.Predict(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("depth: %w", err)
	}
	field, err := depth.Normalize(pred, bounds.Dx(), bounds.Dy(), r.cfg.Depth.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("depth: %w", err)
	}
	visPath := filepath.Join(b.outDir, stem+"_depth.png")
	if err := depth.SaveVisualization(field, visPath); err != nil {
		return nil, err
	}
	in.Depth = depth.Summarize(field, visPath)

	in.Geometry = geometry.Planes(field, r.cfg.Geometry)
	in.Dimensions = geometry.Estimate(field, geometry.Camera{
		HeightM: b.params.CameraHeight,
		FOVDeg:  b.params.FOV,
	}, r.cfg.Geometry)
	in.Orientation = r.orientation.Estimate(img)

	if r.captioner != nil {
		in.Caption = r.caption(ctx, img, path)
	}

	in.AnnotatedImage = render.StemOverlayPath(b.outDir, stem)
	in.CountsCSV = filepath.Join(b.outDir, stem+"_counts.csv")

	rec := scene.Fuse(in)

	if _, err := r.renderer.Render(img, det.Instances, visPath, rec.AnnotatedImage); err != nil {
		return nil, err
	}
	data, err := scene.CountsCSV(rec.Counts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode counts: %w", err)
	}
	if err := os.WriteFile(rec.CountsCSV, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write counts: %w", err)
	}
	return &rec, nil
}

// caption is best-effort; failures are logged and leave the caption empty.
func (r *Runner) caption(ctx context.Context, img image.Image, path string) *scene.Caption {
	res, err := r.captioner.Caption(ctx, img)
	if err != nil {
		log.Printf("Caption for %s failed: %v", path, err)
		return nil
	}
	return &scene.Caption{Text: res.Text, Question: res.Question}
}

func annotations(readings []ocr.Reading) []scene.Annotation {
	var out []scene.Annotation
	for _, rd := range readings {
		out = append(out, scene.Annotation{BBox: rd.Box.XYXY(), Text: rd.Text, Meters: rd.Meters})
	}
	return out
}

func (r *Runner) debugf(format string, args ...any) {
	if r.cfg.LogLevel == "debug" {
		log.Printf(format, args...)
	}
}
