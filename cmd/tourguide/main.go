package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ironsheep/tourguide/internal/caption"
	"github.com/ironsheep/tourguide/internal/classify"
	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/errs"
	"github.com/ironsheep/tourguide/internal/imaging"
	"github.com/ironsheep/tourguide/internal/ocr"
	"github.com/ironsheep/tourguide/internal/pipeline"
	"github.com/ironsheep/tourguide/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInvalidArgs = 2
	exitNotFound    = 3
)

func usage() {
	fmt.Println("tourguide - room and floor-plan scene analysis")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tourguide [run] [options] <image-or-directory>")
	fmt.Println("  tourguide classify <image>")
	fmt.Println("  tourguide validate <image>")
	fmt.Println("  tourguide serve")
	fmt.Println()
	fmt.Println("Run options:")
	fmt.Println("  --mode blueprint|room    Skip classification and force a mode")
	fmt.Println("  --camera-height M        Camera height in meters (requires --fov)")
	fmt.Println("  --fov DEG                Horizontal field of view in degrees (requires --camera-height)")
	fmt.Println("  --prompt TEXT            Comma-separated classes for open-vocabulary detection")
	fmt.Println("  --out DIR                Output directory (default outputs)")
	fmt.Println("  --workers N              Images processed in parallel")
	fmt.Println("  --ocr                    Read dimension text on blueprints")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  TOURGUIDE_LOG_LEVEL=debug     Enable debug logging")
	fmt.Println("  TOURGUIDE_BLUEPRINT_URL       Floor-plan detector service")
	fmt.Println("  TOURGUIDE_GENERAL_URL         General object detector service")
	fmt.Println("  TOURGUIDE_OPENVOCAB_URL       Open-vocabulary detector service (optional)")
	fmt.Println("  TOURGUIDE_SEGMENTER_URL       Segmenter service (optional)")
	fmt.Println("  TOURGUIDE_DEPTH_URL           Depth service")
	fmt.Println("  GEMINI_API_KEY                Enables scene captions")
	fmt.Println()
	fmt.Println("serve speaks MCP over stdin/stdout.")
}

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		usage()
		return exitInvalidArgs
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("tourguide %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  Tesseract:  %s\n", ocr.Version())
		return exitOK
	case "--help", "-h", "help":
		usage()
		return exitOK
	}

	// Configure logging to stderr (stdout is for results and the MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.FromEnv()
	if cfg.LogLevel == "debug" {
		log.Printf("tourguide v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "run":
		return runBatch(ctx, cfg, args)
	case "classify":
		return runSingle(cfg, args, imageLoader.classify)
	case "validate":
		return runSingle(cfg, args, imageLoader.validate)
	case "serve":
		return serve(ctx, cfg)
	default:
		// Bare "tourguide [options] <path>" is a run.
		return runBatch(ctx, cfg, os.Args[1:])
	}
}

// optionalFloat is a flag that records whether it was set.
func optionalFloat(fs *flag.FlagSet, name, usage string) **float64 {
	var p *float64
	fs.Func(name, usage, func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		p = &v
		return nil
	})
	return &p
}

func newRunner(ctx context.Context, cfg config.Config) (*pipeline.Runner, func()) {
	var opts []pipeline.Option
	cleanup := func() {}
	if cfg.Caption.APIKey != "" {
		g, err := caption.NewGemini(ctx, cfg.Caption)
		if err != nil {
			log.Printf("Captions disabled: %v", err)
		} else {
			opts = append(opts, pipeline.WithCaptioner(g))
			cleanup = func() { g.Close() }
		}
	}
	return pipeline.New(cfg, opts...), cleanup
}

func runBatch(ctx context.Context, cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	mode := fs.String("mode", "", "force blueprint or room")
	height := optionalFloat(fs, "camera-height", "camera height in meters")
	fov := optionalFloat(fs, "fov", "horizontal field of view in degrees")
	prompt := fs.String("prompt", "", "open-vocabulary classes")
	out := fs.String("out", cfg.OutputDir, "output directory")
	workers := fs.Int("workers", cfg.Workers, "parallel images")
	useOCR := fs.Bool("ocr", cfg.OCR.Enabled, "read blueprint dimension text")
	if err := fs.Parse(args); err != nil {
		return exitInvalidArgs
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "run needs exactly one image or directory")
		return exitInvalidArgs
	}

	cfg.Workers = *workers
	cfg.OCR.Enabled = *useOCR
	runner, cleanup := newRunner(ctx, cfg)
	defer cleanup()

	res, err := runner.Run(ctx, fs.Arg(0), pipeline.Params{
		ModeOverride: *mode,
		CameraHeight: *height,
		FOV:          *fov,
		Prompt:       *prompt,
		OutputDir:    *out,
	})
	if err != nil {
		return fail(err)
	}
	if err := writeJSON(res); err != nil {
		return fail(err)
	}
	return exitOK
}

// imageLoader binds one decoded image to the single-image commands.
type imageLoader struct {
	cfg  config.Config
	path string
}

// classify degrades an unreadable image to room rather than failing.
func (l imageLoader) classify() (any, error) {
	return classify.New(l.cfg.Classifier).ClassifyFile(imaging.NewImageCache(), l.path), nil
}

func (l imageLoader) validate() (any, error) {
	img, err := imaging.NewImageCache().Load(l.path)
	if err != nil {
		return nil, err
	}
	return classify.Validate(img, l.cfg.Validator), nil
}

func runSingle(cfg config.Config, args []string, fn func(imageLoader) (any, error)) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one image path")
		return exitInvalidArgs
	}
	res, err := fn(imageLoader{cfg: cfg, path: args[0]})
	if err != nil {
		return fail(err)
	}
	if err := writeJSON(res); err != nil {
		return fail(err)
	}
	return exitOK
}

func serve(ctx context.Context, cfg config.Config) int {
	runner, cleanup := newRunner(ctx, cfg)
	defer cleanup()

	if err := server.New(runner).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Server error: %v", err)
		return exitFailure
	}
	return exitOK
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail logs err and maps it to an exit code.
func fail(err error) int {
	log.Printf("Error: %v", err)
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		return exitInvalidArgs
	case errors.Is(err, errs.ErrNotFound):
		return exitNotFound
	}
	return exitFailure
}
