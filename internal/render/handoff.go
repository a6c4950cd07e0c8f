package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/eleven-am/vidml/internal/domain"
)

const defaultFramePattern = "frame-%06d.png"

// Options is the path-level render input, before artifacts are loaded.
type Options struct {
	ScriptPath   string
	TimelinePath string
	AudioPath    string

	FramesDir  string
	OutputPath string
	Pattern    string

	Start int
	End   *int

	Scale         float64
	Workers       *int
	BrowserBundle string
	Title         string
	Subtitle      string
	DebugLayout   bool

	EncoderPath string
	EncoderArgs []string

	FPS            *float64
	Width          *int
	Height         *int
	DurationFrames *int

	CleanFrames bool
}

// Handoff is the single boundary between generated artifacts and a finished
// video: it loads the artifacts, drives the frame renderer, then muxes the
// frame sequence with the encoder.
type Handoff struct {
	Renderer domain.FrameRenderer
	Logger   *slog.Logger
}

// Run validates the request, loads script (required) and timeline
// (optional), renders frames, and encodes the final container. It returns
// the absolute output path.
func (h Handoff) Run(ctx context.Context, opts Options) (string, error) {
	if err := validate(opts); err != nil {
		return "", err
	}

	script, err := loadArtifact(opts.ScriptPath, "script")
	if err != nil {
		return "", err
	}
	var timeline json.RawMessage
	if opts.TimelinePath != "" {
		timeline, err = loadArtifact(opts.TimelinePath, "timeline")
		if err != nil {
			return "", err
		}
	}

	framesDir, err := filepath.Abs(opts.FramesDir)
	if err != nil {
		return "", fmt.Errorf("resolve frames dir: %w", err)
	}
	outputPath, err := filepath.Abs(opts.OutputPath)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}

	if err := prepareFramesDir(framesDir, opts.CleanFrames); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	req := domain.RenderRequest{
		Script:         script,
		Timeline:       timeline,
		FramesDir:      framesDir,
		OutputPath:     outputPath,
		AudioPath:      opts.AudioPath,
		FramePattern:   pattern(opts.Pattern),
		StartFrame:     opts.Start,
		EndFrame:       opts.End,
		DeviceScale:    scale(opts.Scale),
		Workers:        opts.Workers,
		BrowserBundle:  opts.BrowserBundle,
		Title:          opts.Title,
		Subtitle:       opts.Subtitle,
		DebugLayout:    opts.DebugLayout,
		EncoderPath:    opts.EncoderPath,
		EncoderArgs:    opts.EncoderArgs,
		FPS:            opts.FPS,
		Width:          opts.Width,
		Height:         opts.Height,
		DurationFrames: opts.DurationFrames,
		CleanFrames:    opts.CleanFrames,
	}

	h.Logger.Info("rendering frames",
		"framesDir", framesDir,
		"start", req.StartFrame,
		"pattern", req.FramePattern,
	)
	result, err := h.Renderer.RenderFrames(ctx, req)
	if err != nil {
		return "", fmt.Errorf("render frames: %w", err)
	}
	h.Logger.Info("rendered frames", "frames", result.Frames, "fps", result.FPS)

	if err := encode(ctx, req, result); err != nil {
		return "", err
	}
	h.Logger.Info("encoded video", "out", outputPath)

	return outputPath, nil
}

func validate(opts Options) error {
	if opts.ScriptPath == "" {
		return domain.Validationf("render requires a script path")
	}
	if opts.FramesDir == "" {
		return domain.Validationf("render requires a frames directory")
	}
	if opts.OutputPath == "" {
		return domain.Validationf("render requires an output path")
	}
	if p := pattern(opts.Pattern); !strings.Contains(p, "%") {
		return domain.Validationf("frame pattern %q has no %%d verb", p)
	}
	if opts.Start < 0 {
		return domain.Validationf("start frame must not be negative")
	}
	if opts.End != nil && *opts.End < opts.Start {
		return domain.Validationf("end frame %d precedes start frame %d", *opts.End, opts.Start)
	}
	if opts.Workers != nil && *opts.Workers <= 0 {
		return domain.Validationf("worker count must be a positive integer")
	}
	return nil
}

func loadArtifact(path, kind string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &domain.MissingArtifactError{Path: path, Kind: kind}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s artifact: %w", kind, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s artifact %s is not valid JSON", kind, path)
	}
	return json.RawMessage(data), nil
}

// prepareFramesDir ensures the frames directory exists, emptying it first
// when clean is set so stale frames from an earlier run cannot leak into
// the encoded output.
func prepareFramesDir(dir string, clean bool) error {
	if clean {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean frames dir: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create frames dir: %w", err)
	}
	return nil
}

func pattern(p string) string {
	if p == "" {
		return defaultFramePattern
	}
	return p
}

func scale(s float64) float64 {
	if s <= 0 {
		return 1
	}
	return s
}
