// Package vidml orchestrates a declarative video-composition pipeline: it
// resolves composition source files, drives their compilation into script,
// timeline, and audio artifacts, and hands the result to a frame renderer
// and encoder to produce a final video.
//
// # Architecture
//
// The library is built around three collaborator interfaces that must be
// implemented (or taken from the toolchain package, which shells out to the
// videoml toolchain binaries):
//
//   - Loader: lists the composition units declared in one source file
//   - Generator: compiles one composition into its artifacts
//   - FrameRenderer: renders a script and timeline into a frame sequence
//
// # Basic Usage
//
//	orch := vidml.New(vidml.Options{
//	    Loader:    &toolchain.Compiler{},
//	    Generator: &toolchain.Compiler{},
//	    Renderer:  &toolchain.Renderer{},
//	})
//
//	// Compile every composition under content/
//	if err := orch.Generate(ctx, vidml.GenerateOptions{}); err != nil {
//	    log.Fatal(err)
//	}
//
// # Watch Mode
//
// Watch starts a continuous session: filesystem changes to tracked sources
// trigger scoped rebuilds, while config or shared-file changes rebuild
// everything. Overlapping triggers are debounced and coalesced so rebuilds
// never run concurrently. The session runs until the context is canceled.
//
// # Render Handoff
//
// Render is the single boundary between generated artifacts and a finished
// video: the script artifact is required, the timeline is optional, stale
// frames are cleaned by default, and encoder arguments beyond the required
// set are passed through uninterpreted.
package vidml

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/eleven-am/vidml/internal/artifact"
	"github.com/eleven-am/vidml/internal/domain"
	"github.com/eleven-am/vidml/internal/generate"
	"github.com/eleven-am/vidml/internal/project"
	"github.com/eleven-am/vidml/internal/render"
	"github.com/eleven-am/vidml/internal/resolve"
	"github.com/eleven-am/vidml/internal/watch"
)

type (
	// Loader turns one source file into its declared composition units.
	Loader = domain.Loader

	// Generator compiles one composition into script, timeline, and audio
	// artifacts. A batch calls it for one composition at a time.
	Generator = domain.Generator

	// FrameRenderer produces the raster frame sequence for a render
	// request. It owns frame-range inference and worker-count selection.
	FrameRenderer = domain.FrameRenderer

	// CompositionUnit is one named composition within a source file.
	CompositionUnit = domain.CompositionUnit

	// SourceRun pairs a source file with its compositions in declaration
	// order.
	SourceRun = domain.SourceRun

	// ArtifactPaths locates the generated artifacts for one composition.
	ArtifactPaths = domain.ArtifactPaths

	// GenerationRequest is handed to the Generator once per composition.
	GenerationRequest = domain.GenerationRequest

	// RenderRequest is the single handoff from artifacts to video.
	RenderRequest = domain.RenderRequest

	// RenderResult reports what the frame renderer produced.
	RenderResult = domain.RenderResult

	// Overrides carries explicit per-field artifact output paths.
	Overrides = artifact.Overrides

	// RenderOptions is the path-level input to Render.
	RenderOptions = render.Options
)

// Options configures the Orchestrator behavior and dependencies.
type Options struct {
	// Loader is required. Lists compositions declared in a source file.
	Loader Loader

	// Generator is required. Compiles compositions into artifacts.
	Generator Generator

	// Renderer is required. Produces frame sequences for rendering.
	Renderer FrameRenderer

	// Logger receives progress and watch-session events.
	// Default: a logger that discards everything.
	Logger *slog.Logger

	// FindRoot locates the project root for a source file's directory.
	// Default: the marker walk in internal/project.
	FindRoot func(dir string) string

	// DebounceWindow is how long the watch engine waits for a burst of
	// filesystem events to settle before triggering one rebuild.
	// Default: 250ms.
	DebounceWindow time.Duration
}

func (o *Options) validate() {
	if o.Loader == nil {
		panic("vidml: Loader is required")
	}
	if o.Generator == nil {
		panic("vidml: Generator is required")
	}
	if o.Renderer == nil {
		panic("vidml: Renderer is required")
	}
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.FindRoot == nil {
		o.FindRoot = project.FindRoot
	}
}

// Orchestrator is the main entry point for pipeline operations. It is safe
// to reuse across batches; watch sessions hold no state beyond their run.
type Orchestrator struct {
	opts    Options
	batch   generate.Batch
	handoff render.Handoff
}

// New creates an Orchestrator with the given options. It panics if a
// required collaborator (Loader, Generator, Renderer) is nil.
func New(opts Options) *Orchestrator {
	opts.validate()
	opts.setDefaults()

	deriver := artifact.Deriver{FindRoot: opts.FindRoot}
	return &Orchestrator{
		opts: opts,
		batch: generate.Batch{
			Generator: generate.LoggingGenerator{Next: opts.Generator, Logger: opts.Logger},
			Deriver:   deriver,
		},
		handoff: render.Handoff{Renderer: opts.Renderer, Logger: opts.Logger},
	}
}

// GenerateOptions selects what to generate and the knobs forwarded to the
// Generator. Output overrides are only legal when the batch resolves to
// exactly one composition.
type GenerateOptions struct {
	// Source is a source file or directory; empty means discovery from
	// WorkingDir (a content/ subdirectory, or exactly one source file).
	Source string

	// WorkingDir anchors relative paths and discovery. Default: the
	// process working directory.
	WorkingDir string

	// ProjectDir overrides project-root discovery for artifact defaults.
	ProjectDir string

	Overrides Overrides

	Environment   string
	Provider      string
	SFXProvider   string
	MusicProvider string
	Seed          *int64
	Fresh         bool

	// UsagePath is the provider usage ledger. Default:
	// <root>/.videoml/usage.json. UsageDisabled turns the ledger off.
	UsagePath     string
	UsageDisabled bool
}

// Generate resolves sources, loads their compositions, and generates every
// artifact sequentially. Structural validation runs before any generation
// I/O, so a rejected batch leaves no partial artifacts.
func (o *Orchestrator) Generate(ctx context.Context, opts GenerateOptions) error {
	cwd, err := workingDir(opts.WorkingDir)
	if err != nil {
		return err
	}

	sources, err := resolve.Sources(opts.Source, cwd)
	if err != nil {
		return err
	}
	runs, err := o.loadRuns(ctx, sources)
	if err != nil {
		return err
	}

	return o.batch.Run(ctx, runs, nil, o.batchOptions(opts, cwd))
}

// Watch resolves sources once, then reacts to filesystem changes until the
// context is canceled. The watched directory set is fixed at startup; no
// generation happens before the first change event.
func (o *Orchestrator) Watch(ctx context.Context, opts GenerateOptions) error {
	cwd, err := workingDir(opts.WorkingDir)
	if err != nil {
		return err
	}

	sources, err := resolve.Sources(opts.Source, cwd)
	if err != nil {
		return err
	}

	root := opts.ProjectDir
	if root == "" {
		root = o.opts.FindRoot(cwd)
	}
	session := watch.NewSession(sources, project.ConfigPath(root))

	batchOpts := o.batchOptions(opts, cwd)
	rebuild := func(ctx context.Context, scoped []string) error {
		target := sources
		if scoped != nil {
			target = scoped
		}
		runs, err := o.loadRuns(ctx, target)
		if err != nil {
			return err
		}
		return o.batch.Run(ctx, runs, nil, batchOpts)
	}

	engine := watch.NewEngine(session, rebuild, o.opts.Logger, o.opts.DebounceWindow)
	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer engine.Stop()

	<-ctx.Done()
	return nil
}

// Render runs the handoff from generated artifacts to a finished video and
// returns the absolute output path.
func (o *Orchestrator) Render(ctx context.Context, opts RenderOptions) (string, error) {
	return o.handoff.Run(ctx, opts)
}

// PipelineOptions configures the generate-then-render convenience flow.
type PipelineOptions struct {
	Source     string
	WorkingDir string
	ProjectDir string

	// OutputPath is the final video. Default: <outDir>/<id>.mp4.
	OutputPath string

	// FramesDir holds the intermediate frame sequence.
	// Default: <outDir>/frames.
	FramesDir string

	// EncoderPath overrides the encoder binary. Default: ffmpeg.
	EncoderPath string
}

// Pipeline generates and renders exactly one composition. It fails before
// any generation when the source resolves to zero or multiple compositions.
func (o *Orchestrator) Pipeline(ctx context.Context, opts PipelineOptions) (string, error) {
	cwd, err := workingDir(opts.WorkingDir)
	if err != nil {
		return "", err
	}

	sources, err := resolve.Sources(opts.Source, cwd)
	if err != nil {
		return "", err
	}
	runs, err := o.loadRuns(ctx, sources)
	if err != nil {
		return "", err
	}

	total := 0
	for _, run := range runs {
		total += len(run.Units)
	}
	if total != 1 {
		return "", domain.Validationf("pipeline requires exactly one composition, resolved %d", total)
	}

	genOpts := o.batchOptions(GenerateOptions{ProjectDir: opts.ProjectDir}, cwd)
	if err := o.batch.Run(ctx, runs, nil, genOpts); err != nil {
		return "", err
	}

	var unit domain.CompositionUnit
	var source string
	for _, run := range runs {
		if len(run.Units) > 0 {
			unit, source = run.Units[0], run.Source
		}
	}
	paths := o.batch.Deriver.Derive(unit.ID, source, opts.ProjectDir, artifact.Overrides{})

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(paths.OutDir, unit.ID+".mp4")
	}
	framesDir := opts.FramesDir
	if framesDir == "" {
		framesDir = filepath.Join(paths.OutDir, "frames")
	}

	return o.handoff.Run(ctx, render.Options{
		ScriptPath:   paths.Script,
		TimelinePath: ifExists(paths.Timeline),
		AudioPath:    ifExists(paths.Audio),
		FramesDir:    framesDir,
		OutputPath:   outputPath,
		EncoderPath:  opts.EncoderPath,
		CleanFrames:  true,
	})
}

func (o *Orchestrator) loadRuns(ctx context.Context, sources []string) ([]domain.SourceRun, error) {
	runs := make([]domain.SourceRun, 0, len(sources))
	for _, source := range sources {
		units, err := o.opts.Loader.Load(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", source, err)
		}
		runs = append(runs, domain.SourceRun{Source: source, Units: units})
	}
	return runs, nil
}

func (o *Orchestrator) batchOptions(opts GenerateOptions, cwd string) generate.Options {
	usagePath := opts.UsagePath
	if usagePath == "" && !opts.UsageDisabled {
		root := opts.ProjectDir
		if root == "" {
			root = o.opts.FindRoot(cwd)
		}
		usagePath = filepath.Join(root, ".videoml", "usage.json")
	}

	return generate.Options{
		Overrides:     opts.Overrides,
		ProjectDir:    opts.ProjectDir,
		Environment:   opts.Environment,
		Provider:      opts.Provider,
		SFXProvider:   opts.SFXProvider,
		MusicProvider: opts.MusicProvider,
		Seed:          opts.Seed,
		Fresh:         opts.Fresh,
		UsagePath:     usagePath,
		UsageDisabled: opts.UsageDisabled,
	}
}

func workingDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return cwd, nil
}

func ifExists(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
