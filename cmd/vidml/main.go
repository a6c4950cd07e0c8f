package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/eleven-am/vidml"
	"github.com/eleven-am/vidml/internal/domain"
	"github.com/eleven-am/vidml/internal/project"
	"github.com/eleven-am/vidml/internal/render"
	"github.com/eleven-am/vidml/internal/toolchain"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return 0
	}

	switch args[0] {
	case "generate":
		return generateCmd(args[1:])
	case "render":
		return renderCmd(args[1:])
	case "pipeline":
		return pipelineCmd(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		return 2
	}
}

func newLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newOrchestrator(logger *slog.Logger) *vidml.Orchestrator {
	compiler := &toolchain.Compiler{}
	return vidml.New(vidml.Options{
		Loader:    compiler,
		Generator: compiler,
		Renderer:  &toolchain.Renderer{},
		Logger:    logger,
	})
}

// report maps the error taxonomy to the exit-code contract: validation
// problems print plainly and exit 2, collaborator failures keep their full
// detail and exit 1.
func report(logger *slog.Logger, err error) int {
	if domain.IsUserError(err) {
		fmt.Fprintf(os.Stderr, "vidml: %v\n", err)
		return 2
	}
	logger.Error("command failed", "err", err)
	return 1
}

func generateCmd(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	var (
		scriptOut   = fs.String("script-out", "", "explicit script artifact path")
		timelineOut = fs.String("timeline-out", "", "explicit timeline artifact path")
		audioOut    = fs.String("audio-out", "", "explicit audio artifact path")
		outDir      = fs.String("out-dir", "", "explicit composition output directory")
		usageOut    = fs.String("usage-out", "", "usage ledger path")
		noUsage     = fs.Bool("no-usage", false, "disable the usage ledger")
		provider    = fs.String("provider", "", "speech provider override")
		sfxProvider = fs.String("sfx-provider", "", "sfx provider override")
		musicProv   = fs.String("music-provider", "", "music provider override")
		seedFlag    = fs.String("seed", "", "deterministic generation seed")
		fresh       = fs.Bool("fresh", false, "force full regeneration, ignoring cached audio")
		watchMode   = fs.Bool("watch", false, "keep rebuilding on source changes until interrupted")
		quiet       = fs.Bool("quiet", false, "only log errors")
		projectDir  = fs.String("project-dir", "", "explicit project root")
	)
	var environment string
	fs.StringVar(&environment, "env", "", "provider environment")
	fs.StringVar(&environment, "environment", "", "provider environment")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := newLogger(*quiet)

	cwd, err := os.Getwd()
	if err != nil {
		return report(logger, err)
	}

	root := *projectDir
	if root == "" {
		root = project.FindRoot(cwd)
	}
	cfg, err := project.LoadConfig(project.ConfigPath(root))
	if err != nil {
		return report(logger, err)
	}

	seed, err := parseSeed(*seedFlag, cfg.Seed)
	if err != nil {
		return report(logger, err)
	}

	opts := vidml.GenerateOptions{
		Source:     fs.Arg(0),
		WorkingDir: cwd,
		ProjectDir: *projectDir,
		Overrides: vidml.Overrides{
			Script:   *scriptOut,
			Timeline: *timelineOut,
			Audio:    *audioOut,
			OutDir:   *outDir,
		},
		Environment:   fallback(environment, cfg.Environment),
		Provider:      fallback(*provider, cfg.Provider),
		SFXProvider:   fallback(*sfxProvider, cfg.SFXProvider),
		MusicProvider: fallback(*musicProv, cfg.MusicProvider),
		Seed:          seed,
		Fresh:         *fresh,
		UsagePath:     *usageOut,
		UsageDisabled: *noUsage,
	}

	orch := newOrchestrator(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orch.Generate(ctx, opts); err != nil {
		if !*watchMode || domain.IsUserError(err) {
			return report(logger, err)
		}
		// In watch mode a failing first build is recoverable: the next
		// change event rebuilds it.
		logger.Error("initial generation failed", "err", err)
	}

	if !*watchMode {
		return 0
	}
	if err := orch.Watch(ctx, opts); err != nil {
		return report(logger, err)
	}
	return 0
}

func renderCmd(args []string) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var (
		script      = fs.String("script", "", "script artifact path (required)")
		frames      = fs.String("frames", "", "frames directory (required)")
		out         = fs.String("out", "", "output video path (required)")
		timeline    = fs.String("timeline", "", "timeline artifact path")
		audio       = fs.String("audio", "", "audio track path")
		title       = fs.String("title", "", "overlay title")
		subtitle    = fs.String("subtitle", "", "overlay subtitle")
		start       = fs.Int("start", 0, "first frame index")
		end         = fs.Int("end", -1, "last frame index (default: inferred from the timeline)")
		pattern     = fs.String("pattern", "frame-%06d.png", "frame filename pattern")
		scale       = fs.Float64("scale", 1, "device scale factor")
		workers     = fs.Int("workers", 0, "parallel frame workers (default: renderer's choice)")
		bundle      = fs.String("browser-bundle", "", "renderer browser bundle path")
		fps         = fs.Float64("fps", 0, "output fps override")
		width       = fs.Int("width", 0, "output width override")
		height      = fs.Int("height", 0, "output height override")
		duration    = fs.Int("duration", 0, "output duration in frames")
		debugLayout = fs.Bool("debug-layout", false, "render layout debugging overlays")
		noClean     = fs.Bool("no-clean", false, "keep stale frames from a previous run")
		ffmpegPath  = fs.String("ffmpeg", "ffmpeg", "encoder binary")
		quiet       = fs.Bool("quiet", false, "only log errors")
	)
	var ffmpegArgs stringList
	fs.Var(&ffmpegArgs, "ffmpeg-arg", "extra encoder argument (repeatable)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := newLogger(*quiet)

	opts := render.Options{
		ScriptPath:     *script,
		TimelinePath:   *timeline,
		AudioPath:      *audio,
		FramesDir:      *frames,
		OutputPath:     *out,
		Pattern:        *pattern,
		Start:          *start,
		End:            optInt(*end, -1),
		Scale:          *scale,
		Workers:        optInt(*workers, 0),
		BrowserBundle:  *bundle,
		Title:          *title,
		Subtitle:       *subtitle,
		DebugLayout:    *debugLayout,
		EncoderPath:    *ffmpegPath,
		EncoderArgs:    ffmpegArgs,
		FPS:            optFloat(*fps),
		Width:          optInt(*width, 0),
		Height:         optInt(*height, 0),
		DurationFrames: optInt(*duration, 0),
		CleanFrames:    !*noClean,
	}

	orch := newOrchestrator(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputPath, err := orch.Render(ctx, opts)
	if err != nil {
		return report(logger, err)
	}
	fmt.Fprintln(os.Stdout, outputPath)
	return 0
}

func pipelineCmd(args []string) int {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	var (
		out        = fs.String("out", "", "output video path")
		frames     = fs.String("frames", "", "frames directory")
		projectDir = fs.String("project-dir", "", "explicit project root")
		quiet      = fs.Bool("quiet", false, "only log errors")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := newLogger(*quiet)

	cwd, err := os.Getwd()
	if err != nil {
		return report(logger, err)
	}

	orch := newOrchestrator(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputPath, err := orch.Pipeline(ctx, vidml.PipelineOptions{
		Source:     fs.Arg(0),
		WorkingDir: cwd,
		ProjectDir: *projectDir,
		OutputPath: *out,
		FramesDir:  *frames,
	})
	if err != nil {
		return report(logger, err)
	}
	fmt.Fprintln(os.Stdout, outputPath)
	return 0
}

// stringList is a repeatable flag value.
type stringList []string

func (l *stringList) String() string { return fmt.Sprint([]string(*l)) }

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func parseSeed(flagValue string, configSeed *int64) (*int64, error) {
	if flagValue == "" {
		return configSeed, nil
	}
	seed, err := strconv.ParseInt(flagValue, 10, 64)
	if err != nil {
		return nil, domain.Validationf("--seed must be an integer, got %q", flagValue)
	}
	return &seed, nil
}

func fallback(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func optInt(v, unset int) *int {
	if v == unset {
		return nil
	}
	return &v
}

func optFloat(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `usage:
  vidml generate [source] [flags]   compile compositions into artifacts
  vidml render   [flags]            render artifacts into a video
  vidml pipeline [source] [flags]   generate then render one composition

Run "vidml <command> -h" for the command's flags.
`)
}
