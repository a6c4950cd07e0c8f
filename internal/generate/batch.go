package generate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/eleven-am/vidml/internal/artifact"
	"github.com/eleven-am/vidml/internal/domain"
)

// Options carries the per-batch knobs forwarded into every generation
// request. Overrides are only legal when the batch holds exactly one
// composition.
type Options struct {
	Overrides  artifact.Overrides
	ProjectDir string

	Environment   string
	Provider      string
	SFXProvider   string
	MusicProvider string
	Seed          *int64
	Fresh         bool

	UsagePath     string
	UsageDisabled bool
}

// Batch sequences generation across source runs. Compositions are generated
// one at a time; provider resources behind the Generator are not assumed
// safe for concurrent use.
type Batch struct {
	Generator domain.Generator
	Deriver   artifact.Deriver
}

// Run validates the whole batch, then generates every composition in every
// run, skipping runs outside scope when scope is non-nil. The first failure
// aborts the remainder.
func (b Batch) Run(ctx context.Context, runs []domain.SourceRun, scope map[string]bool, opts Options) error {
	if err := b.validate(runs, opts); err != nil {
		return err
	}

	batchID := uuid.New().String()
	for _, run := range runs {
		if scope != nil && !scope[run.Source] {
			continue
		}
		for _, unit := range run.Units {
			paths := b.Deriver.Derive(unit.ID, run.Source, opts.ProjectDir, opts.Overrides)
			req := domain.GenerationRequest{
				BatchID:       batchID,
				Unit:          unit,
				Source:        run.Source,
				Paths:         paths,
				Environment:   opts.Environment,
				Provider:      opts.Provider,
				SFXProvider:   opts.SFXProvider,
				MusicProvider: opts.MusicProvider,
				Seed:          opts.Seed,
				Fresh:         opts.Fresh,
				UsagePath:     opts.UsagePath,
				UsageDisabled: opts.UsageDisabled,
			}
			if err := b.Generator.Generate(ctx, req); err != nil {
				return fmt.Errorf("generate %s (%s): %w", unit.ID, run.Source, err)
			}
		}
	}
	return nil
}

// validate runs every structural check before any generation I/O: the
// single-target constraint for output overrides, and artifact-path
// collisions between compositions that would silently overwrite each other.
func (b Batch) validate(runs []domain.SourceRun, opts Options) error {
	total := 0
	for _, run := range runs {
		total += len(run.Units)
	}

	if opts.Overrides.Any() && total != 1 {
		return domain.Validationf(
			"output overrides require exactly one composition, resolved %d across %d sources",
			total, len(runs),
		)
	}

	owner := make(map[string]string)
	for _, run := range runs {
		for _, unit := range run.Units {
			paths := b.Deriver.Derive(unit.ID, run.Source, opts.ProjectDir, opts.Overrides)
			if prev, ok := owner[paths.Script]; ok {
				return domain.Validationf(
					"composition %q in %s and %s would both write %s",
					unit.ID, prev, run.Source, paths.Script,
				)
			}
			owner[paths.Script] = run.Source
		}
	}
	return nil
}
