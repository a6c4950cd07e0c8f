package generate

import (
	"context"
	"log/slog"
	"time"

	"github.com/eleven-am/vidml/internal/domain"
)

// LoggingGenerator decorates a Generator with per-composition progress
// logging. It adds no behavior beyond observation.
type LoggingGenerator struct {
	Next   domain.Generator
	Logger *slog.Logger
}

func (g LoggingGenerator) Generate(ctx context.Context, req domain.GenerationRequest) error {
	start := time.Now()
	g.Logger.Info("generating composition",
		"id", req.Unit.ID,
		"source", req.Source,
		"batch", req.BatchID,
		"fresh", req.Fresh,
	)

	if err := g.Next.Generate(ctx, req); err != nil {
		g.Logger.Error("generation failed",
			"id", req.Unit.ID,
			"source", req.Source,
			"batch", req.BatchID,
			"err", err,
		)
		return err
	}

	g.Logger.Info("generated composition",
		"id", req.Unit.ID,
		"batch", req.BatchID,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
