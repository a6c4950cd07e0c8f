package domain

import "context"

// Loader turns one source file into its declared composition units,
// preserving declaration order.
type Loader interface {
	Load(ctx context.Context, sourcePath string) ([]CompositionUnit, error)
}

// Generator compiles one composition into its script, timeline, and audio
// artifacts at the paths named by the request. Re-issuing a request with
// Fresh unset must reuse cached audio when the usage ledger shows no change.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) error
}

// FrameRenderer produces the raster frame sequence for a render request.
// It owns frame-range inference (when EndFrame is nil) and worker-count
// selection (when Workers is nil).
type FrameRenderer interface {
	RenderFrames(ctx context.Context, req RenderRequest) (RenderResult, error)
}
