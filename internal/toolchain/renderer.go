package toolchain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/eleven-am/vidml/internal/domain"
)

// Renderer drives the browser-based frame renderer subprocess. The whole
// render request is handed over as a JSON job file; the subprocess reports
// its result as JSON on stdout.
type Renderer struct {
	Path string
}

func (r *Renderer) bin() string {
	if r.Path != "" {
		return r.Path
	}
	return "videoml-renderer"
}

// RenderFrames implements domain.FrameRenderer.
func (r *Renderer) RenderFrames(ctx context.Context, req domain.RenderRequest) (domain.RenderResult, error) {
	jobDir, err := os.MkdirTemp("", "vidml-render-*")
	if err != nil {
		return domain.RenderResult{}, fmt.Errorf("create job dir: %w", err)
	}
	defer os.RemoveAll(jobDir)

	jobPath := filepath.Join(jobDir, "job.json")
	data, err := json.Marshal(req)
	if err != nil {
		return domain.RenderResult{}, fmt.Errorf("encode render job: %w", err)
	}
	if err := os.WriteFile(jobPath, data, 0o644); err != nil {
		return domain.RenderResult{}, fmt.Errorf("write render job: %w", err)
	}

	out, err := output(exec.CommandContext(ctx, r.bin(), "render", "--job", jobPath))
	if err != nil {
		return domain.RenderResult{}, fmt.Errorf("render frames: %w", err)
	}

	var result domain.RenderResult
	if err := json.Unmarshal(out, &result); err != nil {
		return domain.RenderResult{}, fmt.Errorf("parse render result: %w", err)
	}
	return result, nil
}
