// Package toolchain implements the collaborator interfaces by shelling out
// to the videoml toolchain binaries, which speak JSON on stdout.
package toolchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/eleven-am/vidml/internal/domain"
)

const environmentVar = "VIDEOML_ENV"

// Compiler drives the composition compiler subprocess for both listing and
// artifact generation.
type Compiler struct {
	Path string
}

func (c *Compiler) bin() string {
	if c.Path != "" {
		return c.Path
	}
	return "videoml-compiler"
}

// Load implements domain.Loader. Declaration order from the compiler is
// preserved.
func (c *Compiler) Load(ctx context.Context, sourcePath string) ([]domain.CompositionUnit, error) {
	out, err := output(exec.CommandContext(ctx, c.bin(), "list", "--json", sourcePath))
	if err != nil {
		return nil, fmt.Errorf("list compositions in %s: %w", sourcePath, err)
	}

	var listing struct {
		Compositions []domain.CompositionUnit `json:"compositions"`
	}
	if err := json.Unmarshal(out, &listing); err != nil {
		return nil, fmt.Errorf("parse composition listing for %s: %w", sourcePath, err)
	}
	return listing.Compositions, nil
}

// Generate implements domain.Generator.
func (c *Compiler) Generate(ctx context.Context, req domain.GenerationRequest) error {
	cmd := exec.CommandContext(ctx, c.bin(), generateArgs(req)...)
	cmd.Env = os.Environ()
	if req.Environment != "" {
		cmd.Env = append(cmd.Env, environmentVar+"="+req.Environment)
	}

	if _, err := output(cmd); err != nil {
		return fmt.Errorf("compile %s: %w", req.Unit.ID, err)
	}
	return nil
}

func generateArgs(req domain.GenerationRequest) []string {
	args := []string{
		"generate", req.Source,
		"--composition", req.Unit.ID,
		"--script-out", req.Paths.Script,
		"--timeline-out", req.Paths.Timeline,
		"--audio-out", req.Paths.Audio,
		"--out-dir", req.Paths.OutDir,
	}
	if req.Provider != "" {
		args = append(args, "--provider", req.Provider)
	}
	if req.SFXProvider != "" {
		args = append(args, "--sfx-provider", req.SFXProvider)
	}
	if req.MusicProvider != "" {
		args = append(args, "--music-provider", req.MusicProvider)
	}
	if req.Seed != nil {
		args = append(args, "--seed", strconv.FormatInt(*req.Seed, 10))
	}
	if req.Fresh {
		args = append(args, "--fresh")
	}
	if req.UsageDisabled {
		args = append(args, "--no-usage")
	} else if req.UsagePath != "" {
		args = append(args, "--usage-out", req.UsagePath)
	}
	return args
}

// output runs cmd and returns stdout, folding captured stderr into the
// error so subprocess diagnostics survive the boundary.
func output(cmd *exec.Cmd) ([]byte, error) {
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if detail := strings.TrimSpace(string(exitErr.Stderr)); detail != "" {
				return nil, fmt.Errorf("%w: %s", err, detail)
			}
		}
		return nil, err
	}
	return out, nil
}
