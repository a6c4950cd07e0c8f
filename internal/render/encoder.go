package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eleven-am/vidml/internal/domain"
)

const defaultEncoder = "ffmpeg"

// EncodeArgs assembles the encoder argument list for muxing a rendered
// frame sequence (plus optional audio) into the final container. Caller
// extra args are appended after the required arguments, before the output
// path, and are never interpreted.
func EncodeArgs(req domain.RenderRequest, res domain.RenderResult) []string {
	fps := res.FPS
	if req.FPS != nil {
		fps = *req.FPS
	}
	if fps <= 0 {
		fps = 30
	}

	args := []string{
		"-nostats", "-hide_banner", "-loglevel", "warning", "-y",
		"-framerate", strconv.FormatFloat(fps, 'g', -1, 64),
		"-start_number", strconv.Itoa(req.StartFrame),
		"-i", filepath.Join(req.FramesDir, req.FramePattern),
	}

	if req.AudioPath != "" {
		args = append(args, "-i", req.AudioPath)
	}

	args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p")

	if req.Width != nil || req.Height != nil {
		args = append(args, "-vf", scaleFilter(req, res))
	}
	if req.DurationFrames != nil {
		args = append(args, "-frames:v", strconv.Itoa(*req.DurationFrames))
	}
	if req.AudioPath != "" {
		args = append(args, "-c:a", "aac", "-shortest")
	}

	args = append(args, req.EncoderArgs...)
	args = append(args, req.OutputPath)

	return args
}

// scaleFilter keeps the unset dimension proportional; -2 lets the encoder
// pick an even value for codec compatibility.
func scaleFilter(req domain.RenderRequest, res domain.RenderResult) string {
	width, height := -2, -2
	if req.Width != nil {
		width = *req.Width
	}
	if req.Height != nil {
		height = *req.Height
	}
	if width == -2 && height == -2 {
		width, height = res.Width, res.Height
	}
	return fmt.Sprintf("scale=%d:%d", width, height)
}

func encode(ctx context.Context, req domain.RenderRequest, res domain.RenderResult) error {
	encoder := req.EncoderPath
	if encoder == "" {
		encoder = defaultEncoder
	}

	cmd := exec.CommandContext(ctx, encoder, EncodeArgs(req, res)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("encode: %w: %s", err, detail)
		}
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
