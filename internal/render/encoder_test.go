package render

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/eleven-am/vidml/internal/domain"
)

func baseRequest() domain.RenderRequest {
	return domain.RenderRequest{
		FramesDir:    "/work/frames",
		OutputPath:   "/work/final.mp4",
		FramePattern: "frame-%06d.png",
	}
}

func TestEncodeArgsRequiredSkeleton(t *testing.T) {
	args := EncodeArgs(baseRequest(), domain.RenderResult{FPS: 24})
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-framerate 24") {
		t.Fatalf("expected renderer fps, got %s", joined)
	}
	if !strings.Contains(joined, "-i "+filepath.Join("/work/frames", "frame-%06d.png")) {
		t.Fatalf("frame input missing: %s", joined)
	}
	if !strings.Contains(joined, "-c:v libx264 -pix_fmt yuv420p") {
		t.Fatalf("video codec args missing: %s", joined)
	}
	if args[len(args)-1] != "/work/final.mp4" {
		t.Fatalf("output path must come last, got %s", args[len(args)-1])
	}
	if strings.Contains(joined, "-c:a") {
		t.Fatalf("no audio args expected without an audio path: %s", joined)
	}
}

func TestEncodeArgsFPSOverrideWinsOverRendererFPS(t *testing.T) {
	req := baseRequest()
	fps := 60.0
	req.FPS = &fps

	joined := strings.Join(EncodeArgs(req, domain.RenderResult{FPS: 24}), " ")
	if !strings.Contains(joined, "-framerate 60") {
		t.Fatalf("expected fps override, got %s", joined)
	}
}

func TestEncodeArgsAudioAndDuration(t *testing.T) {
	req := baseRequest()
	req.AudioPath = "/work/audio.wav"
	frames := 120
	req.DurationFrames = &frames

	joined := strings.Join(EncodeArgs(req, domain.RenderResult{FPS: 30}), " ")
	if !strings.Contains(joined, "-i /work/audio.wav") {
		t.Fatalf("audio input missing: %s", joined)
	}
	if !strings.Contains(joined, "-c:a aac -shortest") {
		t.Fatalf("audio codec args missing: %s", joined)
	}
	if !strings.Contains(joined, "-frames:v 120") {
		t.Fatalf("duration cap missing: %s", joined)
	}
}

func TestEncodeArgsScaleFilter(t *testing.T) {
	req := baseRequest()
	width := 1280
	req.Width = &width

	joined := strings.Join(EncodeArgs(req, domain.RenderResult{FPS: 30}), " ")
	if !strings.Contains(joined, "-vf scale=1280:-2") {
		t.Fatalf("expected proportional scale filter, got %s", joined)
	}
}

func TestEncodeArgsExtraArgsAppendedBeforeOutput(t *testing.T) {
	req := baseRequest()
	req.EncoderArgs = []string{"-movflags", "+faststart"}

	args := EncodeArgs(req, domain.RenderResult{FPS: 30})
	n := len(args)
	if args[n-3] != "-movflags" || args[n-2] != "+faststart" || args[n-1] != "/work/final.mp4" {
		t.Fatalf("extra args must sit between required args and output, got %v", args[n-3:])
	}
}

func TestEncodeArgsStartNumber(t *testing.T) {
	req := baseRequest()
	req.StartFrame = 48

	joined := strings.Join(EncodeArgs(req, domain.RenderResult{FPS: 30}), " ")
	if !strings.Contains(joined, "-start_number 48") {
		t.Fatalf("start number missing: %s", joined)
	}
}
