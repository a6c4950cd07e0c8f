package main

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/eleven-am/vidml/internal/domain"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	if code := run([]string{"transmogrify"}); code != 2 {
		t.Fatalf("expected exit 2 for unknown command, got %d", code)
	}
}

func TestRunPrintsHelp(t *testing.T) {
	for _, args := range [][]string{nil, {"help"}, {"-h"}, {"--help"}} {
		if code := run(args); code != 0 {
			t.Fatalf("expected exit 0 for %v, got %d", args, code)
		}
	}
}

func TestRenderRequiresScript(t *testing.T) {
	code := renderCmd([]string{"--frames", t.TempDir(), "--out", "out.mp4", "--quiet"})
	if code != 2 {
		t.Fatalf("expected exit 2 without --script, got %d", code)
	}
}

func TestRenderRejectsBadFlag(t *testing.T) {
	if code := renderCmd([]string{"--no-such-flag"}); code != 2 {
		t.Fatalf("expected exit 2 for unknown flag, got %d", code)
	}
}

func TestStringListAccumulates(t *testing.T) {
	var l stringList
	for _, v := range []string{"-threads", "4", "-preset"} {
		if err := l.Set(v); err != nil {
			t.Fatalf("Set(%q) failed: %v", v, err)
		}
	}
	if len(l) != 3 || l[0] != "-threads" || l[2] != "-preset" {
		t.Fatalf("unexpected list contents: %v", l)
	}
}

func TestParseSeed(t *testing.T) {
	configSeed := int64(7)

	seed, err := parseSeed("", &configSeed)
	if err != nil || seed == nil || *seed != 7 {
		t.Fatalf("expected config seed 7, got %v, %v", seed, err)
	}

	seed, err = parseSeed("42", &configSeed)
	if err != nil || seed == nil || *seed != 42 {
		t.Fatalf("expected flag seed 42 to win, got %v, %v", seed, err)
	}

	if _, err = parseSeed("not-a-number", nil); !domain.IsUserError(err) {
		t.Fatalf("expected validation error for bad seed, got %v", err)
	}
}

func TestReportExitCodes(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	if code := report(logger, domain.Validationf("bad input")); code != 2 {
		t.Fatalf("expected exit 2 for validation error, got %d", code)
	}
	if code := report(logger, errors.New("encoder crashed")); code != 1 {
		t.Fatalf("expected exit 1 for collaborator error, got %d", code)
	}
}

func TestOptionalFlagValues(t *testing.T) {
	if got := optInt(-1, -1); got != nil {
		t.Fatalf("expected nil for unset int, got %v", *got)
	}
	if got := optInt(0, -1); got == nil || *got != 0 {
		t.Fatalf("expected 0 to survive with sentinel -1, got %v", got)
	}
	if got := optFloat(0); got != nil {
		t.Fatalf("expected nil for unset float, got %v", *got)
	}
	if got := optFloat(29.97); got == nil || *got != 29.97 {
		t.Fatalf("expected 29.97, got %v", got)
	}
}
