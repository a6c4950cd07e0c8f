package artifact

import (
	"path/filepath"
	"testing"
)

func fixedRoot(root string) func(string) string {
	return func(string) string { return root }
}

func TestDeriveDefaults(t *testing.T) {
	d := Deriver{FindRoot: fixedRoot("/p")}

	paths := d.Derive("intro", "/p/content/intro.videoml.ts", "", Overrides{})

	if paths.Script != filepath.Join("/p", "src", "videos", "intro", "intro.script.json") {
		t.Fatalf("unexpected script path: %s", paths.Script)
	}
	if paths.Timeline != filepath.Join("/p", "src", "videos", "intro", "intro.timeline.json") {
		t.Fatalf("unexpected timeline path: %s", paths.Timeline)
	}
	if paths.Audio != filepath.Join("/p", "public", "videoml", "intro.wav") {
		t.Fatalf("unexpected audio path: %s", paths.Audio)
	}
	if paths.OutDir != filepath.Join("/p", ".videoml", "out", "intro") {
		t.Fatalf("unexpected out dir: %s", paths.OutDir)
	}
}

func TestDeriveOverridesArePerField(t *testing.T) {
	d := Deriver{FindRoot: fixedRoot("/p")}

	paths := d.Derive("intro", "/p/content/intro.videoml.ts", "", Overrides{Script: "/tmp/custom.json"})

	if paths.Script != "/tmp/custom.json" {
		t.Fatalf("override should win, got %s", paths.Script)
	}
	if paths.Timeline != filepath.Join("/p", "src", "videos", "intro", "intro.timeline.json") {
		t.Fatalf("timeline should keep its default, got %s", paths.Timeline)
	}
	if paths.Audio != filepath.Join("/p", "public", "videoml", "intro.wav") {
		t.Fatalf("audio should keep its default, got %s", paths.Audio)
	}
	if paths.OutDir != filepath.Join("/p", ".videoml", "out", "intro") {
		t.Fatalf("out dir should keep its default, got %s", paths.OutDir)
	}
}

func TestDeriveExplicitProjectDirSkipsRootWalk(t *testing.T) {
	d := Deriver{FindRoot: func(string) string {
		t.Fatal("FindRoot should not be consulted with an explicit project dir")
		return ""
	}}

	paths := d.Derive("intro", "/elsewhere/intro.videoml.ts", "/q", Overrides{})
	if paths.Script != filepath.Join("/q", "src", "videos", "intro", "intro.script.json") {
		t.Fatalf("unexpected script path: %s", paths.Script)
	}
}

func TestOverridesAny(t *testing.T) {
	if (Overrides{}).Any() {
		t.Fatal("zero overrides should report none")
	}
	if !(Overrides{Audio: "/a.wav"}).Any() {
		t.Fatal("audio override should register")
	}
}
