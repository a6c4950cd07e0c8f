package watch

import (
	"os"
	"path/filepath"
	"testing"
)

func sessionFixture(t *testing.T) (*Session, string) {
	t.Helper()
	root := t.TempDir()

	content := filepath.Join(root, "content")
	nested := filepath.Join(content, "shared")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	source := filepath.Join(content, "intro.videoml.ts")
	if err := os.WriteFile(source, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	config := filepath.Join(root, "videoml.config.yaml")
	if err := os.WriteFile(config, []byte("provider: eleven"), 0o644); err != nil {
		t.Fatal(err)
	}

	return NewSession([]string{source}, config), root
}

func TestSessionDirsAreFixedAndInclusive(t *testing.T) {
	s, root := sessionFixture(t)

	want := map[string]bool{
		filepath.Join(root, "content"):           false,
		filepath.Join(root, "content", "shared"): false,
		root:                                     false,
	}
	for _, dir := range s.Dirs {
		if _, ok := want[dir]; ok {
			want[dir] = true
		}
	}
	for dir, seen := range want {
		if !seen {
			t.Fatalf("expected %s in watched dirs %v", dir, s.Dirs)
		}
	}
}

func TestClassify(t *testing.T) {
	s, root := sessionFixture(t)

	cases := []struct {
		name string
		path string
		want Kind
	}{
		{"config file", filepath.Join(root, "videoml.config.yaml"), ConfigChange},
		{"tracked source", filepath.Join(root, "content", "intro.videoml.ts"), SourceChange},
		{"shared helper", filepath.Join(root, "content", "shared", "theme.ts"), SharedChange},
		{"shared yaml", filepath.Join(root, "content", "data.yaml"), SharedChange},
		{"image output", filepath.Join(root, "content", "frame.png"), Irrelevant},
		{"outside scope", "/elsewhere/other.videoml.ts", Irrelevant},
		{"no extension", filepath.Join(root, "content", "Makefile"), Irrelevant},
	}
	for _, tc := range cases {
		if got := s.Classify(tc.path); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestScopeEscalationAndMerge(t *testing.T) {
	sc := newScope()
	sc.add(SourceChange, "/p/a.videoml.ts")
	if sc.full {
		t.Fatal("source change alone must stay scoped")
	}
	if len(sc.sourceList()) != 1 {
		t.Fatalf("expected one scoped source, got %v", sc.sourceList())
	}

	sc.add(ConfigChange, "/p/videoml.config.yaml")
	if !sc.full {
		t.Fatal("config change must escalate to a full rebuild")
	}
	if sc.sourceList() != nil {
		t.Fatal("full scope must report a nil source list")
	}

	other := newScope()
	other.add(SourceChange, "/p/b.videoml.ts")
	scoped := newScope()
	scoped.add(SourceChange, "/p/a.videoml.ts")
	scoped.merge(other)
	if scoped.full || len(scoped.sourceList()) != 2 {
		t.Fatalf("expected union of scoped sources, got full=%v %v", scoped.full, scoped.sourceList())
	}

	scoped.merge(sc)
	if !scoped.full {
		t.Fatal("merging a full scope must escalate")
	}
}
