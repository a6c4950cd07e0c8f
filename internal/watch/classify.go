package watch

import (
	"path/filepath"
	"strings"
)

type Kind int

const (
	Irrelevant Kind = iota
	ConfigChange
	SourceChange
	SharedChange
)

func (k Kind) String() string {
	switch k {
	case ConfigChange:
		return "config"
	case SourceChange:
		return "source"
	case SharedChange:
		return "shared"
	default:
		return "irrelevant"
	}
}

var watchedExts = map[string]struct{}{
	".ts":   {},
	".xml":  {},
	".yml":  {},
	".yaml": {},
}

// Classify maps a changed absolute path to exactly one change kind.
// Config beats source beats shared; anything with an unwatched extension
// or outside every tracked directory is irrelevant.
func (s *Session) Classify(path string) Kind {
	path = filepath.Clean(path)

	if s.ConfigPath != "" && path == s.ConfigPath {
		return ConfigChange
	}
	if s.isSource(path) {
		return SourceChange
	}
	if _, ok := watchedExts[strings.ToLower(filepath.Ext(path))]; !ok {
		return Irrelevant
	}
	if !s.inScope(path) {
		return Irrelevant
	}
	return SharedChange
}

// scope accumulates the rebuild extent of one or more coalesced triggers.
// A config or shared change escalates to a full rebuild, absorbing any
// scoped sources collected so far.
type scope struct {
	full    bool
	sources map[string]struct{}
}

func newScope() *scope {
	return &scope{sources: make(map[string]struct{})}
}

func (sc *scope) add(kind Kind, path string) {
	switch kind {
	case ConfigChange, SharedChange:
		sc.full = true
	case SourceChange:
		sc.sources[filepath.Clean(path)] = struct{}{}
	}
}

func (sc *scope) merge(other *scope) {
	if other.full {
		sc.full = true
	}
	for source := range other.sources {
		sc.sources[source] = struct{}{}
	}
}

// sourceList returns the scoped sources, or nil for a full rebuild.
func (sc *scope) sourceList() []string {
	if sc.full {
		return nil
	}
	out := make([]string, 0, len(sc.sources))
	for source := range sc.sources {
		out = append(out, source)
	}
	return out
}
