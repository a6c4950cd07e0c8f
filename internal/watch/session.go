package watch

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Session is the fixed scope of one watch run: the directories under
// observation, the tracked source files, and the resolved config file.
// The directory set is computed once at construction and never mutated;
// sources appearing later are not discovered.
type Session struct {
	Dirs       []string
	Sources    []string
	ConfigPath string

	sourceSet map[string]struct{}
	dirSet    map[string]struct{}
}

// NewSession derives the watched directory set from the resolved sources
// and the config file. Each source's directory is included together with
// its subdirectories, so shared helper files trigger rebuilds too.
func NewSession(sources []string, configPath string) *Session {
	s := &Session{
		Sources:    append([]string(nil), sources...),
		ConfigPath: filepath.Clean(configPath),
		sourceSet:  make(map[string]struct{}, len(sources)),
		dirSet:     make(map[string]struct{}),
	}
	if configPath == "" {
		s.ConfigPath = ""
	}

	for _, source := range sources {
		s.sourceSet[filepath.Clean(source)] = struct{}{}
		s.addTree(filepath.Dir(source))
	}
	if s.ConfigPath != "" {
		s.addDir(filepath.Dir(s.ConfigPath))
	}

	s.Dirs = make([]string, 0, len(s.dirSet))
	for dir := range s.dirSet {
		s.Dirs = append(s.Dirs, dir)
	}
	sort.Strings(s.Dirs)

	return s
}

func (s *Session) addDir(dir string) {
	s.dirSet[filepath.Clean(dir)] = struct{}{}
}

func (s *Session) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			s.addDir(path)
		}
		return nil
	})
}

func (s *Session) isSource(path string) bool {
	_, ok := s.sourceSet[path]
	return ok
}

func (s *Session) inScope(path string) bool {
	for dir := range s.dirSet {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
