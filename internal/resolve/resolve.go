package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eleven-am/vidml/internal/domain"
)

const contentDir = "content"

var sourceSuffixes = []string{".videoml.ts", ".videoml.xml"}

// IsSource reports whether name carries a composition-source suffix.
func IsSource(name string) bool {
	for _, suffix := range sourceSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Sources resolves the user-supplied path argument into an ordered set of
// absolute source-file paths.
//
// An explicit file is returned as-is; an explicit directory is collected
// recursively. With no argument, a content/ subdirectory of cwd is collected
// recursively when present; otherwise cwd is scanned non-recursively and
// must hold exactly one source.
func Sources(arg, cwd string) ([]string, error) {
	if arg != "" {
		return resolveExplicit(arg, cwd)
	}
	return discover(cwd)
}

func resolveExplicit(arg, cwd string) ([]string, error) {
	path := arg
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &domain.NotFoundError{Path: path, What: "source path"}
	}
	if err != nil {
		return nil, fmt.Errorf("stat source path: %w", err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	sources, err := collect(path)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, &domain.NotFoundError{Path: path, What: "composition sources"}
	}
	return sources, nil
}

func discover(cwd string) ([]string, error) {
	content := filepath.Join(cwd, contentDir)
	if info, err := os.Stat(content); err == nil && info.IsDir() {
		sources, err := collect(content)
		if err != nil {
			return nil, err
		}
		if len(sources) == 0 {
			return nil, &domain.AmbiguousDiscoveryError{Dir: content}
		}
		return sources, nil
	}

	entries, err := os.ReadDir(cwd)
	if err != nil {
		return nil, fmt.Errorf("read working directory: %w", err)
	}
	var sources []string
	for _, entry := range entries {
		if entry.IsDir() || !IsSource(entry.Name()) {
			continue
		}
		sources = append(sources, filepath.Join(cwd, entry.Name()))
	}
	if len(sources) != 1 {
		return nil, &domain.AmbiguousDiscoveryError{Dir: cwd, Matches: len(sources)}
	}
	return sources, nil
}

// collect walks root with an explicit worklist, gathering every source file
// underneath it, deduplicated and sorted for deterministic batch order.
func collect(root string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				stack = append(stack, path)
				continue
			}
			if !IsSource(entry.Name()) {
				continue
			}
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			out = append(out, path)
		}
	}

	sort.Strings(out)
	return out, nil
}
