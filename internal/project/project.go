package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var rootMarkers = []string{"videoml.config.yaml", ".videoml", "package.json"}

// FindRoot walks upward from dir to the nearest directory containing a
// project marker. When no marker exists anywhere above dir, dir itself is
// returned so artifact defaults still land somewhere predictable.
func FindRoot(dir string) string {
	dir = filepath.Clean(dir)
	for current := dir; ; {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// ConfigPath returns the project config file under root, checking the two
// recognized locations in order, or "" when neither exists.
func ConfigPath(root string) string {
	candidates := []string{
		filepath.Join(root, "videoml.config.yaml"),
		filepath.Join(root, ".videoml", "config.yaml"),
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Config models the project config file. Every field is a default the CLI
// flags may override; the file is never written by this tool.
type Config struct {
	Environment   string `yaml:"environment"`
	Provider      string `yaml:"provider"`
	SFXProvider   string `yaml:"sfx_provider"`
	MusicProvider string `yaml:"music_provider"`
	Seed          *int64 `yaml:"seed"`
}

// LoadConfig reads and parses the config file at path. A missing file is
// not an error; it yields the zero Config.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
