package artifact

import (
	"path/filepath"

	"github.com/eleven-am/vidml/internal/domain"
)

// Overrides carries explicit per-field output paths. An empty field means
// "use the computed default"; each field is resolved independently.
type Overrides struct {
	Script   string
	Timeline string
	Audio    string
	OutDir   string
}

func (o Overrides) Any() bool {
	return o != Overrides{}
}

// Deriver computes default artifact locations for a composition. FindRoot
// locates the project root for a source file's directory; it is only
// consulted when no explicit project directory is given.
type Deriver struct {
	FindRoot func(dir string) string
}

// Derive resolves the four artifact paths for one composition. Deterministic
// given identical inputs; the only I/O is the project-root walk.
func (d Deriver) Derive(id, sourcePath, projectDir string, ov Overrides) domain.ArtifactPaths {
	root := projectDir
	if root == "" {
		root = d.FindRoot(filepath.Dir(sourcePath))
	}
	return domain.ArtifactPaths{
		Script:   pick(ov.Script, filepath.Join(root, "src", "videos", id, id+".script.json")),
		Timeline: pick(ov.Timeline, filepath.Join(root, "src", "videos", id, id+".timeline.json")),
		Audio:    pick(ov.Audio, filepath.Join(root, "public", "videoml", id+".wav")),
		OutDir:   pick(ov.OutDir, filepath.Join(root, ".videoml", "out", id)),
	}
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
