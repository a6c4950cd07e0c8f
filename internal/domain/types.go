package domain

import "encoding/json"

type CompositionUnit struct {
	ID string `json:"id"`
}

type SourceRun struct {
	Source string
	Units  []CompositionUnit
}

type ArtifactPaths struct {
	Script   string
	Timeline string
	Audio    string
	OutDir   string
}

type GenerationRequest struct {
	BatchID string
	Unit    CompositionUnit
	Source  string
	Paths   ArtifactPaths

	Environment   string
	Provider      string
	SFXProvider   string
	MusicProvider string
	Seed          *int64
	Fresh         bool

	UsagePath     string
	UsageDisabled bool
}

type RenderRequest struct {
	Script   json.RawMessage `json:"script"`
	Timeline json.RawMessage `json:"timeline,omitempty"`

	FramesDir    string `json:"framesDir"`
	OutputPath   string `json:"outputPath"`
	AudioPath    string `json:"audioPath,omitempty"`
	FramePattern string `json:"framePattern"`

	StartFrame int  `json:"startFrame"`
	EndFrame   *int `json:"endFrame,omitempty"`

	DeviceScale   float64 `json:"deviceScale"`
	Workers       *int    `json:"workers,omitempty"`
	BrowserBundle string  `json:"browserBundle,omitempty"`
	Title         string  `json:"title,omitempty"`
	Subtitle      string  `json:"subtitle,omitempty"`
	DebugLayout   bool    `json:"debugLayout,omitempty"`

	EncoderPath string   `json:"-"`
	EncoderArgs []string `json:"-"`

	FPS            *float64 `json:"fps,omitempty"`
	Width          *int     `json:"width,omitempty"`
	Height         *int     `json:"height,omitempty"`
	DurationFrames *int     `json:"durationFrames,omitempty"`

	CleanFrames bool `json:"cleanFrames"`
}

type RenderResult struct {
	Frames int     `json:"frames"`
	FPS    float64 `json:"fps"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}
