package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Tick  uint64 `json:"tick"`
	Image string `json:"image"`
	Error string `json:"error,omitempty"`
}

// Manifest lists a batch run's frames.
type Manifest struct {
	Scene  string          `json:"scene"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Frames []ManifestEntry `json:"frames"`
}

// WriteManifest writes the manifest of results to path. Failed frames are
// listed with their error and no image.
func WriteManifest(path, scene string, width, height int, results []Result) error {
	m := Manifest{Scene: scene, Width: width, Height: height, Frames: make([]ManifestEntry, len(results))}
	for i, r := range results {
		m.Frames[i] = ManifestEntry{Tick: r.Tick, Image: r.Image, Error: r.Error}
		if !r.Success {
			m.Frames[i].Image = ""
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
