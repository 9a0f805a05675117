package batch

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
)

// ErrNoFrames is returned when there is nothing to animate.
var ErrNoFrames = errors.New("no frames kept")

// WriteAnimation writes the kept frames of results, in order, as one looping
// animated WebP with frameMillis per frame.
func WriteAnimation(path string, results []Result, frameMillis uint) error {
	ani := &nativewebp.Animation{}
	for _, r := range results {
		if !r.Success || r.Frame == nil {
			continue
		}
		ani.Images = append(ani.Images, image.Image(r.Frame))
		ani.Durations = append(ani.Durations, frameMillis)
		// dispose to background
		ani.Disposals = append(ani.Disposals, 1)
	}
	if len(ani.Images) == 0 {
		return fmt.Errorf("batch: animation %s: %w", path, ErrNoFrames)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.EncodeAll(f, ani, nil); err != nil {
		return fmt.Errorf("batch: animation %s: %w", path, err)
	}
	return f.Close()
}
