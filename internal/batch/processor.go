// Package batch renders the frames of an animation in parallel and writes
// them as WebP images.
package batch

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/sirupsen/logrus"

	"mod3d-renderer/internal/postprocess"
	"mod3d-renderer/internal/raster"
	"mod3d-renderer/internal/viewmatrix"
)

// Config holds all shared resources for a batch run. Everything in it is
// read-only while Run executes.
type Config struct {
	OutputDir string
	Renderer  *raster.Renderer
	Object    *raster.Instantiable
	// Framing is shared by every frame; nil fits each frame on its own.
	Framing *viewmatrix.Framing
	Workers int
	// Despeckle is passed to postprocess.Despeckle when positive.
	Despeckle float64
	// Background flattens frames onto an opaque colour when set.
	Background *color.NRGBA
	// KeepFrames retains each frame in its Result for WriteAnimation.
	KeepFrames bool
}

// Result holds the outcome of rendering one tick.
type Result struct {
	Tick    uint64
	Image   string // path relative to OutputDir
	Success bool
	Error   string
	Frame   *image.NRGBA
}

// FrameName is the file name of the frame for tick.
func FrameName(tick uint64) string {
	return fmt.Sprintf("frame_%05d.webp", tick)
}

// Run renders every tick using a worker pool. Each worker owns one instance
// of the object, so poses are never shared between goroutines.
func Run(cfg Config, ticks []uint64) []Result {
	total := len(ticks)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(cfg.Workers, 1)

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					logrus.Infof("[%d/%d] %.1f frames/sec", p, total, rate)
				}
			}
		}
	}()

	tickChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inst := cfg.Object.NewInstance()
			for idx := range tickChan {
				results[idx] = processFrame(cfg, inst, ticks[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range ticks {
		tickChan <- i
	}
	close(tickChan)

	wg.Wait()
	close(done)

	logrus.WithFields(logrus.Fields{
		"frames":  total,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("batch finished")
	return results
}

func processFrame(cfg Config, inst *raster.Instance, tick uint64) Result {
	res := Result{Tick: tick, Image: FrameName(tick)}

	img := cfg.Renderer.Render(inst, tick, cfg.Framing)
	if cfg.Despeckle > 0 {
		img = postprocess.Despeckle(img, cfg.Despeckle)
	}
	if cfg.Background != nil {
		img = postprocess.Flatten(img, *cfg.Background)
	}

	if err := writeWebP(filepath.Join(cfg.OutputDir, res.Image), img); err != nil {
		res.Error = err.Error()
		logrus.WithError(err).WithField("tick", tick).Warn("frame not written")
		return res
	}
	if cfg.KeepFrames {
		res.Frame = img
	}
	res.Success = true
	return res
}

func writeWebP(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("batch: webp encode %s: %w", path, err)
	}
	return f.Close()
}
