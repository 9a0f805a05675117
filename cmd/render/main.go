package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mod3d-renderer/internal/batch"
	"mod3d-renderer/internal/config"
	"mod3d-renderer/internal/logx"
	"mod3d-renderer/internal/model"
	"mod3d-renderer/internal/postprocess"
	"mod3d-renderer/internal/raster"
	"mod3d-renderer/internal/scene"
	"mod3d-renderer/internal/texture"
	"mod3d-renderer/internal/viewmatrix"
)

type renderOpts struct {
	configFile  string
	flags       config.Flags
	animation   string
	frameMillis uint
	verbose     bool
	noColor     bool
}

func main() {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:           "render [scene.yaml]",
		Short:         "Render the frames of an animated scene to WebP",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.flags.Scene = args[0]
			}
			return run(opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "YAML or JSON config file")
	f.StringVar(&opts.flags.TextureDir, "textures", "", "texture directory (default: the scene's directory)")
	f.StringVarP(&opts.flags.OutputDir, "output", "o", "", "output directory (default: renders)")
	f.IntVar(&opts.flags.Size, "size", 0, "square frame size in pixels (default: 256)")
	f.IntVarP(&opts.flags.Frames, "frames", "n", 0, "number of ticks to render (default: 1)")
	f.IntVarP(&opts.flags.Workers, "workers", "w", 0, "number of worker goroutines (default: NumCPU)")
	f.StringVar(&opts.animation, "animation", "", "also write an animated WebP to this path")
	f.UintVar(&opts.frameMillis, "frame-ms", 40, "animated WebP frame duration")
	f.BoolVarP(&opts.verbose, "debug", "d", false, "turn on debug logging")
	f.BoolVar(&opts.noColor, "no-color", false, "disable coloured log output")

	if err := cmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(opts renderOpts) error {
	logx.Init(logx.Options{Verbose: opts.verbose, DisableColor: opts.noColor})

	var cfg config.Config
	if opts.configFile != "" {
		var err error
		if cfg, err = config.Load(opts.configFile); err != nil {
			return err
		}
	}
	cfg.Resolve(opts.flags)
	if cfg.Scene == "" {
		return errors.New("no scene given: pass a scene file or set scene in the config")
	}

	sc, err := scene.Load(cfg.Scene)
	if err != nil {
		return err
	}
	obj, anim, err := sc.Build()
	if err != nil {
		return err
	}

	texIndex := texture.BuildIndex(cfg.TextureDir)
	backend := &raster.Backend{Textures: texture.NewCache(texIndex)}
	inst, err := model.Instantiate[*raster.Mesh, *raster.Material](obj, backend)
	if err != nil {
		return err
	}

	r := raster.NewRenderer(cfg.Width, cfg.Height)
	r.Supersample = cfg.Supersample
	r.Margin = cfg.Margin
	r.Animation = anim
	r.Camera = viewmatrix.Camera{
		Yaw:         cfg.Camera.Yaw,
		Pitch:       cfg.Camera.Pitch,
		Perspective: cfg.Camera.Perspective,
		FOV:         cfg.Camera.FOV,
	}

	ticks := cfg.Ticks()
	framing := r.Fit(inst.NewInstance(), ticks...)

	batchCfg := batch.Config{
		OutputDir:  cfg.OutputDir,
		Renderer:   r,
		Object:     inst,
		Framing:    &framing,
		Workers:    cfg.Workers,
		Despeckle:  cfg.Despeckle,
		KeepFrames: opts.animation != "",
	}
	if cfg.Background != "" {
		bg, err := postprocess.ParseColor(cfg.Background)
		if err != nil {
			return err
		}
		batchCfg.Background = &bg
	}

	logrus.WithFields(logrus.Fields{
		"scene":    cfg.Scene,
		"frames":   len(ticks),
		"workers":  cfg.Workers,
		"textures": texIndex.Len(),
		"output":   cfg.OutputDir,
	}).Info("rendering")

	start := time.Now()
	results := batch.Run(batchCfg, ticks)

	failed := 0
	for _, res := range results {
		if !res.Success {
			failed++
			if failed <= 20 {
				logrus.Warnf("tick %d: %s", res.Tick, res.Error)
			}
		}
	}
	logrus.Infof("rendered %d/%d frames in %.1fs", len(results)-failed, len(results), time.Since(start).Seconds())

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, sc.Name, cfg.Width, cfg.Height, results); err != nil {
		logrus.WithError(err).Warn("manifest write failed")
	} else {
		logrus.Infof("manifest: %s", manifestPath)
	}

	if opts.animation != "" {
		if err := batch.WriteAnimation(opts.animation, results, opts.frameMillis); err != nil {
			return err
		}
		logrus.Infof("animation: %s", opts.animation)
	}

	if failed > 0 {
		return fmt.Errorf("%d frames failed", failed)
	}
	return nil
}
