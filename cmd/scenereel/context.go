package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/scenereel/internal/config"
	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/logging"
	"github.com/ivlev/scenereel/internal/system"
)

const (
	projectsDir  = "input/projects"
	outputDir    = "output"
	benchmarkLog = "benchmark.log"
)

type commandContext struct {
	configFlag *string
	logLevel   *string
	logFormat  *string

	loggerOnce sync.Once
	logger     *zap.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevel, logFormat *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logLevel:   logLevel,
		logFormat:  logFormat,
	}
}

func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = logging.New(*c.logLevel, *c.logFormat)
	})
	return c.logger, c.loggerErr
}

// loadConfig layers defaults, the settings file and changed flags, in that
// order.
func (c *commandContext) loadConfig(cmd *cobra.Command, flags *settingsFlags) (config.Config, error) {
	cfg, err := config.Load(*c.configFlag)
	if err != nil {
		return cfg, err
	}
	if flags != nil {
		flags.apply(cmd, &cfg)
	}
	cfg.Normalize()
	cfg.BuildVersion = buildVersion
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// loadProject reads the named project, or the newest one in input/projects.
func loadProject(args []string) (string, *content.Project, error) {
	var path string
	if len(args) > 0 {
		path = strings.TrimSpace(args[0])
	} else {
		if err := os.MkdirAll(projectsDir, 0o755); err != nil {
			return "", nil, fmt.Errorf("create %s: %w", projectsDir, err)
		}
		latest, err := system.FindLatestProject(projectsDir)
		if err != nil {
			return "", nil, fmt.Errorf("no project given and none found in %s: %w", projectsDir, err)
		}
		path = latest
	}
	p, err := content.ReadProject(path)
	if err != nil {
		return path, nil, fmt.Errorf("read project %s: %w", path, err)
	}
	return path, p, nil
}

// settingsFlags override the settings file for one invocation. Only flags
// the user set are applied.
type settingsFlags struct {
	fps          int
	format       string
	quality      string
	codec        string
	crf          int
	workers      int
	output       string
	sink         string
	hwAccel      bool
	assetTimeout float64
	showStats    bool
	metricsOut   string
}

func (s *settingsFlags) bind(cmd *cobra.Command) {
	def := config.Default()
	f := cmd.Flags()
	f.IntVar(&s.fps, "fps", def.FPS, "Frame rate: 30 or 60")
	f.StringVar(&s.format, "format", string(def.Format), "Format: landscape, portrait, square or story")
	f.StringVar(&s.quality, "quality", string(def.Quality), "Quality: sd, hd, fhd, 2k or 4k")
	f.StringVar(&s.codec, "codec", string(def.Codec), "Codec: h264, h265 or vp9")
	f.IntVar(&s.crf, "crf", def.CRF, "Constant rate factor (0-51)")
	f.IntVarP(&s.workers, "workers", "w", def.Workers, "Parallel frame workers")
	f.StringVarP(&s.output, "output", "o", "", "Output file, or directory for the png sink")
	f.StringVar(&s.sink, "sink", def.Sink, "Frame sink: ffmpeg or png")
	f.BoolVar(&s.hwAccel, "hw-accel", false, "Use a hardware encoder when one is available")
	f.Float64Var(&s.assetTimeout, "asset-timeout", def.AssetTimeout, "Seconds to wait for each image asset")
	f.BoolVar(&s.showStats, "stats", false, "Print a performance report and append to "+benchmarkLog)
	f.StringVar(&s.metricsOut, "metrics-out", "", "Write prometheus metrics to this textfile")
}

// bindTiming binds only the flags that change frame counts.
func (s *settingsFlags) bindTiming(cmd *cobra.Command) {
	cmd.Flags().IntVar(&s.fps, "fps", config.Default().FPS, "Frame rate: 30 or 60")
}

func (s *settingsFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("fps") {
		cfg.FPS = s.fps
	}
	if f.Changed("format") {
		cfg.Format = config.Format(s.format)
	}
	if f.Changed("quality") {
		cfg.Quality = config.Quality(s.quality)
	}
	if f.Changed("codec") {
		cfg.Codec = config.Codec(s.codec)
	}
	if f.Changed("crf") {
		cfg.CRF = s.crf
	}
	if f.Changed("workers") {
		cfg.Workers = s.workers
	}
	if f.Changed("output") {
		cfg.Output = s.output
	}
	if f.Changed("sink") {
		cfg.Sink = s.sink
	}
	if f.Changed("hw-accel") {
		cfg.HWAccel = s.hwAccel
	}
	if f.Changed("asset-timeout") {
		cfg.AssetTimeout = s.assetTimeout
	}
	if f.Changed("stats") {
		cfg.ShowStats = s.showStats
	}
	if f.Changed("metrics-out") {
		cfg.MetricsOut = s.metricsOut
	}
}
