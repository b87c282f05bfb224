package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/scenereel/internal/config"
	"github.com/ivlev/scenereel/internal/engine"
	"github.com/ivlev/scenereel/internal/metrics"
	"github.com/ivlev/scenereel/internal/source"
	"github.com/ivlev/scenereel/internal/system"
	"github.com/ivlev/scenereel/internal/video"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "render [project]",
		Short: "Render a project to video",
		Long: "Render a chat or explainer project. Without a project argument the newest\n" +
			"project file in " + projectsDir + " is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg, err := ctx.loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			path, project, err := loadProject(args)
			if err != nil {
				return err
			}

			system.InitResourceLimits(logger)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			encoder := system.SoftwareEncoder(string(cfg.Codec))
			if cfg.HWAccel && cfg.Sink == "ffmpeg" {
				encoder = system.BestEncoder(runCtx, string(cfg.Codec))
			}
			output := cfg.Output
			if output == "" {
				output = defaultOutput(path, cfg.Sink, time.Now())
			}

			reg := prometheus.NewRegistry()
			recorder, err := metrics.NewRecorder(reg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[*] Project: %s\n", path)
			fmt.Fprintf(out, "[*] Settings: %s\n", settingsSummary(cfg))
			if cfg.Sink == "ffmpeg" {
				fmt.Fprintf(out, "[*] Output: %s (encoder %s)\n", output, encoder)
			} else {
				fmt.Fprintf(out, "[*] Output: %s/\n", output)
			}

			sink, err := video.NewSink(runCtx, cfg, encoder, output)
			if err != nil {
				return fmt.Errorf("open sink: %w", err)
			}
			job := engine.NewJob(cfg, project, engine.Options{
				Loader:       source.NewFileLoader(filepath.Dir(path), cfg.PDFDPI),
				Logger:       logger,
				Recorder:     recorder,
				OnProgress:   progressLogger(logger),
				BenchmarkLog: benchmarkLog,
			})
			res, runErr := job.Run(runCtx, sink)

			if cfg.MetricsOut != "" {
				if err := metrics.WriteTextfile(cfg.MetricsOut, reg); err != nil {
					logger.Warn("write metrics", zap.String("path", cfg.MetricsOut), zap.Error(err))
				}
			}
			for _, w := range res.Warnings {
				fmt.Fprintln(out, "[!] "+describeWarning(w.Kind, w.Value, w.UnitID))
			}
			if runErr != nil {
				if errors.Is(runErr, engine.ErrIncomplete) {
					fmt.Fprintf(cmd.ErrOrStderr(), "[!] Render stopped after %d/%d frames, output is incomplete\n", res.Frames, res.Total)
				}
				return runErr
			}

			if cfg.ShowStats {
				fmt.Fprint(out, res.Report(cfg.BuildVersion))
			}
			fmt.Fprintf(out, "[+++] Done: %s (%d frames in %s)\n", output, res.Frames, res.Stats.Total.Round(time.Millisecond))
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

// defaultOutput names the result after the project and the start time.
func defaultOutput(project, sink string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(project), filepath.Ext(project))
	stem := fmt.Sprintf("%s_%s", name, now.Format("2006-01-02_15-04-05"))
	if sink == "png" {
		return filepath.Join(outputDir, stem)
	}
	return filepath.Join(outputDir, stem+".mp4")
}

// progressLogger logs once per tenth of the render.
func progressLogger(logger *zap.Logger) func(engine.Progress) {
	last := -1
	return func(p engine.Progress) {
		pct := p.Frame * 100 / max(p.Total, 1)
		if pct/10 == last {
			return
		}
		last = pct / 10
		logger.Info("progress",
			zap.String("job_id", p.JobID),
			zap.Int("frame", p.Frame),
			zap.Int("total", p.Total),
			zap.Int("percent", pct),
		)
	}
}

func describeWarning(kind, value, unitID string) string {
	where := "project"
	if unitID != "" {
		where = unitID
	}
	return fmt.Sprintf("%s: unknown %s %q, used the default", where, kind, value)
}

// settingsSummary is the one-line form of the effective settings.
func settingsSummary(cfg config.Config) string {
	w, h, _ := cfg.Resolution()
	return fmt.Sprintf("%dx%d @ %dfps, %s crf %d, %d workers", w, h, cfg.FPS, cfg.Codec, cfg.CRF, cfg.Workers)
}
