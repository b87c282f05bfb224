package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/ivlev/scenereel/internal/engine"
	"github.com/ivlev/scenereel/internal/source"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags
	var frame int

	cmd := &cobra.Command{
		Use:   "preview [project]",
		Short: "Render a single frame to an image file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cfg, err := ctx.loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			path, project, err := loadProject(args)
			if err != nil {
				return err
			}

			job := engine.NewJob(cfg, project, engine.Options{
				Loader: source.NewFileLoader(filepath.Dir(path), cfg.PDFDPI),
				Logger: logger,
			})
			img, res, err := job.Preview(cmd.Context(), frame)
			if err != nil {
				return err
			}

			output := cfg.Output
			if output == "" {
				output = defaultOutput(path, "png", time.Now()) + fmt.Sprintf("_frame%d.png", frame)
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return err
			}
			if err := imaging.Save(img, output); err != nil {
				return fmt.Errorf("save preview: %w", err)
			}
			for _, w := range res.Warnings {
				fmt.Fprintln(cmd.OutOrStdout(), "[!] "+describeWarning(w.Kind, w.Value, w.UnitID))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+++] Frame %d of %d: %s\n", frame, res.Total, output)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVar(&frame, "frame", 0, "Frame index to render")
	return cmd
}
