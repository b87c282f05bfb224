package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/scenereel/internal/analyzer"
	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/director"
)

func newDraftCommand(ctx *commandContext) *cobra.Command {
	var (
		title    string
		duration float64
		outPath  string
		variant  string
	)

	cmd := &cobra.Command{
		Use:   "draft <deck>",
		Short: "Draft an explainer project from a PDF or a folder of slide images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cfg, err := ctx.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			detector, err := analyzer.NewDetector(variant)
			if err != nil {
				return err
			}

			deck := args[0]
			name := strings.TrimSuffix(filepath.Base(deck), filepath.Ext(deck))
			if title == "" {
				title = name
			}
			target := outPath
			if target == "" {
				target = director.GenerateDraftPath(projectsDir, name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
			}

			pages, err := director.LoadDeck(deck, cfg.PDFDPI, filepath.Dir(target))
			if err != nil {
				return fmt.Errorf("load deck: %w", err)
			}
			logger.Info("deck loaded", zap.String("deck", deck), zap.Int("pages", len(pages)), zap.String("detector", variant))

			project, err := director.NewDirector(detector).Draft(title, pages, duration)
			if err != nil {
				return err
			}
			if err := content.WriteProject(project, target); err != nil {
				return fmt.Errorf("write project: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+++] Drafted %d pages: %s\n", len(pages), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Intro headline (defaults to the deck name)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Target video length in seconds (0 uses section defaults)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Project file to write (defaults to "+projectsDir+")")
	cmd.Flags().StringVar(&variant, "detector", "saliency", "Focus detector: saliency or center")
	return cmd
}
