package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/scenereel/internal/config"
	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/timeline"
)

func newDurationCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "duration [project]",
		Short: "Estimate the length of a project before rendering",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			_, project, err := loadProject(args)
			if err != nil {
				return err
			}
			if _, err := project.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var total int
			switch project.Kind {
			case content.KindChat:
				mode, _ := content.ParseDisplayMode(project.DisplayMode)
				total = timeline.MessageTotal(len(project.Messages), mode, cfg.FPS)
				fmt.Fprintf(out, "%d messages, %s\n", len(project.Messages), mode)
			default:
				rows := make([][]string, 0, len(project.Sections))
				for _, s := range project.Sections {
					frames, _ := timeline.SectionFrames(s, cfg.FPS)
					rows = append(rows, []string{s.ID, string(s.Type), strconv.Itoa(frames), formatSeconds(frames, cfg.FPS)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Section", "Type", "Frames", "Seconds"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				))
				total = timeline.SectionTotal(project.Sections, cfg.FPS)
			}
			fmt.Fprintf(out, "Total: %d frames (%ss at %d fps)\n", total, formatSeconds(total, cfg.FPS), cfg.FPS)
			return nil
		},
	}

	flags.bindTiming(cmd)
	return cmd
}

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags
	var frame int

	cmd := &cobra.Command{
		Use:   "timeline [project]",
		Short: "Show the frame windows of a project, or probe one frame",
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
			_, project, err := loadProject(args)
			if err != nil {
				return err
			}
			tl, err := timeline.NewBuilder(logger, nil).Build(project, cfg.FPS)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("frame") {
				fmt.Fprintln(out, describeFrame(tl, project, frame))
				return nil
			}
			fmt.Fprintln(out, windowTable(tl, project))
			if len(tl.Transitions) > 0 {
				fmt.Fprintln(out, transitionTable(tl, project))
			}
			fmt.Fprintf(out, "Total: %d frames (%.2fs at %d fps)\n", tl.TotalFrames, tl.Seconds(), tl.FPS)
			return nil
		},
	}

	flags.bindTiming(cmd)
	cmd.Flags().IntVar(&frame, "frame", 0, "Describe this frame instead of listing windows")
	return cmd
}

// unitLabel names the content units of a window by id.
func unitLabel(p *content.Project, unit, units int) string {
	if unit < 0 {
		return "-"
	}
	ids := make([]string, 0, units)
	for i := unit; i < unit+units; i++ {
		switch {
		case p.Kind == content.KindChat && i < len(p.Messages):
			ids = append(ids, p.Messages[i].ID)
		case p.Kind != content.KindChat && i < len(p.Sections):
			ids = append(ids, p.Sections[i].ID)
		default:
			ids = append(ids, strconv.Itoa(i))
		}
	}
	return strings.Join(ids, "+")
}

func windowTable(tl *timeline.Timeline, p *content.Project) string {
	rows := make([][]string, 0, len(tl.Windows))
	for i, w := range tl.Windows {
		rows = append(rows, []string{
			strconv.Itoa(i),
			w.Kind.String(),
			unitLabel(p, w.Unit, w.Units),
			strconv.Itoa(w.StartFrame),
			strconv.Itoa(w.EndFrame),
			strconv.Itoa(w.DurationFrames),
			strconv.Itoa(w.TransitionFrames),
		})
	}
	return renderTable(
		[]string{"#", "Kind", "Unit", "Start", "End", "Frames", "Transition"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func transitionTable(tl *timeline.Timeline, p *content.Project) string {
	rows := make([][]string, 0, len(tl.Transitions))
	for _, tr := range tl.Transitions {
		rows = append(rows, []string{
			unitLabel(p, tr.From, 1) + " > " + unitLabel(p, tr.To, 1),
			tr.Type,
			strconv.Itoa(tr.StartFrame),
			strconv.Itoa(tr.Cut),
			strconv.Itoa(tr.EndFrame),
		})
	}
	return renderTable(
		[]string{"Cut", "Type", "Start", "At", "End"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

func describeFrame(tl *timeline.Timeline, p *content.Project, frame int) string {
	d := tl.Describe(frame)
	rows := [][]string{
		{"frame", strconv.Itoa(d.Frame)},
		{"resolved", strconv.Itoa(d.Resolved)},
		{"window", strconv.Itoa(d.Window)},
		{"kind", d.Kind.String()},
		{"unit", unitLabel(p, d.Unit, 1)},
		{"local", strconv.Itoa(d.Local)},
		{"progress", strconv.FormatFloat(d.Progress, 'f', 3, 64)},
	}
	for _, m := range d.Messages {
		rows = append(rows, []string{
			"message " + unitLabel(p, m.Unit, 1),
			fmt.Sprintf("%s %d/%d", m.Phase, m.Local, m.Length),
		})
	}
	if tr := d.Transition; tr != nil {
		rows = append(rows, []string{
			"transition",
			fmt.Sprintf("%s %d/%d", tr.Type, tr.Local(d.Resolved), tr.EndFrame-tr.StartFrame),
		})
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project]",
		Short: "Check a project file for errors and fallbacks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, project, err := loadProject(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			warns, err := project.Validate()
			for _, w := range warns {
				fmt.Fprintf(out, "[!] %s %q: %s\n", w.Field, w.Value, w.Message)
			}
			if err != nil {
				var verrs content.ValidationErrors
				if errors.As(err, &verrs) {
					for _, fe := range verrs {
						fmt.Fprintf(out, "[x] %s\n", fe.Error())
					}
					return fmt.Errorf("%s: %d problems", path, len(verrs))
				}
				return err
			}
			fmt.Fprintf(out, "[+++] %s is valid (%d warnings)\n", path, len(warns))
			return nil
		},
	}
}

func newResolutionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolutions",
		Short: "List output sizes for every format and quality",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, r := range config.Resolutions() {
				rows = append(rows, []string{string(r.Format), string(r.Quality), strconv.Itoa(r.Width), strconv.Itoa(r.Height)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Format", "Quality", "Width", "Height"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func formatSeconds(frames, fps int) string {
	if fps <= 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(frames)/float64(fps), 'f', 2, 64)
}
