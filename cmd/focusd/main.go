package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"focusd/internal/bootstrap"
	exportdto "focusd/internal/modules/export/dto"
	"focusd/internal/platform/config"
	"focusd/internal/ui/theme"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focusd"
	}
	return filepath.Join(home, ".focusd")
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "focusd",
		Short:         "Focused-work session tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "data directory")

	root.AddCommand(newTrackCmd(&dataDir))
	root.AddCommand(newSessionCmd(&dataDir))
	root.AddCommand(newSessionsCmd(&dataDir))
	root.AddCommand(newStatsCmd(&dataDir))
	root.AddCommand(newCategoriesCmd(&dataDir))
	root.AddCommand(newTasksCmd(&dataDir))
	root.AddCommand(newPredictCmd(&dataDir))
	root.AddCommand(newExportCmd(&dataDir))
	root.AddCommand(newRemindersCmd(&dataDir))
	root.AddCommand(newNotifierCmd(&dataDir))
	root.AddCommand(newResetCmd(&dataDir))
	return root
}

func loadApp(ctx context.Context, dataDir string) (*bootstrap.App, error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg)
}

// parseWhen accepts a date or an RFC 3339 timestamp; empty means unset.
func parseWhen(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want YYYY-MM-DD or RFC 3339", value)
	}
	return t, nil
}

func newTrackCmd(dataDir *string) *cobra.Command {
	var plain bool
	track := &cobra.Command{
		Use:   "track [category] [task]",
		Short: "Track interactively with live reminders",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			category, task := "", ""
			if len(args) > 0 {
				category = args[0]
			}
			if len(args) > 1 {
				task = args[1]
			}
			if plain {
				return app.RunTrackPlain(cmd.Context(), category, task)
			}
			return app.RunTrackTUI(category, task)
		},
	}
	track.Flags().BoolVar(&plain, "plain", false, "track without the TUI, prompts on stdin")
	return track
}

func newSessionCmd(dataDir *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Session lifecycle"}

	var task string
	start := &cobra.Command{
		Use:   "start <category>",
		Short: "Start a focus session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Start(cmd.Context(), args[0], task)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: %s category=%s at=%s\n",
				out.SessionID, out.CategoryName, out.StartedAt.Format(time.RFC3339))
			return nil
		},
	}
	start.Flags().StringVar(&task, "task", "", "task within the category (optional)")

	session.AddCommand(start)
	session.AddCommand(&cobra.Command{
		Use:   "break",
		Short: "Begin a break",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Break(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "break started after %.1fmin of work\n", out.ElapsedMin)
			return nil
		},
	})
	session.AddCommand(&cobra.Command{
		Use:   "resume",
		Short: "Resume work from a break or distraction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Resume(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "back to work on %s\n", out.CategoryName)
			return nil
		},
	})
	session.AddCommand(&cobra.Command{
		Use:   "distract",
		Short: "Mark the start of a procrastination interval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			if _, err := app.TrackerCLI.Distract(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "distraction noted, resume when ready")
			return nil
		},
	})
	session.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "End the active session and write its note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.End(cmd.Context())
			if err != nil {
				return err
			}
			s := out.Session
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"session ended: %s gross=%.1fmin net=%.1fmin break=%.1fmin procrastination=%.1fmin ratio=%.2f note=%s\n",
				s.SessionID, s.GrossMin, s.NetFocusedMin, s.BreakMin, s.ProcrastinationMin, s.FocusRatio, out.NotePath)
			app.MaybeRetrain(cmd.Context())
			return nil
		},
	})
	session.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Status(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  category=%s elapsed=%.1fmin interval=%.1fmin\n",
				out.State, out.CategoryName, out.ElapsedMin, out.IntervalMin)
			return nil
		},
	})

	var recomputeID string
	recompute := &cobra.Command{
		Use:   "recompute --id <session-id>",
		Short: "Recompute a finalized session's aggregates from its events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(recomputeID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			s, err := app.TrackerCLI.Recompute(cmd.Context(), recomputeID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recomputed %s net=%.1fmin ratio=%.2f\n",
				s.SessionID, s.NetFocusedMin, s.FocusRatio)
			return nil
		},
	}
	recompute.Flags().StringVar(&recomputeID, "id", "", "session id")
	session.AddCommand(recompute)

	var deleteID string
	deleteCmd := &cobra.Command{
		Use:   "delete --id <session-id>",
		Short: "Delete a session and its events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(deleteID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.TrackerCLI.Delete(cmd.Context(), deleteID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", deleteID)
			return nil
		},
	}
	deleteCmd.Flags().StringVar(&deleteID, "id", "", "session id")
	session.AddCommand(deleteCmd)

	var rangeFrom, rangeTo string
	deleteRange := &cobra.Command{
		Use:   "delete-range --from <date> --to <date>",
		Short: "Delete all sessions started in a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseWhen(rangeFrom)
			if err != nil {
				return err
			}
			to, err := parseWhen(rangeTo)
			if err != nil {
				return err
			}
			if from.IsZero() || to.IsZero() {
				return fmt.Errorf("--from and --to are required")
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			n, err := app.TrackerCLI.DeleteRange(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d sessions\n", n)
			return nil
		},
	}
	deleteRange.Flags().StringVar(&rangeFrom, "from", "", "range start (inclusive)")
	deleteRange.Flags().StringVar(&rangeTo, "to", "", "range end (exclusive)")
	session.AddCommand(deleteRange)

	return session
}

func newSessionsCmd(dataDir *string) *cobra.Command {
	var category, fromStr, toStr string
	var limit int
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "List finalized sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseWhen(fromStr)
			if err != nil {
				return err
			}
			to, err := parseWhen(toStr)
			if err != nil {
				return err
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Sessions(cmd.Context(), category, from, to, limit)
			if err != nil {
				return err
			}
			if len(out) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, s := range out {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\tnet=%.1fmin ratio=%.2f interruptions=%d\n",
					s.SessionID, s.StartedAt.Format("2006-01-02 15:04"), s.CategoryName,
					s.NetFocusedMin, s.FocusRatio, s.InterruptionCount)
			}
			return nil
		},
	}
	sessions.Flags().StringVar(&category, "category", "", "filter by category")
	sessions.Flags().StringVar(&fromStr, "from", "", "range start (inclusive)")
	sessions.Flags().StringVar(&toStr, "to", "", "range end (exclusive)")
	sessions.Flags().IntVar(&limit, "limit", 0, "max rows, newest first")
	return sessions
}

func newStatsCmd(dataDir *string) *cobra.Command {
	var category, fromStr, toStr string
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard averages over finalized sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseWhen(fromStr)
			if err != nil {
				return err
			}
			to, err := parseWhen(toStr)
			if err != nil {
				return err
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Stats(cmd.Context(), category, from, to)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			title := "all categories"
			if category != "" {
				title = category
			}
			_, _ = fmt.Fprintln(w, theme.Title.Render(fmt.Sprintf("%s  (%d sessions)", title, out.SessionCount)))
			_, _ = fmt.Fprintf(w, "  gross            %s\n", theme.Hot.Render(fmt.Sprintf("%.1f min", out.AvgGrossMin)))
			_, _ = fmt.Fprintf(w, "  net focused      %s\n", theme.Hot.Render(fmt.Sprintf("%.1f min", out.AvgNetFocusedMin)))
			_, _ = fmt.Fprintf(w, "  breaks           %.1f min\n", out.AvgBreakMin)
			_, _ = fmt.Fprintf(w, "  procrastination  %.1f min\n", out.AvgProcrastinationMin)
			_, _ = fmt.Fprintf(w, "  longest block    %.1f min\n", out.AvgLongestFocusBlock)
			_, _ = fmt.Fprintf(w, "  interruptions    %.1f\n", out.AvgInterruptions)
			_, _ = fmt.Fprintf(w, "  focus ratio      %.2f\n", out.AvgFocusRatio)
			if out.TimeToBreakSamples > 0 {
				_, _ = fmt.Fprintf(w, "  time to break    %.1f min (%d samples)\n", out.AvgTimeToBreakMin, out.TimeToBreakSamples)
			}
			if out.TimeToProcSamples > 0 {
				_, _ = fmt.Fprintf(w, "  time to drift    %.1f min (%d samples)\n", out.AvgTimeToProcMin, out.TimeToProcSamples)
			}
			if out.TimeToBurnoutSamples > 0 {
				_, _ = fmt.Fprintf(w, "  time to burnout  %.1f min (%d samples)\n", out.AvgTimeToBurnoutMin, out.TimeToBurnoutSamples)
			}
			return nil
		},
	}
	stats.Flags().StringVar(&category, "category", "", "filter by category")
	stats.Flags().StringVar(&fromStr, "from", "", "range start (inclusive)")
	stats.Flags().StringVar(&toStr, "to", "", "range end (exclusive)")
	return stats
}

func newCategoriesCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List known categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Categories(cmd.Context())
			if err != nil {
				return err
			}
			if len(out) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no categories")
				return nil
			}
			for _, c := range out {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Name)
			}
			return nil
		},
	}
}

func newTasksCmd(dataDir *string) *cobra.Command {
	var categoryID string
	tasks := &cobra.Command{
		Use:   "tasks --category-id <id>",
		Short: "List tasks within a category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(categoryID) == "" {
				return fmt.Errorf("--category-id is required")
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.TrackerCLI.Tasks(cmd.Context(), categoryID)
			if err != nil {
				return err
			}
			if len(out) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no tasks")
				return nil
			}
			for _, t := range out {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.ID, t.Name)
			}
			return nil
		},
	}
	tasks.Flags().StringVar(&categoryID, "category-id", "", "category id")
	return tasks
}

func newPredictCmd(dataDir *string) *cobra.Command {
	predict := &cobra.Command{Use: "predict", Short: "Prediction engine commands"}

	var target, category string
	show := &cobra.Command{
		Use:   "show --target <name>",
		Short: "Predict a target for the current moment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(target) == "" {
				return fmt.Errorf("--target is required")
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.PredictCLI.Predict(cmd.Context(), target, category)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %.1f min (tier=%s samples=%d trained=%s)\n",
				out.Target, out.Minutes, out.Tier, out.SampleCount, out.TrainedAt.Format(time.RFC3339))
			return nil
		},
	}
	show.Flags().StringVar(&target, "target", "", "prediction target name")
	show.Flags().StringVar(&category, "category", "", "category (omit for global)")
	predict.AddCommand(show)

	predict.AddCommand(&cobra.Command{
		Use:   "train",
		Short: "Retrain every model from history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.PredictCLI.Train(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "trained=%d failed=%d\n", len(out.Trained), len(out.Failed))
			for _, f := range out.Failed {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "failed %s category=%s: %s\n", f.Target, f.Category, f.FailReason)
			}
			return nil
		},
	})

	var adviseCategory string
	advise := &cobra.Command{
		Use:   "advise --category <name>",
		Short: "Suggest session and break lengths for a category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(adviseCategory) == "" {
				return fmt.Errorf("--category is required")
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.PredictCLI.Advise(cmd.Context(), adviseCategory)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "optimal session  %.0f min\n", out.OptimalSessionMin)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "break after      %.0f min\n", out.BreakInsertionMin)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "break length     %.0f min\n", out.SuggestedBreakMin)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "expected net     %.0f min\n", out.NetFocusedMin)
			if out.Guidance != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", out.Guidance)
			}
			return nil
		},
	}
	advise.Flags().StringVar(&adviseCategory, "category", "", "category name")
	predict.AddCommand(advise)

	predict.AddCommand(&cobra.Command{
		Use:   "research",
		Short: "Show the built-in break-timing research notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			for _, e := range app.PredictCLI.Research(cmd.Context()) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), theme.Title.Render(e.Title))
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), e.Summary)
				work := "varies"
				if e.OptimalWorkMin > 0 {
					work = fmt.Sprintf("%.0f min", e.OptimalWorkMin)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "work %s, break %.0f min (%s)\n\n", work, e.OptimalBreakMin, e.Citation)
			}
			return nil
		},
	})

	predict.AddCommand(&cobra.Command{
		Use:   "models",
		Short: "List active model versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.PredictCLI.Models(cmd.Context())
			if err != nil {
				return err
			}
			if len(out) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no trained models")
				return nil
			}
			for _, m := range out {
				category := m.Category
				if category == "" {
					category = "(global)"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tv%d tier=%s samples=%d\n",
					m.Target, category, m.Version, m.Tier, m.SampleCount)
			}
			return nil
		},
	})

	return predict
}

func newExportCmd(dataDir *string) *cobra.Command {
	var category, fromStr, toStr, outPath string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export finalized sessions as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseWhen(fromStr)
			if err != nil {
				return err
			}
			to, err := parseWhen(toStr)
			if err != nil {
				return err
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			n, err := app.ExportCLI.ExportCSV(cmd.Context(), w, exportdto.ExportInput{
				Category: category,
				From:     from,
				To:       to,
			})
			if err != nil {
				return err
			}
			if outPath != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d sessions to %s\n", n, outPath)
			}
			return nil
		},
	}
	export.Flags().StringVar(&category, "category", "", "filter by category")
	export.Flags().StringVar(&fromStr, "from", "", "range start (inclusive)")
	export.Flags().StringVar(&toStr, "to", "", "range end (exclusive)")
	export.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return export
}

func newRemindersCmd(dataDir *string) *cobra.Command {
	var sessionID string
	reminders := &cobra.Command{
		Use:   "reminders --session-id <id>",
		Short: "List reminder log entries for a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(sessionID) == "" {
				return fmt.Errorf("--session-id is required")
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.ReminderCLI.Logs(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if len(out) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no reminders fired")
				return nil
			}
			for _, r := range out {
				line := fmt.Sprintf("%s\t%s\tresponse=%s", r.FiredAt.Format("15:04:05"), r.Kind, r.Response)
				if r.PredictedMin > 0 {
					line += fmt.Sprintf(" predicted=%.1fmin", r.PredictedMin)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	reminders.Flags().StringVar(&sessionID, "session-id", "", "session id")
	return reminders
}

func newNotifierCmd(dataDir *string) *cobra.Command {
	notifier := &cobra.Command{Use: "notifier", Short: "Notifier plugin operations"}

	notifier.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notifier manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.NotifyCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(out) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no notifiers configured")
				return nil
			}
			for _, n := range out {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s\n", n.Name, n.Version, n.Enabled, n.Binary)
			}
			return nil
		},
	})

	notifier.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate notifier checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			results, err := app.NotifyCLI.Doctor(cmd.Context())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no notifiers configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	return notifier
}

func newResetCmd(dataDir *string) *cobra.Command {
	var confirmed bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete all tracked history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to wipe history without --yes")
			}
			app, err := loadApp(cmd.Context(), *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.TrackerCLI.Reset(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		},
	}
	reset.Flags().BoolVar(&confirmed, "yes", false, "confirm the wipe")
	return reset
}
