package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"daylog/internal/core"
	applog "daylog/internal/log"
)

func dayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Work with the activities of one day",
	}
	cmd.AddCommand(dayListCmd())
	cmd.AddCommand(dayAddCmd())
	cmd.AddCommand(dayDeleteCmd())
	cmd.AddCommand(daySummaryCmd())
	cmd.AddCommand(dayRecentCmd())
	return cmd
}

func requireUser() error {
	if userID == "" {
		return errors.New("--user is required")
	}
	return nil
}

func parseDayFlag(raw string) (core.Day, error) {
	if raw == "" {
		return core.Today(), nil
	}
	day, err := core.ParseDay(raw)
	if err != nil {
		return "", fmt.Errorf("invalid --date %q: use YYYY-MM-DD", raw)
	}
	return day, nil
}

func dayListCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the activities of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			day, err := parseDayFlag(date)
			if err != nil {
				return err
			}

			res, _, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer res.Cleanup()

			records, err := res.Activities.List(cmd.Context(), userID, day)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Printf("No activities on %s.\n", day)
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tMINUTES")
			for _, a := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", a.ID, a.Title, a.Category, a.Minutes)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to list (default today)")
	return cmd
}

func dayAddCmd() *cobra.Command {
	var (
		date     string
		title    string
		category string
		minutes  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log an activity, applying the daily budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			day, err := parseDayFlag(date)
			if err != nil {
				return err
			}

			res, logger, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer res.Cleanup()

			a, err := res.Activities.LogActivity(cmd.Context(), userID, day, title, category, minutes)
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				return errors.New(verr.Message())
			}
			if err != nil {
				return err
			}

			applog.NewStructuredLogger(applog.New(applog.Config{Component: applog.ComponentActivity, Handler: logger.Handler()})).
				LogActivityAdded(cmd.Context(), userID, day.String(), a.ID, a.Category, a.Minutes)
			fmt.Printf("Added %s: %s (%s, %d min)\n", a.ID, a.Title, a.Category, a.Minutes)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to add to (default today)")
	cmd.Flags().StringVar(&title, "title", "", "activity title")
	cmd.Flags().StringVar(&category, "category", core.DefaultCategory, "activity category")
	cmd.Flags().StringVar(&minutes, "minutes", "", "duration in minutes")
	return cmd
}

func dayDeleteCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an activity by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			day, err := parseDayFlag(date)
			if err != nil {
				return err
			}

			res, _, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer res.Cleanup()

			if err := res.Activities.Delete(cmd.Context(), userID, day, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s from %s.\n", args[0], day)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day the activity belongs to (default today)")
	return cmd
}

func daySummaryCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, category shares and the timeline of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			day, err := parseDayFlag(date)
			if err != nil {
				return err
			}

			res, _, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer res.Cleanup()

			records, err := res.Activities.List(cmd.Context(), userID, day)
			if err != nil {
				return err
			}

			summary := core.Summarize(records)
			fmt.Printf("%s: %d min logged, %d min remaining, %d activities\n",
				day, summary.Total, summary.Remaining, summary.Count)
			if !summary.AnalysisEnabled {
				return nil
			}

			analysis := core.BuildAnalysis(records)
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\nCATEGORY\tMINUTES\tSHARE")
			for _, s := range analysis.Shares {
				fmt.Fprintf(tw, "%s\t%d\t%s%%\n", s.Name, s.Minutes, s.Percent.StringFixed(1))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Println()
			for _, line := range analysis.Timeline {
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to summarize (default today)")
	return cmd
}

func dayRecentCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show per-day totals for the most recent logged days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}

			res, _, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer res.Cleanup()

			if res.History == nil {
				return errors.New("day history is only available on the sqlite backend")
			}
			rows, err := res.History.DayTotals(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No logged days yet.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DAY\tMINUTES\tACTIVITIES")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", r.Day, r.Minutes, r.Count)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 14, "number of days to show")
	return cmd
}
