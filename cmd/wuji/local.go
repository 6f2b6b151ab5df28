package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/engine"
	"github.com/majowuji/wuji/internal/models"
)

func newLogCommand() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "log <exercise> <value> [notes]",
		Short: "Log a training attempt",
		Long:  "Logs one attempt for the given exercise: reps for rep-based exercises,\nseconds for timed ones.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			ex, ok := catalog.Find(args[0])
			if !ok {
				return fmt.Errorf("unknown exercise %q, see `wuji list --exercises`", args[0])
			}
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("value must be a number: %q", args[1])
			}

			t := &models.Training{
				UserID:   userID,
				Exercise: ex.Key,
				Date:     time.Now(),
			}
			if ex.Timed() {
				t.DurationSec = &value
			} else {
				t.Reps = value
			}
			if len(args) > 2 {
				t.Notes = args[2]
			}

			tag, st, err := db.LogAttempt(context.Background(), t, loc)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d %s\n", ex.Name, value, unitFor(ex))
			printTransition(tag, st, ex)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "user ID to log for")
	return cmd
}

func newListCommand() *cobra.Command {
	var (
		userID    int64
		exercise  string
		exercises bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged trainings or the exercise catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if exercises {
				for _, ex := range catalog.All() {
					fmt.Printf("%-18s %s (%s)\n", ex.Key, ex.Name, ex.Role)
				}
				return nil
			}

			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()
			var logs []models.Training
			if exercise != "" {
				logs, err = db.ListTrainingsForExercise(ctx, userID, exercise)
			} else {
				logs, err = db.ListTrainings(ctx, userID)
			}
			if err != nil {
				return err
			}

			for _, t := range logs {
				ex, _ := catalog.Find(t.Exercise)
				fmt.Printf("%s  %-18s %4d %s\n", t.Date.Format("2006-01-02 15:04"), t.Exercise, t.Value(ex), unitFor(ex))
			}
			if len(logs) == 0 {
				fmt.Println("no entries")
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "user ID")
	cmd.Flags().StringVar(&exercise, "exercise", "", "filter by exercise key")
	cmd.Flags().BoolVar(&exercises, "exercises", false, "print the exercise catalog instead")
	return cmd
}

func newRecommendCommand() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Show the next recommended exercise",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			ctx := context.Background()
			records, err := db.RecordStates(ctx, userID)
			if err != nil {
				return err
			}
			logs, err := db.ListTrainings(ctx, userID)
			if err != nil {
				return err
			}

			d, err := engine.Recommend(records, logs, time.Now(), loc)
			if err != nil {
				return err
			}

			if d.BonusOffer {
				fmt.Println("base program complete, bonus offer:")
			}
			fmt.Printf("-> %s (%s)\n", d.Exercise.Name, d.Exercise.Key)
			if d.Reason != "" {
				fmt.Printf("   %s\n", d.Reason)
			}
			if d.Goals != nil {
				fmt.Printf("   goal: %d %s\n", d.Goals.Simple, unitFor(d.Exercise))
				if d.Goals.Adjusted != nil {
					fmt.Printf("   adjusted: %d (%s)\n", d.Goals.Adjusted.Value, d.Goals.Adjusted.Reason)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "user ID")
	return cmd
}

func newStatsCommand() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "stats <exercise>",
		Short: "Show totals, weekly frequency, and the progress trend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			ex, ok := catalog.Find(args[0])
			if !ok {
				return fmt.Errorf("unknown exercise %q", args[0])
			}

			ctx := context.Background()
			logs, err := db.ListTrainingsForExercise(ctx, userID, ex.Key)
			if err != nil {
				return err
			}

			sets, total := engine.TodayStats(logs, ex.Key, time.Now(), loc)
			fmt.Printf("%s\n", ex.Name)
			fmt.Printf("  total volume:     %d %s\n", engine.TotalVolume(logs, ex.Key), unitFor(ex))
			fmt.Printf("  weekly frequency: %.1f sessions\n", engine.WeeklyFrequency(logs))
			fmt.Printf("  today:            %d sets, %d %s\n", sets, total, unitFor(ex))

			if trend, ok := engine.ProgressTrend(logs, ex.Key); ok {
				fmt.Printf("  trend:            %+.2f/day (R² %.2f over %d points)\n", trend.SlopePerDay, trend.R2, trend.Points)
				fmt.Printf("  forecast:         %.0f in a week, %.0f in a month\n", trend.WeekAhead, trend.MonthAhead)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "user ID")
	return cmd
}

func unitFor(ex catalog.Exercise) string {
	if ex.Timed() {
		return "sec"
	}
	return "reps"
}

func printTransition(tag engine.Classification, st engine.State, ex catalog.Exercise) {
	switch tag {
	case engine.FirstRecord:
		fmt.Println("first record! consolidation window opened")
	case engine.NewRecord:
		fmt.Println("NEW RECORD! consolidation restarts")
	case engine.Confirmed:
		fmt.Println("record confirmed, now beat it")
	case engine.AutoExtended:
		fmt.Println("consolidation window extended")
	default:
		fmt.Println("logged")
	}
	if c, ok := st.(engine.Consolidating); ok {
		fmt.Printf("repeat %d %s by %s to confirm\n", c.Value, unitFor(ex), c.WindowEnd.Format("2006-01-02"))
	}
}
