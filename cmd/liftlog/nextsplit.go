package main

import (
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/schedule"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var nextSplitMesocycle string

var nextSplitCmd = &cobra.Command{
	Use:   "next-split",
	Short: "Print the split day to train next",
	RunE:  runNextSplit,
}

func init() {
	nextSplitCmd.Flags().StringVar(&nextSplitMesocycle, "mesocycle", "", "mesocycle UUID (default: the active mesocycle)")
	rootCmd.AddCommand(nextSplitCmd)
}

func runNextSplit(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	if err := storage.RunMigrations(cfg.Storage.EntityPath()); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	ctx := cmd.Context()
	db, err := storage.Open(ctx, cfg.Storage.EntityPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	planner := schedule.NewPlanner(db, log)

	var (
		meso *models.Mesocycle
		day  *models.SplitDay
	)
	if nextSplitMesocycle != "" {
		id, err := uuid.Parse(nextSplitMesocycle)
		if err != nil {
			return fmt.Errorf("invalid mesocycle id: %w", err)
		}
		meso, day, err = planner.NextSplit(ctx, id)
		if err != nil {
			return err
		}
	} else {
		meso, day, err = planner.NextSplitForActive(ctx)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if day == nil {
		if meso == nil {
			fmt.Fprintln(out, "No active mesocycle")
		} else {
			fmt.Fprintf(out, "%s has no split days\n", meso.Name)
		}
		return nil
	}

	fmt.Fprintf(out, "%s, week %d: %s\n", meso.Name, meso.CurrentWeek, day.Name)
	return nil
}
