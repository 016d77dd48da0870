package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arundaya/parlo/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show practice history summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := context.Background()
		profile, err := s.ProfileRepo().Get(ctx)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		stats, err := s.SessionRepo().Stats(ctx)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}

		fmt.Printf("Level:       %d (target %s)\n", profile.Level, profile.TargetCEFR)
		fmt.Printf("Sessions:    %d\n", stats.Sessions)
		fmt.Printf("Minutes:     %.0f\n", stats.TotalMinutes)
		if stats.Sessions > 0 {
			fmt.Printf("Avg score:   %.1f\n", stats.AvgOverall)
			fmt.Printf("Best score:  %.1f\n", stats.BestOverall)
		}
		if profile.SessionsCount > 0 {
			fmt.Println()
			fmt.Println("Moving averages")
			fmt.Printf("  Pronunciation  %.1f\n", profile.MAPron)
			fmt.Printf("  Grammar        %.1f\n", profile.MAGrammar)
			fmt.Printf("  Fluency        %.1f\n", profile.MAFluency)
			fmt.Printf("  Vocabulary     %.1f\n", profile.MAVocabulary)
			fmt.Printf("  Overall        %.1f\n", profile.MAOverall)
		}

		open, err := s.PlanRepo().OpenCount(ctx)
		if err != nil {
			return fmt.Errorf("count plan items: %w", err)
		}
		if open > 0 {
			fmt.Printf("\nPlan: %d open item(s)\n", open)
		}
		return nil
	},
}
