package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arundaya/parlo/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all practice history and start over",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Println("This deletes all sessions, the learner profile, the plan, and the LLM event log.")
			fmt.Println("Run again with --yes to confirm.")
			return nil
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		for _, table := range []string{"sessions", "profile", "plan_items", "llm_events"} {
			if _, err := s.DB().Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		fmt.Println("All practice data erased.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}
