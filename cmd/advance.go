package cmd

import (
	"fmt"

	"forgefit/internal/engine"
	"forgefit/internal/utils"

	"github.com/spf13/cobra"
)

var advanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Move on to the next exercise in the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("no active session")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("loading session state: %w", err)
		}

		next := engine.AdvanceExercise(*state)
		if err := utils.SaveSessionState(&next); err != nil {
			return fmt.Errorf("saving session state: %w", err)
		}

		if current, ok := next.CurrentExercise(); ok {
			fmt.Printf("➡️  Next up: %s (%d sets)\n",
				current.Planned.Exercise.Name, len(current.Planned.Sets))
		} else {
			fmt.Println("🏁 All exercises done, run 'forgefit end-session'")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(advanceCmd)
}
