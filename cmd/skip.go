package cmd

import (
	"context"
	"fmt"
	"time"

	"forgefit/internal/engine"
	"forgefit/internal/models"
	"forgefit/internal/offline"
	"forgefit/internal/utils"

	"github.com/spf13/cobra"
)

var skipReason string

var skipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Skip the current exercise",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("no active session")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("loading session state: %w", err)
		}
		current, ok := state.CurrentExercise()
		if !ok {
			return fmt.Errorf("no exercise under the cursor")
		}

		now := time.Now()
		next, err := engine.SkipExercise(*state, current.ExerciseID, skipReason, now)
		if err != nil {
			return fmt.Errorf("skipping exercise: %w", err)
		}

		st, _, _, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Enqueue(context.Background(), offline.NewUpsertItemOp(models.UpsertItemPayload{
			ItemID:     current.ItemID,
			SessionID:  next.SessionID,
			ExerciseID: current.ExerciseID,
			OrderIndex: current.Planned.Order,
			Status:     "skipped",
			SkipReason: skipReason,
		}, now)); err != nil {
			return fmt.Errorf("queueing skip: %w", err)
		}

		if err := utils.SaveSessionState(&next); err != nil {
			return fmt.Errorf("saving session state: %w", err)
		}

		fmt.Printf("⏭  Skipped %s\n", current.Planned.Exercise.Name)
		if upNext, ok := next.CurrentExercise(); ok {
			fmt.Printf("➡️  Next up: %s\n", upNext.Planned.Exercise.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skipCmd)
	skipCmd.Flags().StringVarP(&skipReason, "reason", "r", "skipped by user", "Why the exercise is being skipped")
}
