package cmd

import (
	"context"
	"fmt"
	"time"

	"forgefit/internal/catalog"
	"forgefit/internal/engine"
	"forgefit/internal/models"
	"forgefit/internal/offline"
	"forgefit/internal/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Replace the current exercise with its best-scoring alternative",
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
		if len(current.Planned.Trace.Alternatives) == 0 {
			return fmt.Errorf("no recorded alternative for %s", current.Planned.Exercise.Name)
		}
		alt := current.Planned.Trace.Alternatives[0]

		cat, err := catalog.LoadDefault()
		if err != nil {
			return fmt.Errorf("loading exercise catalog: %w", err)
		}
		replacement, ok := cat.Get(alt.ExerciseID)
		if !ok {
			return fmt.Errorf("alternative %q is not in the catalog", alt.ExerciseID)
		}

		now := time.Now()
		rules := engine.DefaultRules()
		newItemID := models.ItemID(uuid.New().String())
		next, err := rules.SwapExercise(*state, current.ExerciseID, replacement, newItemID, now)
		if err != nil {
			return fmt.Errorf("swapping exercise: %w", err)
		}

		st, _, _, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := context.Background()
		if err := st.Enqueue(ctx, offline.NewUpsertItemOp(models.UpsertItemPayload{
			ItemID:     current.ItemID,
			SessionID:  next.SessionID,
			ExerciseID: current.ExerciseID,
			OrderIndex: current.Planned.Order,
			Status:     "skipped",
			SkipReason: "swapped for " + replacement.ID,
		}, now)); err != nil {
			return fmt.Errorf("queueing swap: %w", err)
		}
		if err := st.Enqueue(ctx, offline.NewUpsertItemOp(models.UpsertItemPayload{
			ItemID:     newItemID,
			SessionID:  next.SessionID,
			ExerciseID: replacement.ID,
			OrderIndex: current.Planned.Order,
			Status:     "planned",
		}, now)); err != nil {
			return fmt.Errorf("queueing swap: %w", err)
		}

		if err := utils.SaveSessionState(&next); err != nil {
			return fmt.Errorf("saving session state: %w", err)
		}

		fmt.Printf("🔄 Swapped %s for %s\n", current.Planned.Exercise.Name, replacement.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(swapCmd)
}
