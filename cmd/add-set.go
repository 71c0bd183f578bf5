package cmd

import (
	"context"
	"fmt"
	"time"

	"forgefit/internal/engine"
	"forgefit/internal/models"
	"forgefit/internal/offline"
	"forgefit/internal/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	newSetWeight float64
	newSetReps   int
	newSetRPE    float64
)

var addSetCmd = &cobra.Command{
	Use:   "add-set",
	Short: "Log a set for the current exercise and get the next-set adjustment",
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
			return fmt.Errorf("no exercise under the cursor, the session may be finished")
		}

		var rpe *float64
		if cmd.Flags().Changed("rpe") {
			if newSetRPE < 1 || newSetRPE > 10 {
				return fmt.Errorf("RPE must be between 1 and 10")
			}
			rpe = &newSetRPE
		}

		now := time.Now()
		setIndex := current.NextSetIndex
		next, outcome, err := engine.LogSet(*state, current.ExerciseID, engine.SetInput{
			SetIndex: setIndex,
			Weight:   newSetWeight,
			Reps:     newSetReps,
			RPE:      rpe,
		}, now)
		if err != nil {
			return fmt.Errorf("logging set: %w", err)
		}

		st, _, _, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Enqueue(context.Background(), offline.NewInsertSetLogOp(models.InsertSetLogPayload{
			ItemID:    current.ItemID,
			SessionID: next.SessionID,
			SetIndex:  setIndex,
			Weight:    newSetWeight,
			Reps:      newSetReps,
			RPE:       rpe,
			LoggedAt:  now,
		}, now)); err != nil {
			return fmt.Errorf("queueing set log: %w", err)
		}

		if err := utils.SaveSessionState(&next); err != nil {
			return fmt.Errorf("saving session state: %w", err)
		}

		updated := next.Exercises[current.ExerciseID]
		fmt.Printf("✅ Set %d logged for %s (%.1f kg x %d)\n",
			setIndex, current.Planned.Exercise.Name, newSetWeight, newSetReps)

		if outcome.Adjustment != nil {
			color.Yellow("🤖 %s", outcome.Message)
			if weight, reps, adjusted, err := engine.GetAdjustedSetParams(next, current.ExerciseID, setIndex+1); err == nil && adjusted {
				fmt.Printf("   Next set: %.1f kg x %d\n", weight, reps)
			}
		}
		if updated.Status == models.ExerciseCompleted {
			fmt.Println("🎉 Exercise complete, run 'forgefit advance'")
		} else if setIndex <= len(updated.Planned.Sets) {
			rest := engine.AdjustedRestTime(updated.Planned.Sets[setIndex-1].RestSeconds, rpe)
			fmt.Printf("⏱  Rest %s\n", utils.FormatRest(rest))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addSetCmd)
	addSetCmd.Flags().Float64VarP(&newSetWeight, "weight", "w", 0, "Weight used for the set (kg, 0 for bodyweight)")
	addSetCmd.Flags().IntVarP(&newSetReps, "reps", "r", 0, "Reps performed")
	addSetCmd.Flags().Float64Var(&newSetRPE, "rpe", 0, "Reported RPE (1-10), drives autoregulation")
	addSetCmd.MarkFlagRequired("reps")
}
