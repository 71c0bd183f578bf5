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

var endSessionCmd = &cobra.Command{
	Use:   "end-session",
	Short: "Finish the current session and queue it for sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("no active session")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("loading session state: %w", err)
		}

		st, _, log, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := context.Background()
		now := time.Now()

		bests, err := st.PreviousBests(ctx)
		if err != nil {
			return fmt.Errorf("loading previous bests: %w", err)
		}

		result, final := engine.EndSession(*state, bests, now)

		// Final item statuses, then the session close itself.
		for _, id := range final.Order {
			ex := final.Exercises[id]
			status := ""
			switch ex.Status {
			case models.ExerciseCompleted:
				status = "performed"
			case models.ExerciseSkipped:
				status = "skipped"
			default:
				continue
			}
			if err := st.Enqueue(ctx, offline.NewUpsertItemOp(models.UpsertItemPayload{
				ItemID:     ex.ItemID,
				SessionID:  final.SessionID,
				ExerciseID: id,
				OrderIndex: ex.Planned.Order,
				Status:     status,
				SkipReason: ex.SkipReason,
			}, now)); err != nil {
				return fmt.Errorf("queueing item status: %w", err)
			}
		}
		if err := st.Enqueue(ctx, offline.NewFinalizeSessionOp(models.FinalizeSessionPayload{
			SessionID:       final.SessionID,
			EndedAt:         now,
			DurationSeconds: result.DurationSeconds,
			TotalSets:       result.TotalSets,
			TotalVolume:     result.TotalVolume,
		}, now)); err != nil {
			return fmt.Errorf("queueing session close: %w", err)
		}

		if err := utils.ClearSessionState(); err != nil {
			return fmt.Errorf("clearing session state: %w", err)
		}

		printBoxedHeader("SESSION COMPLETE")
		printMetric("Duration", utils.FormatDuration(result.DurationSeconds))
		printMetric("Exercises", fmt.Sprintf("%d done, %d skipped", result.CompletedExercises, result.SkippedExercises))
		printMetric("Sets", result.TotalSets)
		printMetric("Volume", fmt.Sprintf("%.1f kg", result.TotalVolume))
		for _, pr := range result.PRs {
			color.Green("🏆 PR: %s %s %.1f → %.1f", pr.ExerciseID, pr.Metric, pr.Previous, pr.New)
		}
		for _, lu := range result.LevelUps {
			color.Magenta("⬆️  Level up: %s e1RM %.1f → %.1f", lu.ExerciseID, lu.FromE1RM, lu.ToE1RM)
		}
		fmt.Println()

		// Opportunistic sync; failures just leave the queue for later.
		report, err := offline.Sync(ctx, st, st, st.Online, log.WithField("component", "sync"))
		if err != nil || report.Skipped {
			fmt.Println("📦 Saved locally, run 'forgefit sync' when online")
			return nil
		}
		fmt.Printf("✅ Synced %d operations\n", report.Synced+report.AlreadyApplied)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(endSessionCmd)
}
