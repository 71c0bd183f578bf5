package cmd

import (
	"context"
	"fmt"

	"forgefit/internal/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showPlanCmd = &cobra.Command{
	Use:   "show-plan",
	Short: "Show the current four-week block and its calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		planID, plan, err := st.CurrentProgramPlan(ctx)
		if err == storage.ErrNotFound {
			return fmt.Errorf("no program yet, run 'forgefit program' first")
		}
		if err != nil {
			return fmt.Errorf("loading program: %w", err)
		}
		days, err := st.ProgramDays(ctx, planID)
		if err != nil {
			return fmt.Errorf("loading program days: %w", err)
		}

		cyanBold := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("%s (%s split, created %s)\n",
			cyanBold("Current block"), plan.GroupingStyle, plan.CreatedAt.Local().Format("2006-01-02"))
		fmt.Printf("  Dominant goal: %s", plan.DominantGoal)
		if plan.SecondaryGoal != "" {
			fmt.Printf(" (secondary: %s)", plan.SecondaryGoal)
		}
		fmt.Println()
		for _, warning := range plan.Warnings {
			color.Yellow("⚠️  %s", warning)
		}
		printProgramCalendar(days)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showPlanCmd)
}
