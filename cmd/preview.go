package cmd

import (
	"context"
	"fmt"
	"time"

	"forgefit/internal/catalog"
	"forgefit/internal/engine"
	"forgefit/internal/models"
	"forgefit/internal/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var previewTemplate string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Dry-run session generation without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, _, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()

		templateID := previewTemplate
		groupingStyle := "full_body"
		label := "Preview"
		if templateID == "" {
			// Default to the first scheduled day of the current block.
			_, plan, err := st.CurrentProgramPlan(context.Background())
			if err == nil && len(plan.Weekdays) > 0 {
				day := plan.Weeks[0].Days[plan.Weekdays[0]]
				templateID = day.TemplateID
				groupingStyle = plan.GroupingStyle
				label = day.Label
			} else if err != nil && err != storage.ErrNotFound {
				return fmt.Errorf("loading program: %w", err)
			}
		}
		if templateID == "" {
			templateID = "full_body"
		}

		cat, err := catalog.LoadDefault()
		if err != nil {
			return fmt.Errorf("loading exercise catalog: %w", err)
		}

		rules := engine.DefaultRules()
		plan, err := rules.BuildSession(cat, engine.BuildInput{
			TemplateID:    templateID,
			GroupingStyle: groupingStyle,
			Label:         label,
			Goals:         cfg.Profile.Goals,
			Constraints:   cfg.Profile.Constraints,
			User:          models.UserState{Experience: cfg.Profile.Experience},
			Now:           time.Now(),
		})
		if err != nil {
			return fmt.Errorf("building preview: %w", err)
		}

		printSessionPlan(plan)
		return nil
	},
}

func printSessionPlan(plan models.SessionPlan) {
	cyanBold := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("%s  [%s split, ~%d min, %d sets]\n",
		cyanBold(planTitle(plan)), plan.GroupingStyle, plan.EstimatedMinutes, plan.TotalSets())
	if repRange, ok := plan.PrimaryRepRange(); ok {
		fmt.Printf("  Primary rep range: %d-%d\n", repRange.Min, repRange.Max)
	}
	for _, ex := range plan.Exercises {
		weight := ""
		if len(ex.Sets) > 0 && ex.Sets[0].Weight > 0 {
			weight = fmt.Sprintf(" @ %.1f kg", ex.Sets[0].Weight)
		}
		fmt.Printf("  %d. %s [%s] %dx%d-%d%s\n",
			ex.Order, color.New(color.Bold).Sprint(ex.Exercise.Name),
			ex.Tier, len(ex.Sets), ex.RepRange.Min, ex.RepRange.Max, weight)
		fmt.Printf("     %s\n", ex.Trace.Rationale)
	}
	fmt.Println()
}

func planTitle(plan models.SessionPlan) string {
	if plan.Label != "" {
		return plan.Label
	}
	return plan.TemplateID
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVarP(&previewTemplate, "template", "t", "", "Session template to preview (defaults to the block's first day)")
}
