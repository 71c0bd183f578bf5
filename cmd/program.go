package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"forgefit/internal/engine"
	"forgefit/internal/models"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var programWeekdays string

var programCmd = &cobra.Command{
	Use:   "program",
	Short: "Build and persist a four-week training block from your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, _, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()

		weekdays := cfg.Schedule.Weekdays
		if programWeekdays != "" {
			weekdays, err = parseWeekdays(programWeekdays)
			if err != nil {
				return err
			}
		}

		rules := engine.DefaultRules()
		now := time.Now()
		plan, err := rules.BuildFourWeekPlan(cfg.Profile, weekdays, now)
		if err != nil {
			return fmt.Errorf("building program: %w", err)
		}
		days, err := engine.GenerateProgramDays(plan, now)
		if err != nil {
			return fmt.Errorf("resolving program dates: %w", err)
		}

		planID := models.ItemID(uuid.New().String())
		if err := st.SaveProgramPlan(context.Background(), planID, plan, days); err != nil {
			return fmt.Errorf("saving program: %w", err)
		}

		fmt.Printf("✅ Created 4-week block (%s split)\n", plan.GroupingStyle)
		for _, warning := range plan.Warnings {
			color.Yellow("⚠️  %s", warning)
		}
		printProgramCalendar(days)
		return nil
	},
}

func parseWeekdays(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q (expected 1=Monday .. 7=Sunday)", part)
		}
		out = append(out, day)
	}
	return out, nil
}

func printProgramCalendar(days []models.ProgramDay) {
	bold := color.New(color.Bold).SprintFunc()
	week := 0
	for _, day := range days {
		if day.Week != week {
			week = day.Week
			fmt.Printf("\n%s\n", bold(fmt.Sprintf("Week %d", week)))
		}
		fmt.Printf("  %s  %s\n", day.Date, day.Label)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(programCmd)
	programCmd.Flags().StringVarP(&programWeekdays, "weekdays", "d", "", "Comma-separated training weekdays (1=Monday .. 7=Sunday), overrides config")
}
