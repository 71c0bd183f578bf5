package cmd

import (
	"fmt"
	"strings"
	"time"

	"forgefit/internal/engine"
	"forgefit/internal/models"
	"forgefit/internal/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("no active session")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("loading session state: %w", err)
		}

		printBoxedHeader("SESSION STATUS")
		printMetric("Session", planTitle(state.Plan))
		printMetric("Elapsed", time.Since(state.StartedAt).Round(time.Minute))
		printMetric("Sets logged", len(state.SetLogs))

		fatigue := engine.DetectSessionFatigue(state.SetLogs)
		printMetric("Fatigue", fmt.Sprintf("%s (%.2f)", fatigue.Band, fatigue.Score))
		fmt.Println()

		for i, id := range state.Order {
			ex := state.Exercises[id]
			marker := statusMarker(ex.Status)
			cursor := "  "
			if i == state.Cursor {
				cursor = color.New(color.FgCyan, color.Bold).Sprint("» ")
			}
			fmt.Printf("%s%s %s (%d/%d sets)\n",
				cursor, marker, ex.Planned.Exercise.Name, ex.CompletedSets, len(ex.Planned.Sets))
		}
		fmt.Println()
		return nil
	},
}

func statusMarker(status models.ExerciseStatus) string {
	switch status {
	case models.ExerciseCompleted:
		return color.GreenString("✔")
	case models.ExerciseSkipped:
		return color.YellowString("⏭")
	case models.ExerciseInProgress:
		return color.CyanString("●")
	default:
		return "○"
	}
}

// printBoxedHeader prints the title in a Unicode box with a fixed width.
func printBoxedHeader(title string) {
	width := 40
	cyanBold := color.New(color.FgCyan, color.Bold).SprintFunc()
	border := strings.Repeat("═", width)
	fmt.Println(cyanBold("╔" + border + "╗"))
	fmt.Println(cyanBold("║" + centerText(title, width) + "║"))
	fmt.Println(cyanBold("╚" + border + "╝"))
}

func centerText(s string, width int) string {
	if len(s) >= width {
		return s
	}
	padding := (width - len(s)) / 2
	return strings.Repeat(" ", padding) + s + strings.Repeat(" ", width-len(s)-padding)
}

// printMetric prints a label and value using bold yellow for the label.
func printMetric(label string, value interface{}) {
	yellowBold := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Printf("  %s: %v\n", yellowBold(label), value)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
