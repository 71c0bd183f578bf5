package cmd

import (
	"fmt"
	"time"

	"forgefit/internal/engine"
	"forgefit/internal/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var adaptReason string

var adaptCmd = &cobra.Command{
	Use:   "adapt",
	Short: "Trim the rest of the session for time pressure or fatigue",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("no active session")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("loading session state: %w", err)
		}

		now := time.Now()
		rules := engine.DefaultRules()
		next, err := rules.AdaptSession(*state, engine.AdaptReason(adaptReason), now)
		if err != nil {
			return err
		}

		if err := utils.SaveSessionState(&next); err != nil {
			return fmt.Errorf("saving session state: %w", err)
		}

		applied := next.Adaptations[len(state.Adaptations):]
		if len(applied) == 0 {
			fmt.Println("✅ Nothing to trim, session fits as planned")
			return nil
		}
		fmt.Printf("✅ Session adapted (%s)\n", adaptReason)
		for _, event := range applied {
			color.Yellow("  • %s", event.Adjustment.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adaptCmd)
	adaptCmd.Flags().StringVarP(&adaptReason, "reason", "r", "", "Adaptation trigger: time_pressure or fatigue")
	adaptCmd.MarkFlagRequired("reason")
}
