package cmd

import (
	"context"
	"fmt"

	"forgefit/internal/utils"

	"github.com/spf13/cobra"
)

var cancelSessionCmd = &cobra.Command{
	Use:   "cancel-session",
	Short: "Abandon the current session without saving any data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.SessionExists() {
			return fmt.Errorf("no active session to cancel")
		}

		state, err := utils.LoadSessionState()
		if err != nil {
			return fmt.Errorf("loading session state: %w", err)
		}

		st, _, _, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()

		// Drop the queued writes for this session too, so nothing of it
		// ever reaches the database.
		if err := st.DiscardSessionOps(context.Background(), state.SessionID); err != nil {
			return fmt.Errorf("discarding queued operations: %w", err)
		}
		if err := utils.ClearSessionState(); err != nil {
			return fmt.Errorf("clearing session state: %w", err)
		}

		fmt.Println("✅ Session cancelled")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelSessionCmd)
}
