package cmd

import (
	"context"
	"fmt"

	"forgefit/internal/offline"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay the offline queue against the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, log, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := offline.Sync(context.Background(), st, st, st.Online, log.WithField("component", "sync"))
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		if report.Skipped {
			fmt.Println("📴 Offline, nothing attempted")
			return nil
		}

		fmt.Printf("✅ Synced %d, already applied %d, failed %d\n",
			report.Synced, report.AlreadyApplied, report.Failed)
		if report.Errors != nil {
			fmt.Printf("⚠️  %v\n", report.Errors)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
