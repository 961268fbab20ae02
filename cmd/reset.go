package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizuki/toeflsim/internal/history"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/storage"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete generation history, performance records, and score reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Println("This deletes all generation history, performance records, and score reports.")
			fmt.Println("Re-run with --yes to confirm.")
			return nil
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		kv := st.KV()
		if err := history.NewStore(kv).Clear(); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		if err := report.NewLog(kv).Clear(); err != nil {
			return fmt.Errorf("clear performance records: %w", err)
		}
		if err := report.NewReports(kv).Clear(); err != nil {
			return fmt.Errorf("clear score reports: %w", err)
		}

		fmt.Println("All practice data deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion without prompting")
}
