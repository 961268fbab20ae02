package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/storage"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List saved full-test score reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		all := report.NewReports(st.KV()).All()
		if len(all) == 0 {
			fmt.Println("No score reports yet. Complete a full test to get one.")
			return nil
		}

		fmt.Printf("%-19s  %7s  %9s  %8s  %7s  %5s\n",
			"Date", "Reading", "Listening", "Speaking", "Writing", "Total")
		fmt.Println(strings.Repeat("─", 64))
		for i := len(all) - 1; i >= 0; i-- {
			r := all[i]
			fmt.Printf("%-19s  %7d  %9d  %8d  %7d  %5d\n",
				r.Date.Local().Format("2006-01-02 15:04"),
				r.Reading.Score, r.Listening.Score, r.Speaking.Score, r.Writing.Score,
				r.Total)
		}
		return nil
	},
}
