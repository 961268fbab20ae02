package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mizuki/toeflsim/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "toeflsim",
	Short: "AI-powered TOEFL practice in the terminal",
	Long:  "TOEFL Simulator: terminal app that generates Reading, Listening, Speaking, and Writing practice with AI grading.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	// A local .env is optional; missing files are fine.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TOEFLSIM_DB env var)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then TOEFLSIM_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, storage.EnsureDir(p)
	}
	return storage.DefaultDBPath()
}
