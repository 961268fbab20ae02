package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mizuki/toeflsim/internal/llm"
	"github.com/mizuki/toeflsim/internal/storage"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect logged LLM requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		entries, err := st.RequestLog().Recent(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query requests: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No LLM requests logged yet.")
			return nil
		}

		fmt.Printf("%-19s  %-18s  %-28s  %6s  %6s  %7s  %s\n",
			"Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 100))
		for _, e := range entries {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-19s  %-18s  %-28s  %6d  %6d  %7d  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Purpose, 18),
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmCostCmd = &cobra.Command{
	Use:   "cost",
	Short: "Estimate spend over the logged requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		entries, err := st.RequestLog().Recent(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query requests: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No LLM requests logged yet.")
			return nil
		}

		type usage struct {
			calls   int
			in, out int
		}
		byModel := make(map[string]*usage)
		var order []string
		for _, e := range entries {
			u, ok := byModel[e.Model]
			if !ok {
				u = &usage{}
				byModel[e.Model] = u
				order = append(order, e.Model)
			}
			u.calls++
			u.in += e.InputTokens
			u.out += e.OutputTokens
		}

		fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n",
			"Model", "Calls", "Input", "Output", "Cost")
		fmt.Println(strings.Repeat("─", 76))

		var total float64
		var unknown []string
		for _, model := range order {
			u := byModel[model]
			cost := llm.LookupCost(model)
			if cost == nil {
				unknown = append(unknown, model)
				fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
					truncate(model, 32), u.calls, u.in, u.out, "?")
				continue
			}
			c := cost.Cost(u.in, u.out)
			total += c
			fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
				truncate(model, 32), u.calls, u.in, u.out, formatCost(c))
		}

		fmt.Println(strings.Repeat("─", 76))
		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(total))
		if len(unknown) > 0 {
			fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. reading_generation, writing_grading)")
	llmCostCmd.Flags().IntP("limit", "n", 1000, "Number of requests to aggregate")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmCostCmd)
}
