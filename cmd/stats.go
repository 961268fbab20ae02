package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/history"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show generation history and accuracy statistics",
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

		hist := history.NewStore(st.KV())

		fmt.Println("Generated content")
		fmt.Println(strings.Repeat("─", 60))
		for _, typ := range content.Types {
			count := hist.Count(typ)
			if count == 0 {
				fmt.Printf("%-10s  none\n", typ)
				continue
			}
			fmt.Printf("%-10s  %3d items   diversity %3.0f%%\n",
				typ, count, hist.DiversityScore(typ)*100)
			for i, tc := range hist.TopicStatistics(typ) {
				if i >= 5 {
					break
				}
				fmt.Printf("            %-40s ×%d\n", tc.Topic, tc.Count)
			}
		}

		records := report.NewLog(st.KV()).All()
		if len(records) == 0 {
			return nil
		}

		type agg struct{ correct, total int }
		byCategory := make(map[string]*agg)
		for _, r := range records {
			key := r.Category
			if r.TaskKind != "" {
				key = r.Category + "/" + r.TaskKind
			}
			a, ok := byCategory[key]
			if !ok {
				a = &agg{}
				byCategory[key] = a
			}
			a.correct += r.Correct
			a.total += r.Total
		}

		keys := make([]string, 0, len(byCategory))
		for k := range byCategory {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Println()
		fmt.Println("Accuracy by category")
		fmt.Println(strings.Repeat("─", 60))
		for _, k := range keys {
			a := byCategory[k]
			if a.total == 0 {
				continue
			}
			fmt.Printf("%-36s  %4d/%-4d  %3.0f%%\n",
				k, a.correct, a.total, float64(a.correct)/float64(a.total)*100)
		}
		return nil
	},
}
