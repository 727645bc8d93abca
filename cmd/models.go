package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fcegen/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show the configured model fallback ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := llm.ConfigFromEnv()

		fmt.Printf("%-4s  %-16s  %-8s  %s\n", "Rank", "Model", "Key set", "Quota ceiling")
		fmt.Println(strings.Repeat("─", 52))
		for i, model := range cfg.Ranking {
			keySet := "no"
			if cfg.HasKeyFor(model) {
				keySet = "yes"
			}
			fmt.Printf("%-4d  %-16s  %-8s  %d/day\n", i+1, model, keySet, cfg.QuotaCeiling)
		}
		fmt.Println("\nQuota counters are per process and reset on restart.")
		return nil
	},
}
